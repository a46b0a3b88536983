package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	outboxDomain "github.com/allisson/permguard/internal/outbox/domain"
	userDomain "github.com/allisson/permguard/internal/user/domain"
)

// mockTxManager runs fn inline unless an error is configured.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func newTxManager() *mockTxManager {
	tx := &mockTxManager{}
	tx.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	return tx
}

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *authDomain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *mockRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*authDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// mockClaimRepository serves as both the role and the user claim repository.
type mockClaimRepository struct {
	mock.Mock
}

func (m *mockClaimRepository) Add(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	return m.Called(ctx, ownerID, claim).Error(0)
}

func (m *mockClaimRepository) Remove(ctx context.Context, ownerID uuid.UUID, claim authDomain.Claim) error {
	return m.Called(ctx, ownerID, claim).Error(0)
}

func (m *mockClaimRepository) list(ctx context.Context, ownerID uuid.UUID) ([]authDomain.Claim, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

func (m *mockClaimRepository) ListByRoleID(ctx context.Context, roleID uuid.UUID) ([]authDomain.Claim, error) {
	return m.list(ctx, roleID)
}

func (m *mockClaimRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	return m.list(ctx, userID)
}

type mockUserRoleRepository struct {
	mock.Mock
}

func (m *mockUserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *mockUserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *mockUserRoleRepository) ListRoleNamesByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepository) Update(ctx context.Context, token *authDomain.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

func (m *mockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// outboxRecorder captures the events written by a use case.
type outboxRecorder struct {
	events []*outboxDomain.OutboxEvent
	err    error
}

func (o *outboxRecorder) Create(_ context.Context, event *outboxDomain.OutboxEvent) error {
	if o.err != nil {
		return o.err
	}
	o.events = append(o.events, event)
	return nil
}

func (o *outboxRecorder) types() []string {
	types := make([]string, 0, len(o.events))
	for _, e := range o.events {
		types = append(types, e.EventType)
	}
	return types
}

type mockPermissionResolver struct {
	mock.Mock
}

func (m *mockPermissionResolver) Resolve(ctx context.Context, user *userDomain.User) ([]authDomain.Claim, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Claim), args.Error(1)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Compare(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) HashToken(plainToken string) string {
	return m.Called(plainToken).String(0)
}

func (m *mockTokenService) GenerateSecurityStamp() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type mockPrincipalFactory struct {
	mock.Mock
}

func (m *mockPrincipalFactory) CreateIdentity(
	ctx context.Context,
	user *userDomain.User,
) (*authDomain.Identity, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func newTestUser() *userDomain.User {
	return &userDomain.User{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		Password:      "hashed",
		SecurityStamp: "stamp-1",
	}
}
