package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/metrics"
)

// observe records the outcome and duration of one operation.
func observe(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, "auth", operation, status)
	m.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *roleUseCaseWithMetrics) Create(ctx context.Context, name string) (*authDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, name)
	observe(ctx, r.metrics, "role_create", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Get(ctx context.Context, name string) (*authDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, name)
	observe(ctx, r.metrics, "role_get", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*authDomain.Role, error) {
	start := time.Now()
	roles, err := r.next.List(ctx, offset, limit)
	observe(ctx, r.metrics, "role_list", start, err)
	return roles, err
}

func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := r.next.Delete(ctx, name)
	observe(ctx, r.metrics, "role_delete", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) AddClaim(
	ctx context.Context,
	name string,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	start := time.Now()
	stored, err := r.next.AddClaim(ctx, name, claim)
	observe(ctx, r.metrics, "role_claim_add", start, err)
	return stored, err
}

func (r *roleUseCaseWithMetrics) RemoveClaim(ctx context.Context, name string, claim authDomain.Claim) error {
	start := time.Now()
	err := r.next.RemoveClaim(ctx, name, claim)
	observe(ctx, r.metrics, "role_claim_remove", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) ListClaims(ctx context.Context, name string) ([]authDomain.Claim, error) {
	start := time.Now()
	claims, err := r.next.ListClaims(ctx, name)
	observe(ctx, r.metrics, "role_claim_list", start, err)
	return claims, err
}

// userAccessUseCaseWithMetrics decorates UserAccessUseCase with metrics instrumentation.
type userAccessUseCaseWithMetrics struct {
	next    UserAccessUseCase
	metrics metrics.BusinessMetrics
}

// NewUserAccessUseCaseWithMetrics wraps a UserAccessUseCase with metrics recording.
func NewUserAccessUseCaseWithMetrics(useCase UserAccessUseCase, m metrics.BusinessMetrics) UserAccessUseCase {
	return &userAccessUseCaseWithMetrics{next: useCase, metrics: m}
}

func (u *userAccessUseCaseWithMetrics) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	start := time.Now()
	err := u.next.AssignRole(ctx, userID, roleName)
	observe(ctx, u.metrics, "user_role_assign", start, err)
	return err
}

func (u *userAccessUseCaseWithMetrics) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	start := time.Now()
	err := u.next.RemoveRole(ctx, userID, roleName)
	observe(ctx, u.metrics, "user_role_remove", start, err)
	return err
}

func (u *userAccessUseCaseWithMetrics) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	start := time.Now()
	roles, err := u.next.ListRoles(ctx, userID)
	observe(ctx, u.metrics, "user_role_list", start, err)
	return roles, err
}

func (u *userAccessUseCaseWithMetrics) AddClaim(
	ctx context.Context,
	userID uuid.UUID,
	claim authDomain.Claim,
) (authDomain.Claim, error) {
	start := time.Now()
	stored, err := u.next.AddClaim(ctx, userID, claim)
	observe(ctx, u.metrics, "user_claim_add", start, err)
	return stored, err
}

func (u *userAccessUseCaseWithMetrics) RemoveClaim(ctx context.Context, userID uuid.UUID, claim authDomain.Claim) error {
	start := time.Now()
	err := u.next.RemoveClaim(ctx, userID, claim)
	observe(ctx, u.metrics, "user_claim_remove", start, err)
	return err
}

func (u *userAccessUseCaseWithMetrics) ListClaims(ctx context.Context, userID uuid.UUID) ([]authDomain.Claim, error) {
	start := time.Now()
	claims, err := u.next.ListClaims(ctx, userID)
	observe(ctx, u.metrics, "user_claim_list", start, err)
	return claims, err
}

func (u *userAccessUseCaseWithMetrics) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
) ([]authDomain.Claim, error) {
	start := time.Now()
	claims, err := u.next.EffectivePermissions(ctx, userID)
	observe(ctx, u.metrics, "user_effective_permissions", start, err)
	return claims, err
}

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{next: useCase, metrics: m}
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	observe(ctx, t.metrics, "token_issue", start, err)
	return output, err
}

// Authenticate records metrics for token authentication.
func (t *tokenUseCaseWithMetrics) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := t.next.Authenticate(ctx, tokenHash)
	observe(ctx, t.metrics, "token_authenticate", start, err)
	return principal, err
}

func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, tokenHash string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, tokenHash)
	observe(ctx, t.metrics, "token_revoke", start, err)
	return err
}

func (t *tokenUseCaseWithMetrics) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	count, err := t.next.PurgeExpired(ctx, before)
	observe(ctx, t.metrics, "token_purge_expired", start, err)
	return count, err
}
