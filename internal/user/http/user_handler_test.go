package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	authHTTP "github.com/allisson/permguard/internal/auth/http"
	"github.com/allisson/permguard/internal/user/domain"
	"github.com/allisson/permguard/internal/user/http/dto"
	"github.com/allisson/permguard/internal/user/usecase"
)

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) RegisterUser(ctx context.Context, input usecase.RegisterUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserUseCase) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

func (m *mockUserUseCase) RotateSecurityStamp(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func setupUserRouter(t *testing.T, principal *authDomain.Principal) (*gin.Engine, *mockUserUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	useCase := &mockUserUseCase{}
	handler := NewUserHandler(useCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	if principal != nil {
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(authHTTP.WithPrincipal(c.Request.Context(), principal))
			c.Next()
		})
	}
	router.POST("/v1/users", handler.RegisterUserHandler)
	router.GET("/v1/users/:id", handler.GetUserHandler)
	router.POST("/v1/users/:id/security-stamp", handler.RotateSecurityStampHandler)
	router.PUT("/v1/me/password", handler.ChangePasswordHandler)

	return router, useCase
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "Jane",
		Email:         "jane@example.com",
		Password:      "$argon2id$hash",
		SecurityStamp: "stamp-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestUserHandler_RegisterUserHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)
		user := newUser()

		useCase.On("RegisterUser", mock.Anything, usecase.RegisterUserInput{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "Str0ng!Pass",
		}).Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/v1/users", dto.RegisterUserRequest{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "Str0ng!Pass",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, user.ID, response.ID)
		assert.NotContains(t, w.Body.String(), "argon2id")
		assert.NotContains(t, w.Body.String(), "stamp-1")
		useCase.AssertExpectations(t)
	})

	t.Run("weak password", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)

		w := doJSON(router, http.MethodPost, "/v1/users", dto.RegisterUserRequest{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "password",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)

		useCase.On("RegisterUser", mock.Anything, mock.Anything).Return(nil, domain.ErrUserAlreadyExists).Once()

		w := doJSON(router, http.MethodPost, "/v1/users", dto.RegisterUserRequest{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: "Str0ng!Pass",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_GetUserHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)
		user := newUser()

		useCase.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+user.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)

		w := doJSON(router, http.MethodGet, "/v1/users/42", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		useCase.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)
		id := uuid.Must(uuid.NewV7())

		useCase.On("GetUserByID", mock.Anything, id).Return(nil, domain.ErrUserNotFound).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_RotateSecurityStampHandler(t *testing.T) {
	router, useCase := setupUserRouter(t, nil)
	user := newUser()

	useCase.On("RotateSecurityStamp", mock.Anything, user.ID).Return(user, nil).Once()

	w := doJSON(router, http.MethodPost, "/v1/users/"+user.ID.String()+"/security-stamp", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	useCase.AssertExpectations(t)
}

func TestUserHandler_ChangePasswordHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		principal := authDomain.NewPrincipal(authDomain.NewIdentity(authDomain.BearerAuthenticationType,
			authDomain.Claim{Type: authDomain.SubjectClaimType, Value: userID.String()}))
		router, useCase := setupUserRouter(t, principal)

		useCase.On("ChangePassword", mock.Anything, userID, "N3w!Password").Return(nil).Once()

		w := doJSON(router, http.MethodPut, "/v1/me/password", dto.ChangePasswordRequest{Password: "N3w!Password"})

		assert.Equal(t, http.StatusNoContent, w.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router, useCase := setupUserRouter(t, nil)

		w := doJSON(router, http.MethodPut, "/v1/me/password", dto.ChangePasswordRequest{Password: "N3w!Password"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		useCase.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
