package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/auth/http/dto"
	httpMocks "github.com/allisson/permguard/internal/auth/http/mocks"
)

func setupTokenTestHandler(t *testing.T) (*TokenHandler, *httpMocks.MockTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockTokenUseCase := &httpMocks.MockTokenUseCase{}
	handler := NewTokenHandler(mockTokenUseCase, newTestLogger())

	return handler, mockTokenUseCase
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	t.Run("Success_ValidCredentials", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		expiresAt := time.Now().UTC().Add(time.Hour)
		expectedInput := &authDomain.IssueTokenInput{Email: "jane@example.com", Password: "S3cret!pass"}
		mockUseCase.On("Issue", mock.Anything, expectedInput).
			Return(&authDomain.IssueTokenOutput{
				PlainToken:  "tok_123",
				ExpiresAt:   expiresAt,
				Permissions: []string{authDomain.PermissionUsersView},
			}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", dto.IssueTokenRequest{
			Email:    "jane@example.com",
			Password: "S3cret!pass",
		})

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.IssueTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "tok_123", response.Token)
		assert.Equal(t, expiresAt.Unix(), response.ExpiresAt.Unix())
		assert.Equal(t, []string{authDomain.PermissionUsersView}, response.Permissions)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_NoPermissionsRendersEmptyList", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(&authDomain.IssueTokenOutput{PlainToken: "tok", ExpiresAt: time.Now()}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", dto.IssueTokenRequest{
			Email:    "jane@example.com",
			Password: "pw",
		})

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"permissions":[]`)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/token", nil)
		c.Request.Body = http.NoBody

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/token", dto.IssueTokenRequest{Email: "jane@example.com"})

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrInvalidCredentials).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", dto.IssueTokenRequest{
			Email:    "jane@example.com",
			Password: "wrong",
		})

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Bearer realm="permguard"`, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", dto.IssueTokenRequest{
			Email:    "jane@example.com",
			Password: "pw",
		})

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestTokenHandler_RevokeTokenHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		mockUseCase.On("Revoke", mock.Anything, "hash-1").Return(nil).Once()

		router := gin.New()
		router.DELETE("/v1/token",
			withPrincipal(newBearerPrincipal(uuid.Must(uuid.NewV7())), "hash-1"),
			handler.RevokeTokenHandler)

		w := performRequest(router, http.MethodDelete, "/v1/token", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NoTokenHash", func(t *testing.T) {
		handler, mockUseCase := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodDelete, "/v1/token", nil)

		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})
}
