package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
	"github.com/allisson/permguard/internal/auth/http/dto"
)

func TestPermissionHandler_ListHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewPermissionHandler(newTestLogger())
	c, w := createTestContext(http.MethodGet, "/v1/permissions", nil)

	handler.ListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ListNamesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, authDomain.AllPermissions(), response.Data)
}

func TestPermissionHandler_MeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		principal := newBearerPrincipal(userID, authDomain.PermissionUsersView, authDomain.PermissionUsersView)

		router := gin.New()
		router.GET("/v1/me", withPrincipal(principal, ""), NewPermissionHandler(newTestLogger()).MeHandler)

		w := performRequest(router, http.MethodGet, "/v1/me", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, userID.String(), response.UserID)
		assert.Equal(t, "Jane", response.Name)
		assert.Equal(t, "jane@example.com", response.Email)
		assert.Equal(t, []string{authDomain.PermissionUsersView}, response.Permissions)
		assert.NotContains(t, w.Body.String(), "stamp-1")
	})

	t.Run("Unauthorized", func(t *testing.T) {
		c, w := createTestContext(http.MethodGet, "/v1/me", nil)

		NewPermissionHandler(newTestLogger()).MeHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
