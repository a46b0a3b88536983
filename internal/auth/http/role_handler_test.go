package http

import (
	"encoding/json"
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

func setupRoleTestRouter(t *testing.T) (*gin.Engine, *httpMocks.MockRoleUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockRoleUseCase := &httpMocks.MockRoleUseCase{}
	handler := NewRoleHandler(mockRoleUseCase, newTestLogger())

	router := gin.New()
	router.POST("/v1/roles", handler.CreateHandler)
	router.GET("/v1/roles", handler.ListHandler)
	router.GET("/v1/roles/:name", handler.GetHandler)
	router.DELETE("/v1/roles/:name", handler.DeleteHandler)
	router.GET("/v1/roles/:name/claims", handler.ListClaimsHandler)
	router.POST("/v1/roles/:name/claims", handler.AddClaimHandler)
	router.DELETE("/v1/roles/:name/claims", handler.RemoveClaimHandler)

	return router, mockRoleUseCase
}

func newTestRole(name string) *authDomain.Role {
	return &authDomain.Role{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRoleHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		role := newTestRole("Editors")
		mockUseCase.On("Create", mock.Anything, "Editors").Return(role, nil).Once()

		w := performRequest(router, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{Name: "Editors"})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.RoleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, role.ID.String(), response.ID)
		assert.Equal(t, "Editors", response.Name)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		w := performRequest(router, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{Name: "Editors!"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		w := performRequest(router, http.MethodPost, "/v1/roles", "{")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_Conflict", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("Create", mock.Anything, "Editors").Return(nil, authDomain.ErrRoleAlreadyExists).Once()

		w := performRequest(router, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{Name: "Editors"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestRoleHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("Get", mock.Anything, "Editors").Return(newTestRole("Editors"), nil).Once()

		w := performRequest(router, http.MethodGet, "/v1/roles/Editors", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("Get", mock.Anything, "Ghost").Return(nil, authDomain.ErrRoleNotFound).Once()

		w := performRequest(router, http.MethodGet, "/v1/roles/Ghost", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRoleHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		roles := []*authDomain.Role{newTestRole("Admins"), newTestRole("Editors")}
		mockUseCase.On("List", mock.Anything, 0, 50).Return(roles, nil).Once()

		w := performRequest(router, http.MethodGet, "/v1/roles", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListRolesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, "Admins", response.Data[0].Name)
	})

	t.Run("Success_EmptyList", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("List", mock.Anything, 10, 5).Return([]*authDomain.Role{}, nil).Once()

		w := performRequest(router, http.MethodGet, "/v1/roles?offset=10&limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		w := performRequest(router, http.MethodGet, "/v1/roles?limit=1000", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRoleHandler_DeleteHandler(t *testing.T) {
	router, mockUseCase := setupRoleTestRouter(t)

	mockUseCase.On("Delete", mock.Anything, "Editors").Return(nil).Once()

	w := performRequest(router, http.MethodDelete, "/v1/roles/Editors", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestRoleHandler_Claims(t *testing.T) {
	permission := authDomain.NewPermissionClaim(authDomain.PermissionUsersView)

	t.Run("ListClaims", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("ListClaims", mock.Anything, "Editors").
			Return([]authDomain.Claim{permission}, nil).
			Once()

		w := performRequest(router, http.MethodGet, "/v1/roles/Editors/claims", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[{"type":"Permission","value":"Permissions.Users.View"}]}`, w.Body.String())
	})

	t.Run("AddClaim_ReturnsStoredClaim", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		requested := authDomain.Claim{Type: "permission", Value: authDomain.PermissionUsersView}
		mockUseCase.On("AddClaim", mock.Anything, "Editors", requested).Return(permission, nil).Once()

		w := performRequest(router, http.MethodPost, "/v1/roles/Editors/claims", dto.ClaimRequest{
			Type:  "permission",
			Value: authDomain.PermissionUsersView,
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.ClaimResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, authDomain.PermissionClaimType, response.Type)
	})

	t.Run("AddClaim_UnknownPermission", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("AddClaim", mock.Anything, "Editors", mock.Anything).
			Return(authDomain.Claim{}, authDomain.ErrUnknownPermission).
			Once()

		w := performRequest(router, http.MethodPost, "/v1/roles/Editors/claims", dto.ClaimRequest{
			Type:  "Permission",
			Value: "Permissions.Nope.View",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("AddClaim_MissingValue", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		w := performRequest(router, http.MethodPost, "/v1/roles/Editors/claims", dto.ClaimRequest{Type: "Permission"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "AddClaim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RemoveClaim_FromQuery", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("RemoveClaim", mock.Anything, "Editors", permission).Return(nil).Once()

		w := performRequest(router, http.MethodDelete,
			"/v1/roles/Editors/claims?type=Permission&value=Permissions.Users.View", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("RemoveClaim_NotFound", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		mockUseCase.On("RemoveClaim", mock.Anything, "Editors", mock.Anything).
			Return(authDomain.ErrClaimNotFound).
			Once()

		w := performRequest(router, http.MethodDelete,
			"/v1/roles/Editors/claims?type=department&value=sales", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("RemoveClaim_MissingQuery", func(t *testing.T) {
		router, mockUseCase := setupRoleTestRouter(t)

		w := performRequest(router, http.MethodDelete, "/v1/roles/Editors/claims?type=Permission", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "RemoveClaim", mock.Anything, mock.Anything, mock.Anything)
	})
}
