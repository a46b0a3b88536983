package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/permguard/internal/auth/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a gin context whose request carries body as JSON.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// performRequest sends a request through router and returns the recorder.
func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// newBearerPrincipal builds an authenticated principal for userID carrying permissions.
func newBearerPrincipal(userID uuid.UUID, permissions ...string) *authDomain.Principal {
	identity := authDomain.NewIdentity(authDomain.BearerAuthenticationType,
		authDomain.Claim{Type: authDomain.SubjectClaimType, Value: userID.String()},
		authDomain.Claim{Type: authDomain.NameClaimType, Value: "Jane"},
		authDomain.Claim{Type: authDomain.EmailClaimType, Value: "jane@example.com"},
		authDomain.Claim{Type: authDomain.SecurityStampClaimType, Value: "stamp-1"},
	)
	for _, p := range permissions {
		identity.AddClaim(authDomain.NewPermissionClaim(p))
	}
	return authDomain.NewPrincipal(identity)
}

// withPrincipal returns a middleware that injects principal and tokenHash into the request.
func withPrincipal(principal *authDomain.Principal, tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithPrincipal(c.Request.Context(), principal)
		if tokenHash != "" {
			ctx = WithTokenHash(ctx, tokenHash)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
