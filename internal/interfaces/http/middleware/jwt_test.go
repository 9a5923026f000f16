package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boutique/storefront/internal/infrastructure/auth"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "middleware-test-secret-32-characters"

func signToken(t *testing.T, roles []string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront",
			Subject:   "9",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: "9",
		Roles:  roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newAdminRouter(t *testing.T) *gin.Engine {
	verifier := auth.NewJWTVerifier(config.JWTConfig{Secret: testSecret, Issuer: "storefront", AdminRole: "admin"})
	router := gin.New()
	router.Use(RequestID())
	admin := router.Group("/admin", JWTAuth(verifier, zaptest.NewLogger(t)), RequireRole(verifier.AdminRole()))
	admin.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})
	return router
}

func TestJWTAuth_AdminRoutes(t *testing.T) {
	router := newAdminRouter(t)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"expired token", "Bearer " + signToken(t, []string{"admin"}, -time.Minute), http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"customer token", "Bearer " + signToken(t, []string{"customer"}, time.Minute), http.StatusForbidden, dto.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}

	t.Run("admin token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, []string{"admin"}, time.Minute))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "9", w.Body.String())
	})

	t.Run("expired token message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, []string{"admin"}, -time.Minute))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "Token has expired")
	})
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
