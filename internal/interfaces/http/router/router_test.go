package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/infrastructure/auth"
	"github.com/boutique/storefront/internal/infrastructure/cache"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/infrastructure/scheduler"
	"github.com/boutique/storefront/internal/interfaces/http/handler"
	"github.com/boutique/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "router-test-secret-with-32-chars!"

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("orders", "/orders")
		assert.Equal(t, "orders", g.Name())
		assert.Equal(t, "/orders", g.Prefix())
	})

	t.Run("routes, middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
			c.Header("X-Guard", "applied")
			c.Next()
		})
		g.Group("orders", "/orders").
			POST("/:id/confirm", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
			DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.PATCH("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "patched") })

		NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

		w := serve(engine, http.MethodPost, "/api/v2/admin/orders/7/confirm", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "7", w.Body.String())
		assert.Equal(t, "applied", w.Header().Get("X-Guard"))

		assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodDelete, "/api/v2/admin/orders/7", "").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPatch, "/api/v2/admin/items/1", "").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/admin/items/1", "").Code)
	})
}

type noCandidates struct{}

func (noCandidates) FindAwaitingCourierSync(context.Context, int) ([]order.Order, error) {
	return nil, nil
}

func (noCandidates) SyncStatusOutcome(context.Context, int64) (*order.Order, apporder.SyncOutcome, error) {
	return nil, apporder.SyncSkipped, nil
}

func newTestEngine(t *testing.T, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()

	runner, err := scheduler.NewCourierSyncRunner(noCandidates{}, noCandidates{}, cache.NewInMemoryRunLock(), config.SchedulerConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	h := Handlers{
		Orders:        handler.NewOrderHandler(nil),
		AdminOrders:   handler.NewAdminOrderHandler(nil, nil),
		Products:      handler.NewProductHandler(nil),
		Notifications: handler.NewNotificationHandler(nil),
		Dashboard:     handler.NewDashboardHandler(nil),
		Jobs:          handler.NewJobHandler(runner),
		System:        handler.NewSystemHandler("storefront", "test"),
	}
	engine, err := NewEngine(Options{
		ServiceName:     "storefront",
		HTTP:            config.HTTPConfig{MaxBodySize: 1 << 10},
		Verifier:        auth.NewJWTVerifier(config.JWTConfig{Secret: testSecret, Issuer: "storefront", AdminRole: "admin"}),
		CheckoutLimiter: limiter,
		Logger:          zaptest.NewLogger(t),
	}, h)
	require.NoError(t, err)
	return engine
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, roles ...string) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront",
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: "1",
		Roles:  roles,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestNewEngine_Health(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := serve(engine, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `{"status":"healthy","checks":{}}`, w.Body.String())
}

func TestNewEngine_AdminGuard(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := "/api/v1/admin/jobs/courier-sync/last"

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, path, signToken(t, "customer")).Code)
	// no run has happened yet
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, path, signToken(t, "admin")).Code)
}

func TestNewEngine_OrderManagementRequiresAdmin(t *testing.T) {
	engine := newTestEngine(t, nil)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders/user/3"},
		{http.MethodPatch, "/api/v1/orders/7/status"},
		{http.MethodPatch, "/api/v1/orders/7/payment-status"},
	}
	customer := signToken(t, "customer")
	for _, route := range routes {
		assert.Equal(t, http.StatusUnauthorized, serve(engine, route.method, route.path, "").Code, "%s %s", route.method, route.path)
		assert.Equal(t, http.StatusForbidden, serve(engine, route.method, route.path, customer).Code, "%s %s", route.method, route.path)
	}

	// the id fails parsing in the handler, past the guard
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodPatch, "/api/v1/orders/abc/status", signToken(t, "admin")).Code)
}

func TestNewEngine_CheckoutAndLookupArePublic(t *testing.T) {
	engine := newTestEngine(t, nil)

	// both reach the handler and fail request validation
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodPost, "/api/v1/orders", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/orders/abc", "").Code)
}

func TestNewEngine_CheckoutRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	engine := newTestEngine(t, limiter)

	// the empty body fails validation before the service is reached
	first := serve(engine, http.MethodPost, "/api/v1/orders", "")
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := serve(engine, http.MethodPost, "/api/v1/orders", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// reads are not throttled
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/orders/abc", "").Code)
}

func TestNewEngine_Preflight(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := serve(engine, http.MethodOptions, "/api/v1/orders", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNewEngine_RequiresVerifier(t *testing.T) {
	_, err := NewEngine(Options{}, Handlers{})
	assert.Error(t, err)
}
