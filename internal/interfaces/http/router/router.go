// Package router assembles the gin engine: global middleware, the versioned
// API groups and the admin guard.
package router

import (
	"fmt"
	"net/http"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/infrastructure/logger"
	"github.com/boutique/storefront/internal/interfaces/http/handler"
	"github.com/boutique/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one resource before they are mounted
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// AdminVerifier validates admin bearer tokens
type AdminVerifier interface {
	middleware.TokenVerifier
	AdminRole() string
}

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Orders        *handler.OrderHandler
	AdminOrders   *handler.AdminOrderHandler
	Products      *handler.ProductHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
	Jobs          *handler.JobHandler
	System        *handler.SystemHandler
}

// Options configure the engine middleware
type Options struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Verifier    AdminVerifier
	// Meter enables request metrics when set
	Meter metric.Meter
	// CheckoutLimiter throttles POST /orders when set
	CheckoutLimiter *middleware.RateLimiter
	Logger          *zap.Logger
}

// NewEngine builds the storefront gin engine
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Verifier == nil {
		return nil, fmt.Errorf("router: admin token verifier is required")
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: invalid trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(opts.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		middleware.Tracing(opts.ServiceName),
		middleware.SpanEnricher(),
	)
	if opts.Meter != nil {
		metrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	engine.Use(
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFrom(opts.HTTP)),
	)
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)

	r := NewRouter(engine)
	r.Register(ordersGroup(h, opts.CheckoutLimiter, opts.Verifier, opts.Logger))
	r.Register(productsGroup(h))
	r.Register(adminGroup(h, opts.Verifier, opts.Logger))
	r.Register(NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo))
	r.Setup()

	return engine, nil
}

// ordersGroup mounts the order routes. Checkout and single order lookup are
// public; listings and the status setters require an admin token.
func ordersGroup(h Handlers, limiter *middleware.RateLimiter, verifier AdminVerifier, log *zap.Logger) *DomainGroup {
	checkout := []gin.HandlerFunc{h.Orders.Create}
	if limiter != nil {
		checkout = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, checkout...)
	}
	admin := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middleware.JWTAuth(verifier, log),
			middleware.RequireRole(verifier.AdminRole()),
			handler,
		}
	}

	return NewDomainGroup("orders", "/orders").
		POST("", checkout...).
		GET("", admin(h.Orders.List)...).
		GET("/user/:userId", admin(h.Orders.ListByUser)...).
		GET("/:id", h.Orders.Get).
		PATCH("/:id/status", admin(h.Orders.UpdateStatus)...).
		PATCH("/:id/payment-status", admin(h.Orders.UpdatePaymentStatus)...)
}

func productsGroup(h Handlers) *DomainGroup {
	return NewDomainGroup("products", "/products").
		GET("", h.Products.List).
		GET("/:id", h.Products.Get)
}

func adminGroup(h Handlers, verifier AdminVerifier, log *zap.Logger) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(middleware.JWTAuth(verifier, log), middleware.RequireRole(verifier.AdminRole()))

	admin.Group("products", "/products").
		PATCH("/:id/stock", h.Products.UpdateStock)

	admin.Group("notifications", "/notifications").
		GET("", h.Notifications.List).
		PATCH("/:id/read", h.Notifications.MarkRead)

	admin.Group("orders", "/orders").
		POST("/:id/confirm", h.AdminOrders.Confirm).
		POST("/:id/sync", h.AdminOrders.Sync).
		DELETE("/:id", h.AdminOrders.Delete).
		POST("/:id/courier/cancel", h.AdminOrders.CancelParcel).
		GET("/:id/invoice", h.AdminOrders.InvoiceURL)

	admin.Group("courier", "/courier").
		GET("/balance", h.AdminOrders.CourierBalance)

	admin.Group("jobs", "/jobs").
		POST("/courier-sync", h.Jobs.RunCourierSync).
		GET("/courier-sync/last", h.Jobs.LastCourierSync)

	admin.Group("dashboard", "/dashboard").
		GET("/revenue", h.Dashboard.Revenue).
		GET("/revenue-chart", h.Dashboard.RevenueChart).
		GET("/performance", h.Dashboard.Performance).
		GET("/trends", h.Dashboard.Trends)

	return admin
}
