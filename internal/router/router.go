package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/policy"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ResourceHandler mounts a resource group guarded by the given middleware.
type ResourceHandler interface {
	RegisterRoutes(*gin.RouterGroup, ...gin.HandlerFunc)
}

type Handlers struct {
	Auth         Handler
	Clinic       ResourceHandler
	Doctor       ResourceHandler
	Patient      ResourceHandler
	Consultation ResourceHandler
	Health       *health.Handler
	Metrics      *prometheus.Handler
}

type RouterConfig struct {
	BasePath         string
	Policies         policy.Table
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	validator.RegisterJSONTagNames()

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(handler.MsgNotFound))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.NewErrorResponse("Method \""+c.Request.Method+"\" not allowed."))
	})

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
		middleware.Timeout(config.RequestTimeout),
		middleware.SizeLimit(config.MaxBodyBytes),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}

	// token endpoints ignore any Authorization header
	public := r.engine.Group(r.config.BasePath)
	r.handlers.Auth.RegisterRoutes(public)

	api := r.engine.Group(r.config.BasePath, r.auth.Authenticate())

	r.handlers.Clinic.RegisterRoutes(api, middleware.Authorize(r.config.Policies, policy.ResourceClinics))
	r.handlers.Doctor.RegisterRoutes(api, middleware.Authorize(r.config.Policies, policy.ResourceDoctors))
	r.handlers.Patient.RegisterRoutes(api, middleware.Authorize(r.config.Policies, policy.ResourcePatients))
	r.handlers.Consultation.RegisterRoutes(api, middleware.Authorize(r.config.Policies, policy.ResourceConsultations))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}
