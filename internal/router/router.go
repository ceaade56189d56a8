package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authHandler "github.com/medalert/ice-api/internal/handler/auth"
	emergencyHandler "github.com/medalert/ice-api/internal/handler/emergency"
	healthHandler "github.com/medalert/ice-api/internal/handler/health"
	profileHandler "github.com/medalert/ice-api/internal/handler/profile"
	"github.com/medalert/ice-api/internal/middleware"
)

type Config struct {
	RateLimit   middleware.RateLimiterConfig
	CORS        middleware.CORSConfig
	Timeout     time.Duration
	MetricsPath string
}

type Router struct {
	engine     *gin.Engine
	registry   *prometheus.Registry
	auth       *middleware.AuthMiddleware
	authH      *authHandler.Handler
	profileH   *profileHandler.Handler
	emergencyH *emergencyHandler.Handler
	healthH    *healthHandler.Handler
	metrics    *routerMetrics
	config     Config
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	qrResolutions   *prometheus.CounterVec
}

func New(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	profileH *profileHandler.Handler,
	emergencyH *emergencyHandler.Handler,
	healthH *healthHandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	registerCustomValidators()

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	registry := prometheus.NewRegistry()

	r := &Router{
		engine:     engine,
		registry:   registry,
		auth:       auth,
		authH:      authH,
		profileH:   profileH,
		emergencyH: emergencyH,
		healthH:    healthH,
		metrics:    initRouterMetrics(registry),
		config:     config,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
		middleware.CORS(config.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET(r.config.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)

	// Public routes: auth plus the anonymous emergency resolver.
	r.authH.RegisterRoutes(api)
	r.emergencyH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.profileH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(registry *prometheus.Registry) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "ice_api_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ice_api_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		qrResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ice_api_qr_resolutions_total",
				Help: "Public QR resolutions by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(m.requestDuration, m.requestTotal, m.qrResolutions)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if path == "/api/v1/emergency/:qrCodeId" {
			outcome := "hit"
			if c.Writer.Status() >= 400 {
				outcome = "miss"
			}
			r.metrics.qrResolutions.WithLabelValues(outcome).Inc()
		}
	}
}
