package main

import (
	"time"

	_ "github.com/ZanzyTHEbar/koa-frailty-meter/docs"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/config"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/frontend"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/middleware"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/resilience"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/security"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// server holds the long-lived collaborators shared by every handler.
type server struct {
	cfg         *config.Config
	scorer      *analysis.Scorer
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	limiter     *ratelimit.RateLimiter
	health      *resilience.DegradationManager
	security    *security.SecurityMiddleware
	compression *middleware.CompressionMiddleware
	startedAt   time.Time
}

func newServer(cfg *config.Config, metrics *monitoring.Metrics, logger *monitoring.Logger,
	limiter *ratelimit.RateLimiter, health *resilience.DegradationManager) *server {
	securityConfig := security.DefaultSecurityConfig()
	securityConfig.RequestTimeout = cfg.Security.RequestTimeout

	compressionConfig := middleware.DefaultCompressionConfig()
	compressionConfig.ExcludedPaths = []string{"/metrics"}

	return &server{
		cfg:         cfg,
		scorer:      analysis.NewScorer(cfg.Model),
		metrics:     metrics,
		logger:      logger,
		limiter:     limiter,
		health:      health,
		security:    security.NewSecurityMiddleware(securityConfig),
		compression: middleware.NewCompressionMiddleware(compressionConfig),
		startedAt:   time.Now(),
	}
}

func newRouter(s *server) (*gin.Engine, error) {
	corsConfig := newCORSConfig(s.cfg.Server.AllowedOrigins)
	if err := corsConfig.Validate(); err != nil {
		return nil, apperrors.NewConfigurationError("invalid ALLOWED_ORIGINS", err)
	}

	form, err := frontend.NewHandler(s.scorer, s.metrics, s.logger)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load page templates", err)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(s.security.Config().TrustedProxies); err != nil {
		return nil, apperrors.NewConfigurationError("invalid trusted proxies", err)
	}

	// monitoring first so recovered panics are still counted
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, s.security.Config().MaxBodyBytes))
	r.Use(security.SecurityHeadersMiddleware(s.cfg.Security.EnableHSTS))
	r.Use(s.compression.Handler())
	r.Use(apperrors.ErrorHandler())

	pages := r.Group("/", security.CSPMiddleware())
	pages.GET("/", form.ShowForm)
	pages.POST("/assess", s.submissionChain(form.Submit)...)

	api := r.Group("/api/v1", cors.New(corsConfig))
	api.POST("/assessments", s.submissionChain(s.createAssessment)...)
	api.GET("/model", s.getModel)
	api.GET("/fields", s.getFields)
	// preflight requests are answered by the cors middleware
	api.OPTIONS("/*path", func(c *gin.Context) {})

	r.GET("/health", s.healthCheck)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	if s.cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}

// submissionChain guards a scoring endpoint with the request limits and the per-IP rate limit.
func (s *server) submissionChain(handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := append(s.security.Guards(), s.limiter.IPRateLimitMiddleware())
	return append(chain, handler)
}

func newCORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", monitoring.RequestIDHeader},
		ExposeHeaders: []string{
			monitoring.RequestIDHeader,
			"Retry-After",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		MaxAge: 12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
