// Package api exposes the matching pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/ratelimit"
	"resume-matcher/internal/pipeline"
)

const (
	RequestIDHeader = "X-Request-ID"
	resumeField     = "resume"
)

// Matcher is the part of the pipeline the HTTP layer depends on.
type Matcher interface {
	Match(ctx context.Context, upload pipeline.Upload, opts pipeline.Options) (*pipeline.Result, error)
}

type Options struct {
	Config  config.ServerConfig
	Matcher Matcher
	Limiter ratelimit.Limiter // nil disables rate limiting
	Logger  logger.Logger
	Now     func() time.Time
}

type Server struct {
	cfg     config.ServerConfig
	matcher Matcher
	limiter ratelimit.Limiter
	logger  logger.Logger
	now     func() time.Time

	engine *gin.Engine
	srv    *http.Server
}

func New(opts Options) *Server {
	s := &Server{
		cfg:     opts.Config,
		matcher: opts.Matcher,
		limiter: opts.Limiter,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.engine = s.routes()
	s.srv = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"*"}
	}
	corsConfig.AllowWildcard = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader, "Retry-After"}
	r.Use(cors.New(corsConfig))

	r.GET("/api/health", s.health())
	r.POST("/api/resume-match", s.rateLimit(), s.resumeMatch())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// returned after Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr":           s.srv.Addr,
		"maxUploadBytes": s.cfg.MaxUploadBytes,
		"rateLimited":    s.limiter != nil,
	})
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
