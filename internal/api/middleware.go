package api

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/metrics"
)

const maxRequestIDLength = 128

// requestID tags every request with an id, echoed back in X-Request-ID, and
// stores a logger carrying it in the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		log := s.logger.WithFields(map[string]interface{}{"requestId": id})
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"durationMs": elapsed.Milliseconds(),
			"clientIp":   c.ClientIP(),
		}
		log := logger.FromContext(c.Request.Context(), s.logger)
		switch {
		case status >= 500:
			log.Error("Request failed", fields)
		case route == "/metrics" || route == "/api/health":
			log.Debug("Request served", fields)
		default:
			log.Info("Request served", fields)
		}
	}
}

// rateLimit throttles uploads per client IP. A limiter backend error lets the
// request through.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		decision, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context(), s.logger).Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			s.writeError(c, errors.NewRateLimitedError(decision.RetryAfter))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
