package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sfbilling/sfbilling/pkg/types"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// requireAPIKey rejects requests whose x-api-key header does not match the configured key.
// It lets everything through when no key is configured.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKey == "" {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &types.ErrorResponse{
				Error: "Unauthorized: Invalid API key",
			})
			return
		}
		c.Next()
	}
}

// rateLimiter limits the number of requests per client IP within a fixed window.
func (s *Server) rateLimiter() gin.HandlerFunc {
	l := limiter.New(memory.NewStore(), s.rateLimit)
	return mgin.NewMiddleware(
		l,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, &types.ErrorResponse{
				Error: "Too many requests from this IP, please try again later.",
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			s.logger.Error("rate limiter failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: err.Error()})
		}),
	)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", APIKeyHeader, "Mcp-Session-Id"},
		ExposeHeaders: []string{"Mcp-Session-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.corsOrigin) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = s.corsOrigin
	}
	return cors.New(conf)
}

// recoveryHandler reports a panic that escaped a handler as a failed envelope.
func (s *Server) recoveryHandler(c *gin.Context, recovered any) {
	s.logger.Error("request panicked",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Any("panic", recovered),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, &types.ErrorResponse{
		Error: fmt.Sprint(recovered),
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			s.logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	}
}

func limitBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
