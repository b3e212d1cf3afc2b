package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/ratelimit"
)

const (
	requestIDHeader = "X-Request-Id"
	userIDHeader    = "X-User-Id"
	requestIDKey    = "request_id"
)

// requestID tags each request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

// logRequests writes one line per request.
func logRequests(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// clientKey identifies the caller for rate limiting: forwarded headers first,
// then the connection address.
func clientKey(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); v != "" {
		return strings.TrimSpace(strings.Split(v, ",")[0])
	}
	if v := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); v != "" {
		return v
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// rateLimit rejects callers over the limiter's budget with 429.
func rateLimit(l *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		ok, w, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			// Counter storage failing must not take the API down with it.
			logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		remaining := l.Limit() - w.Count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", itoa(l.Limit()))
		c.Header("X-RateLimit-Remaining", itoa(remaining))
		if !ok {
			retry := int(time.Until(l.ResetAt(w)).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(userIDHeader))
}
