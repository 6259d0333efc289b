package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LoggingMiddleware logs every request with its duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Base().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// TenantRateLimiter caps inbound webhook calls per tenant. Keys without
// traffic are kept; the tenant population is small enough not to matter.
type TenantRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

// NewTenantRateLimiter creates a limiter allowing perMinute calls per key.
func NewTenantRateLimiter(perMinute int) *TenantRateLimiter {
	return &TenantRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMinute,
	}
}

// Allow reports whether the key may proceed.
func (l *TenantRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
