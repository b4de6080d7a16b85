package middleware

import (
	"context"
	"net/http"

	"go-appointment-saas/pkg/response"

	"github.com/sirupsen/logrus"
)

// Limiter counts hits per key inside a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RateLimitMiddleware struct {
	limiter Limiter
	log     *logrus.Logger
}

func NewRateLimitMiddleware(limiter Limiter, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, log: log}
}

// Limit throttles by client IP under the given scope. When the limiter
// backend fails the request is let through.
func (m *RateLimitMiddleware) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, err := m.limiter.Allow(r.Context(), scope+":"+ClientIP(r))
			if err != nil {
				m.log.Warnf("Rate limiter unavailable: %+v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.TooManyRequests(w, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
