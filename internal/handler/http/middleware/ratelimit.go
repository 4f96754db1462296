package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

// ActorRateLimiter keeps one token bucket per caller.
type ActorRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewActorRateLimiter(limit rate.Limit, burst int) *ActorRateLimiter {
	return &ActorRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *ActorRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// RateLimitByActor answers 429 once the caller's bucket is empty. Requests
// without a caller pass through.
func RateLimitByActor(l *ActorRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := user.ActorFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if !l.limiter(actor.UserID).Allow() {
				response.TooManyRequests(w, "Too many requests, please slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
