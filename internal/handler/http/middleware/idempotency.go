package middleware

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotentReplayed  = "Idempotent-Replayed"
	idempotencyLockTTL        = 30 * time.Second
	maxIdempotencyKeyLength   = 255
	maxIdempotentResponseSize = 1 << 20
)

// storedResponse is what a completed request leaves behind in Redis.
type storedResponse struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

func fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func idempotencyCacheKey(r *http.Request, userID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", userID, r.Method, r.URL.Path, key)
}

// captureWriter tees the response so it can be cached.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	if c.body.Len()+len(b) <= maxIdempotentResponseSize {
		c.body.Write(b)
	}
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key already seen for the same caller and path. A duplicate
// arriving while the first is still running gets 409 PROCESSING, and a key
// reused with a different body gets 422. A nil client disables the check.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderIdempotencyKey)
			if rdb == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				response.BadRequest(w, "Idempotency-Key is too long", nil)
				return
			}
			actor, ok := user.ActorFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				response.BadRequest(w, "Failed to read request body", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bodySum := fingerprint(body)

			ctx := r.Context()
			cacheKey := idempotencyCacheKey(r, actor.UserID, key)
			lockKey := cacheKey + ":lock"

			cached, err := rdb.Get(ctx, cacheKey).Bytes()
			switch {
			case err == nil:
				var stored storedResponse
				if err := json.Unmarshal(cached, &stored); err != nil {
					slog.Warn("Discarding unreadable idempotent response", "key", cacheKey, "error", err)
					break
				}
				if stored.Fingerprint != bodySum {
					response.Fail(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
						"Idempotency-Key was already used with a different request body", nil)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(HeaderIdempotentReplayed, "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			case !errors.Is(err, redis.Nil):
				slog.Warn("Idempotency store unavailable, serving request without it", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, bodySum, idempotencyLockTTL).Result()
			if err != nil {
				slog.Warn("Idempotency store unavailable, serving request without it", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.Conflict(w, "PROCESSING", "A request with this Idempotency-Key is still being processed")
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			// The client may hang up; bookkeeping still has to finish.
			ctx = context.WithoutCancel(ctx)
			defer func() {
				if err := rdb.Del(ctx, lockKey).Err(); err != nil {
					slog.Warn("Failed to release idempotency lock", "key", lockKey, "error", err)
				}
			}()
			next.ServeHTTP(capture, r)

			// Server errors are not cached so the client can retry.
			if capture.status == 0 || capture.status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(storedResponse{Status: capture.status, Body: capture.body.Bytes(), Fingerprint: bodySum})
			if err != nil {
				return
			}
			if err := rdb.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
				slog.Warn("Failed to store idempotent response", "key", cacheKey, "error", err)
			}
		})
	}
}
