package middleware

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/requestctx"
)

const HeaderRequestID = "X-Request-ID"

// RequestContext stores the request ID and the client address in the
// context. Run it after chi's RealIP so RemoteAddr is the client's.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}

		ctx := requestctx.WithRequestID(r.Context(), requestID)
		ctx = requestctx.WithClient(ctx, requestctx.Client{IP: ip, UserAgent: r.UserAgent()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
