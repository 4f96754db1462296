package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

// ClaimsParser turns verified access-token claims into the caller.
type ClaimsParser interface {
	ActorFromClaims(claims map[string]any) (user.Actor, error)
}

// AuthRequired rejects requests without a valid access token and stores the
// caller in the request context. It expects jwtauth.Verifier to run first.
func AuthRequired(parser ClaimsParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			actor, err := parser.ActorFromClaims(claims)
			if err != nil {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
