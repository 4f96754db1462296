package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

type PermissionChecker interface {
	Allowed(role user.Role, permission user.Permission) (bool, error)
}

// RequirePermission checks if user has specific permission
func RequirePermission(checker PermissionChecker, permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := user.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			allowed, err := checker.Allowed(actor.Role, permission)
			if err != nil {
				slog.Error("Failed to evaluate permission", "error", err, "role", actor.Role, "permission", permission)
				response.InternalServerError(w, "Failed to evaluate permissions")
				return
			}
			if !allowed {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, actor.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
