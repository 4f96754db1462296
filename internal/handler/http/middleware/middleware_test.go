package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/requestctx"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func withActor(r *http.Request, role user.Role) *http.Request {
	actor := user.Actor{UserID: "u-" + string(role), EmployeeID: "emp-1", Role: role}
	return r.WithContext(user.WithActor(r.Context(), actor))
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Hour)

	var seen user.Actor
	protected := jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = user.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("valid access token", func(t *testing.T) {
		token, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u-1", EmployeeID: "emp-1", Email: "a@example.com", Role: user.RoleHR})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "emp-1", seen.EmployeeID)
		assert.Equal(t, user.RoleHR, seen.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("sse token is not an access token", func(t *testing.T) {
		token, _, err := svc.GenerateSSEToken("emp-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type brokenChecker struct{}

func (brokenChecker) Allowed(user.Role, user.Permission) (bool, error) {
	return false, errors.New("policy store down")
}

func TestRequirePermission(t *testing.T) {
	enforcer, err := rbac.NewEnforcer(user.RolePermissions)
	require.NoError(t, err)
	h := RequirePermission(enforcer, user.PermissionLeaveApprove)(http.HandlerFunc(okHandler))

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"hr may approve", withActor(httptest.NewRequest(http.MethodPost, "/", nil), user.RoleHR), http.StatusOK},
		{"employee may not", withActor(httptest.NewRequest(http.MethodPost, "/", nil), user.RoleEmployee), http.StatusForbidden},
		{"anonymous", httptest.NewRequest(http.MethodPost, "/", nil), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tc.req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	RequirePermission(brokenChecker{}, user.PermissionLeaveApprove)(http.HandlerFunc(okHandler)).
		ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPost, "/", nil), user.RoleHR))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitByActor(t *testing.T) {
	limiter := NewActorRateLimiter(rate.Every(time.Hour), 2)
	h := RateLimitByActor(limiter)(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPost, "/", nil), user.RoleEmployee))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Buckets are per caller.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPost, "/", nil), user.RoleHR))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestContext(t *testing.T) {
	var requestID string
	var client requestctx.Client
	h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = requestctx.GetRequestID(r.Context())
		client = requestctx.GetClient(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set("User-Agent", "ledger-test")
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", requestID)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, requestctx.Client{IP: "10.0.0.7", UserAgent: "ledger-test"}, client)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, requestID)
	assert.NotEqual(t, "req-42", requestID)
	assert.Equal(t, requestID, rec.Header().Get(HeaderRequestID))
}
