package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	actor := user.Actor{UserID: "u-1", EmployeeID: "emp-1", Email: "a@example.com", Role: user.RoleHR}

	token, expiresAt, err := svc.GenerateAccessToken(actor)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	got, err := svc.ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestActorFromClaims_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	cases := map[string]map[string]any{
		"wrong type":   {"type": "sse", "user_id": "u", "employee_id": "e", "role": "HR"},
		"no employee":  {"type": "access", "user_id": "u", "role": "HR"},
		"unknown role": {"type": "access", "user_id": "u", "employee_id": "e", "role": "Owner"},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ActorFromClaims(claims)
			assert.ErrorIs(t, err, ErrInvalidClaims)
		})
	}
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err, "SSE tokens are single use")

	access, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u", EmployeeID: "emp-1", Role: user.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("another-secret", time.Hour)
	foreign, _, err := other.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(foreign)
	assert.Error(t, err)
}
