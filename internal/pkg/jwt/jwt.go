package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	// ActorFromClaims turns verified access-token claims into the caller.
	ActorFromClaims(claims map[string]any) (user.Actor, error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	// ValidateSSEToken checks an SSE token and consumes it, so each token
	// opens at most one stream.
	ValidateSSEToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time

	mu            sync.Mutex
	revokedTokens map[string]time.Time // token -> expiry
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
		revokedTokens:             make(map[string]time.Time),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]any{
		"user_id":     actor.UserID,
		"employee_id": actor.EmployeeID,
		"email":       actor.Email,
		"role":        string(actor.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ActorFromClaims(claims map[string]any) (user.Actor, error) {
	if t, _ := claims["type"].(string); t != TokenTypeAccess {
		return user.Actor{}, ErrInvalidClaims
	}

	userID, _ := claims["user_id"].(string)
	employeeID, _ := claims["employee_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || employeeID == "" || !user.Role(role).Valid() {
		return user.Actor{}, ErrInvalidClaims
	}

	return user.Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		Email:      email,
		Role:       user.Role(role),
	}, nil
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(employeeID string) (token string, expiresIn int, err error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]any{
		"employee_id": employeeID,
		"type":        TokenTypeSSE,
		"exp":         j.now().Add(sseTokenTTL).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (employeeID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}
	value, ok := token.Get("employee_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	employeeID, ok = value.(string)
	if !ok || employeeID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	if !j.consume(tokenString, token.Expiration()) {
		return "", jwt.ErrInvalidJWT()
	}
	return employeeID, nil
}

// consume marks a token as used and reports whether it was unused. Expired
// entries are pruned on the way.
func (j *JWTService) consume(tokenString string, expiresAt time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for t, exp := range j.revokedTokens {
		if now.After(exp) {
			delete(j.revokedTokens, t)
		}
	}
	if _, used := j.revokedTokens[tokenString]; used {
		return false
	}
	j.revokedTokens[tokenString] = expiresAt
	return true
}
