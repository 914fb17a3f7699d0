package jwt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(subject auth.AuthContext) (token string, expiresAt int64, err error)
	// ParseAccessToken decodes and verifies an access token and returns its caller.
	ParseAccessToken(token string) (auth.AuthContext, error)
	JWTAuth() *jwtauth.JWTAuth
	// RevokeToken blocks token until it would have expired anyway.
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	// revokedTokens maps a revoked token to the latest time it can still be valid.
	revokedTokens map[string]int64
	mu            sync.RWMutex
	now           func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
		now:                       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// AccessClaims builds the claim set of an access token for subject.
// employee_id is null when the caller is not linked to an employee.
func AccessClaims(subject auth.AuthContext, expiresAt int64) map[string]interface{} {
	var employeeID interface{}
	if subject.EmployeeID != "" {
		employeeID = subject.EmployeeID
	}
	return map[string]interface{}{
		"user_id":     subject.UserID,
		"email":       subject.Email,
		"employee_id": employeeID,
		"is_admin":    subject.IsAdmin,
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}
}

func (j *JWTService) GenerateAccessToken(subject auth.AuthContext) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()
	_, token, err = j.tokenAuth.Encode(AccessClaims(subject, expiresAt))
	return token, expiresAt, err
}

func (j *JWTService) ParseAccessToken(tokenString string) (auth.AuthContext, error) {
	if j.IsTokenRevoked(tokenString) {
		return auth.AuthContext{}, auth.ErrInvalidToken
	}
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return auth.AuthContext{}, auth.ErrTokenExpired
		}
		return auth.AuthContext{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil || claims["type"] != TokenTypeAccess {
		return auth.AuthContext{}, auth.ErrInvalidToken
	}
	return auth.FromClaims(claims)
}

// A token issued by this service expires at most one access lifetime from now,
// so that bound is kept instead of decoding the token.
func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for t, until := range j.revokedTokens {
		if until < now.Unix() {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = now.Add(j.accessTokenExpirationTime).Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
