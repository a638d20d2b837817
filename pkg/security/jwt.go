package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted signing secret length. Shorter
// secrets make HS256 brute-forceable.
const MinSecretLength = 32

// ErrInvalidToken is returned for tokens that fail signature or expiry
// checks.
var ErrInvalidToken = errors.New("security: invalid token")

// TokenData records one provider's authentication inside a token. A single
// token can carry several entries so a client may be logged in against
// multiple providers at once.
type TokenData struct {
	Provider  string `json:"provider"`
	UserID    any    `json:"userId"`
	SessionID string `json:"sessionId"`
}

// Claims is the payload of a signed token.
type Claims struct {
	Providers []TokenData `json:"providers"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies the tokens shared by all providers of an
// application.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a token service for the given signing secret.
func NewJWTService(secret string) (*JWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("security: signing secret must be at least %d characters", MinSecretLength)
	}
	return &JWTService{secret: []byte(secret)}, nil
}

// Sign creates a token carrying the given provider entries. A non-zero
// expiry sets the exp claim; the token then expires together with the
// sessions it references.
func (s *JWTService) Sign(providers []TokenData, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Providers: providers,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if expiry != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses the token, checking signature and expiry.
func (s *JWTService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
