package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vocab-sprint/internal/domain"
)

// DefaultTokenTTL is how long a sign-in lasts.
const DefaultTokenTTL = 24 * time.Hour

const issuer = "vocab-sprint"

// Claims carried by an access token. Subject is the user ID, ID the token ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return NewTokenIssuerWithClock(secret, ttl, time.Now)
}

// NewTokenIssuerWithClock allows deterministic expiry in tests.
func NewTokenIssuerWithClock(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a new token for the user.
func (i *TokenIssuer) Issue(user domain.User) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry.
func (i *TokenIssuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

// Remaining is how long the token stays valid.
func (i *TokenIssuer) Remaining(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(i.now())
}
