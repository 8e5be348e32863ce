package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of locally issued access tokens.
const DefaultTokenTTL = 60 * time.Minute

// TokenSigner issues and verifies HS256 access tokens.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenSigner creates a signer. ttl <= 0 selects DefaultTokenTTL.
// PRE: secret is non-empty
func NewTokenSigner(secret string, ttl time.Duration, issuer string) *TokenSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl, issuer: issuer}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject valid from now.
// POST: returns the token and its expiry
func (s *TokenSigner) Issue(subject, email string, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.ttl)
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry.
// POST: ErrInvalidAccessToken for anything that does not verify
func (s *TokenSigner) Parse(token string) (Claims, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidAccessToken
	}
	return Claims{Subject: claims.Subject, Email: claims.Email}, nil
}
