package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer creates and verifies signed access tokens. The signing key and
// algorithm come from configuration and never change after construction.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

// NewTokenIssuer builds an issuer for the given signing algorithm. Only HMAC
// algorithms are supported; the configured secret is the shared key.
func NewTokenIssuer(secretKey, algorithm string, expiry time.Duration) (*TokenIssuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	if expiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}

	return &TokenIssuer{
		secret: []byte(secretKey),
		method: method,
		expiry: expiry,
	}, nil
}

// CreateAccessToken issues a signed token for the given subject, expiring
// after the configured duration. Each token carries a unique ID.
func (ti *TokenIssuer) CreateAccessToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(ti.method, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies a raw token string and returns its subject.
// Expired, tampered, or differently-signed tokens are rejected.
func (ti *TokenIssuer) ParseAccessToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != ti.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return ti.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("access token has no subject")
	}
	return claims.Subject, nil
}
