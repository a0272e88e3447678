package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload shared by both services.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity and role resolved from a verified
// token.
type Principal struct {
	UserID string
	Role   string
}

// Issuer creates and verifies bearer tokens with a symmetric secret shared
// between the services. It is a pure cryptographic transform; tokens are
// stateless and non-revocable until expiry.
type Issuer struct {
	Secret []byte
}

// Issue signs a token carrying subject and role, expiring after ttl.
func (i *Issuer) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.Secret)
}

// Verify validates signature and expiry and returns the principal. A token
// without a subject claim is rejected even when the signature is valid.
func (i *Issuer) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return i.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
