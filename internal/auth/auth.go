// Package auth decodes the opaque access token the external Auth service
// mints. Issuance, refresh, and rotation live in that external service
// this package only implements the narrow "trust this
// player id" path the core needs.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the reference implementation's JWT claim shape: an
// integer player id and a standard expiry.
type Claims struct {
	ID int64 `json:"id"`
	jwt.RegisteredClaims
}

// ErrUnauthenticated is returned for a missing, malformed, or expired
// token, mapping to an Unauthenticated status code for the caller.
var ErrUnauthenticated = errors.New("auth: token missing, invalid, or expired")

// Parse validates a bearer token against secret (the base64-decoded
// JWT_SECRET) and returns the embedded player id.
func Parse(token string, secret []byte) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrUnauthenticated
	}

	return claims.ID, nil
}
