/*
Package jwt inspects the optional backend bearer token held in local storage.

Issuance and validation belong to the backend. The client only reads the
unverified claims to warn about stale tokens and formats the Authorization header.
*/
package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// AuthorizationHeader is the header the bearer token travels in.
const AuthorizationHeader = "Authorization"

// ErrNotJWT is returned when the stored token is opaque rather than a JWT.
var ErrNotJWT = errors.New("bearer token is not a JWT")

// HeaderValue formats token for the Authorization header.
func HeaderValue(token string) string {
	return "Bearer " + token
}

// Inspect decodes the token's claims without verifying its signature.
func Inspect(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// IsExpired reports whether token is a JWT whose exp lies before now.
// Opaque tokens and tokens without exp are never considered expired.
func IsExpired(token string, now time.Time) bool {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == 0 {
		return false
	}

	return now.Unix() > claims.ExpiresAt
}
