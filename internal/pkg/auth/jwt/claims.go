package jwt

import "github.com/golang-jwt/jwt"

// Claims is the subset of a backend-issued bearer token the client reads.
// The client never verifies signatures; that is the backend's job.
type Claims struct {
	jwt.StandardClaims

	// Role is set by the backend for administrative tokens.
	Role string `json:"role,omitempty"`
}
