/*
Package randx generates the random values used for placeholder identities.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// GuestEmailRange bounds the numeric suffix of generated guest emails: [0, GuestEmailRange).
const GuestEmailRange = 9999

// IdentityID returns a fresh UUID v4 string.
func IdentityID() string {
	return uuid.New().String()
}

// GuestEmail returns guest<N>@domain with N drawn uniformly from [0, GuestEmailRange).
func GuestEmail(domain string) (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(GuestEmailRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number for guest email: %w", err)
	}

	return fmt.Sprintf("guest%d@%s", num.Int64(), domain), nil
}
