package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// TokenIDLen is the hex length of a session token id (16 random bytes).
const TokenIDLen = 32

var tokenIDRegex = regexp.MustCompile(`^[a-f0-9]{32}$`)

// GenerateTokenID returns a random session token id.
func GenerateTokenID() (string, error) {
	b := make([]byte, TokenIDLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidTokenID checks the token id format.
func ValidTokenID(id string) bool {
	return tokenIDRegex.MatchString(id)
}
