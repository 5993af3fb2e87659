package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAccessToken returns the opaque bearer credential issued once per
// account: 32 random bytes, hex-encoded. Tokens are valid indefinitely, so a
// failure to gather entropy is an error, never a weaker fallback.
func GenerateAccessToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
