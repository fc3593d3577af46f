package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

// MinAPIKeyLength is the shortest API key NewServer accepts.
const MinAPIKeyLength = 16

// apiKeyBytes is the amount of randomness in a generated key.
const apiKeyBytes = 32

var apiKeyEncoding = base64.RawURLEncoding

// GenerateAPIKey returns a random key suitable for ServerOptions.APIKey and the x-api-key header.
func GenerateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return apiKeyEncoding.EncodeToString(b), nil
}

// ValidateAPIKey rejects keys that are too short to guard the tool API, or that
// cannot be sent unchanged in an HTTP header.
func ValidateAPIKey(key string) error {
	if len(key) < MinAPIKeyLength {
		return fmt.Errorf("API key must be at least %d characters long", MinAPIKeyLength)
	}
	if i := strings.IndexFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r > unicode.MaxASCII
	}); i >= 0 {
		return fmt.Errorf("API key contains a character not allowed in an HTTP header at position %d", i)
	}
	return nil
}
