// Package auth manages the ingest token that gates WebSocket streams.
// The token lives at <dataDir>/token with owner-only permissions and can be
// pinned through the FRAMEWIRE_TOKEN environment variable.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// rawTokenBytes of entropy encode to a 32-character URL-safe token.
const rawTokenBytes = 24

const tokenLength = 32

// GenerateToken mints a fresh token and persists it.
func GenerateToken(dataDir string) (string, error) {
	raw := make([]byte, rawTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := writeToken(dataDir, token); err != nil {
		return "", err
	}
	return token, nil
}

// LoadOrGenerateToken resolves the active token. FRAMEWIRE_TOKEN wins and is
// persisted so later validation sees it; otherwise an existing token file is
// reused, and a token is minted only when neither exists.
func LoadOrGenerateToken(dataDir string) (string, error) {
	if env := strings.TrimSpace(os.Getenv("FRAMEWIRE_TOKEN")); env != "" {
		if err := writeToken(dataDir, env); err != nil {
			return "", err
		}
		return env, nil
	}

	if data, err := os.ReadFile(tokenPath(dataDir)); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}

	return GenerateToken(dataDir)
}

// ValidateToken reports whether candidate matches the persisted token. The
// comparison is constant-time; a missing or empty token file rejects
// everything.
func ValidateToken(dataDir, candidate string) bool {
	data, err := os.ReadFile(tokenPath(dataDir))
	if err != nil {
		return false
	}
	stored := strings.TrimSpace(string(data))
	if stored == "" {
		return false
	}
	candidate = strings.TrimSpace(candidate)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func writeToken(dataDir, token string) error {
	path := tokenPath(dataDir)
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file %s: %w", path, err)
	}
	return nil
}

func tokenPath(dataDir string) string {
	return filepath.Join(dataDir, "token")
}
