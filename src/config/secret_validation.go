package config

import (
	"fmt"
	"os"
	"strings"
)

const minJWTSecretLength = 32

// placeholderSecrets are sample values from docs and compose files that must
// never reach a running deployment.
var placeholderSecrets = []string{"changeme", "change-me", "secret", "your-secret-here"}

// readSecretFromFile reads a secret mounted as a file (docker/k8s secrets).
// It trims whitespace and returns an error if the file cannot be read or is empty.
func readSecretFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file '%s': %w", path, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file '%s' is empty", path)
	}

	return secret, nil
}

// ValidateJWTSecret enforces basic strength rules for the token signing key.
func ValidateJWTSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return fmt.Errorf("CRITICAL: JWT_SECRET is required for session and blob URL signing")
	}

	lowered := strings.ToLower(trimmed)
	for _, p := range placeholderSecrets {
		if strings.HasPrefix(lowered, p) {
			return fmt.Errorf("CRITICAL: JWT_SECRET looks like a placeholder value")
		}
	}

	if len(trimmed) < minJWTSecretLength {
		return fmt.Errorf("CRITICAL: JWT_SECRET must be at least %d characters (got %d)", minJWTSecretLength, len(trimmed))
	}

	return nil
}
