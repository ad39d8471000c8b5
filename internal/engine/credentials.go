package engine

import (
	"fmt"
	"os"

	"github.com/HerbHall/themeforge/pkg/theme"
)

// Compile-time interface guards.
var (
	_ theme.CredentialSource = StaticCredentials("")
	_ theme.CredentialSource = (*EnvCredentials)(nil)
)

// StaticCredentials is a fixed API key, for tests and embedding callers
// that manage credentials themselves.
type StaticCredentials string

// APIKey implements theme.CredentialSource.
func (s StaticCredentials) APIKey() (string, error) {
	return string(s), nil
}

// EnvCredentials resolves the API key from an environment variable.
type EnvCredentials struct {
	Var string
}

// APIKey implements theme.CredentialSource.
func (e *EnvCredentials) APIKey() (string, error) {
	key := os.Getenv(e.Var)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", e.Var)
	}
	return key, nil
}
