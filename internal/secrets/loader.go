package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when a source yields no usable secret.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes where a credential such as an API key or a token lives.
type Source struct {
	// Name appears in error messages, e.g. "openai api key".
	Name string
	// Value is an inline secret from the config file or the environment.
	Value string
	// File points to a file holding the secret. It takes precedence over Value.
	File string
}

// Load resolves src. The returned secret is trimmed, a trailing newline in a
// file is not part of the key.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
		if secret == "" {
			return "", fmt.Errorf("%w: %s file %q is empty", ErrNotConfigured, name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}

	return secret, nil
}

// Mask hides all but the last four characters of a secret for logging.
func Mask(secret string) string {
	const visible = 4

	runes := []rune(strings.TrimSpace(secret))
	if len(runes) <= visible {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-visible) + string(runes[len(runes)-visible:])
}
