// Package secrets resolves credentials such as the Gemini API key.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source holds a value.
var ErrNotConfigured = errors.New("not configured")

// Source lists the places a secret may come from, in order of precedence:
// File, then Value, then the Env variable.
type Source struct {
	// Name is used in error messages.
	Name  string
	File  string
	Value string
	Env   string
}

// Load returns the trimmed secret from the first source that is set. A file
// that cannot be read or is empty is an error; a missing secret wraps
// ErrNotConfigured.
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
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
}
