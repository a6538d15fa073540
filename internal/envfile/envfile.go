// Package envfile loads environment variables from .env files.
// Variables already set in the environment take precedence.
package envfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Load reads each .env file in order and sets variables not already in the
// environment, so the first file that defines a key wins.
// Missing files are skipped. Returns an error only for read or parse failures.
func Load(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("opening env file %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("reading env file %s: %w", path, err)
		}
	}
	return nil
}
