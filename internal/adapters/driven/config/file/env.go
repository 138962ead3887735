package file

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored and variables already set are
// never overridden.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
