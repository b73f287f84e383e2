package envfile

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load reads the given .env files (default ./.env) into the process environment
// without overriding variables that are already set. Missing files are not an error.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
