package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// LoadDotEnv merges <root>/.env and <root>/.env.local into the process environment.
// Variables that are already set keep their values. It returns the files loaded.
func LoadDotEnv(root string) ([]string, error) {
	var loaded []string
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("path", path).Build()
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// EnvName returns the prefixed environment variable name for key.
func EnvName(key string) string { return EnvPrefix + key }
