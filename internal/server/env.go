package server

import (
	"github.com/joho/godotenv"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file. An empty path
// yields no variables.
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading env file %s", path), errors.ErrInvalidConfig)
	}
	return env, nil
}
