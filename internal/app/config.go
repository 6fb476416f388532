package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"task-tracker/internal/config"
)

// LoadConfig reads envFile into the process environment and then builds the
// typed configuration. Variables already set in the environment win. An empty
// envFile means ".env", which may be absent.
func LoadConfig(envFile string) (*config.Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return config.LoadConfig()
}
