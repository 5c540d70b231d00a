// Package config holds application settings and the scoring rubric.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings holds process-level configuration read from the environment.
type Settings struct {
	// Directories. Empty values are resolved under the user config dir.
	CacheDir string
	DataDir  string

	// Upstream endpoints.
	SpanshBaseURL string
	EDSMBaseURL   string

	// Scoring batch concurrency. 0 means "number of CPUs".
	Concurrency int

	// Logging.
	LogLevel  string
	LogFormat string // console | json
}

// Load reads settings from the environment, with .env as a convenience
// overlay for development. Missing variables fall back to defaults.
func Load() (*Settings, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	s := &Settings{
		CacheDir:      os.Getenv("PIRATE_SCOUT_CACHE_DIR"),
		DataDir:       os.Getenv("PIRATE_SCOUT_DATA_DIR"),
		SpanshBaseURL: envOrDefault("SPANSH_BASE_URL", "https://spansh.co.uk/api"),
		EDSMBaseURL:   envOrDefault("EDSM_BASE_URL", "https://www.edsm.net"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "console"),
	}

	if v := os.Getenv("PIRATE_SCOUT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			s.Concurrency = n
		}
	}

	if s.CacheDir == "" || s.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			// Headless environments may not define a config dir.
			base = "."
		}
		if s.CacheDir == "" {
			s.CacheDir = filepath.Join(base, "pirate-scout", "cache")
		}
		if s.DataDir == "" {
			s.DataDir = filepath.Join(base, "pirate-scout")
		}
	}

	return s, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
