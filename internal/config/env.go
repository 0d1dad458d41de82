package config

import (
	"github.com/joho/godotenv"

	"github.com/voicetype/voicetype/internal/logger"
)

// LoadDotEnv best-effort overlays a .env file (if present) onto the
// process environment. A missing .env is not an error. The CLI in
// internal/cli does not call it; the daemon uses the YAML config and the
// system environment only.
func LoadDotEnv(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment only")
	}
}
