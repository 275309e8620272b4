// Package logger builds the zerolog instance every service binary shares.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with the service name. Unknown level
// strings fall back to info rather than failing startup.
func New(service, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return log
}
