package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger on stdout. dev enables debug output.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "dev" {
		return l.Level(zerolog.DebugLevel)
	}
	return l.Level(zerolog.InfoLevel)
}
