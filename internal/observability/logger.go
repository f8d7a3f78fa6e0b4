// Package observability sets up structured logging for the bridge.
package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// InitLogger builds the process logger. Output goes to stderr: stdout is
// the protocol channel and must carry nothing but frames.
func InitLogger(app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
}
