package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New writes JSON lines in production and a readable console format
// everywhere else.
func New(environment string) zerolog.Logger {
	return newLogger(environment, os.Stdout)
}

func newLogger(environment string, out io.Writer) zerolog.Logger {
	if environment != "production" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("env", environment).
		Str("app", "junkmart-web").
		Logger()

	if environment != "production" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}
