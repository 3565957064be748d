package middleware

import (
	"io"
	"os"
	"time"

	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// GetLogger returns the application logger. Standard output belongs to the
// menu, so logs always go to standard error.
func GetLogger(config configpkg.Config) zerolog.Logger {

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var (
		output   io.Writer = os.Stderr
		logLevel           = zerolog.InfoLevel // default to INFO
	)

	log := zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Logger()

	if config.Environement == "development" {
		log = log.
			Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.TraceLevel).
			With().
			Caller().
			Logger()
	}

	return log
}
