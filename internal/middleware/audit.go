package middleware

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/bankservice"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// AuditLogger logs every ledger operation in JSON format.
func AuditLogger(logger zerolog.Logger) bankservice.AuditFunc {
	return func(ctx context.Context, op domain.Operation) {

		l := logger.With().Str("operation_id", op.ID.String()).Logger()

		var logEvent *zerolog.Event
		switch {
		case op.Err == nil:
			logEvent = l.Info()
		case errors.Is(op.Err, errorspkg.ErrInternal):
			logEvent = l.Error().Err(op.Err)
		default:
			// Rejected by the ledger rules.
			logEvent = l.Info().Err(op.Err)
		}

		dict := zerolog.Dict()
		for k, v := range op.Args {
			dict = dict.Str(k, v)
		}

		logEvent.
			Str("operation", op.Name).
			Dict("args", dict).
			Str("result", op.Result).
			Str("latency", op.Latency.String()).
			Msg("ledger operation")
	}
}
