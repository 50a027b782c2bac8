package redraw

import (
	"context"
	"log/slog"

	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
)

// Sink receives decoded events in arrival order.
type Sink interface {
	Apply(Event)
}

// Decoder turns redraw notifications into events for a Sink.
type Decoder struct {
	sink   Sink
	logger *slog.Logger
}

// NewDecoder builds a Decoder delivering to sink.
func NewDecoder(sink Sink, logger *slog.Logger) *Decoder {
	return &Decoder{
		sink:   sink,
		logger: logging.NewComponentLogger(logger, "redraw"),
	}
}

// HandleRedraw decodes args and applies every well-formed event. Malformed
// tuples are logged and dropped.
func (d *Decoder) HandleRedraw(args []rpcvalue.Value) {
	res, err := Decode(args)
	if err != nil {
		logging.ErrorWithContext(d.logger, "redraw batch contained malformed events", "redraw_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "update neobridge to match the running Neovim version"),
		)
	}
	if len(res.Skipped) > 0 {
		logging.Trace(context.Background(), d.logger, "skipped unsupported redraw events",
			logging.Any("events", res.Skipped),
		)
	}
	if d.sink == nil {
		return
	}
	for _, ev := range res.Events {
		d.sink.Apply(ev)
	}
}
