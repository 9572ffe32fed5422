package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/matheus3301/eventd/internal/event"
)

// Log records accepted envelopes as structured log entries.
type Log struct {
	logger *zap.Logger
}

// NewLog wraps a logger as a delivery sink.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Deliver writes one log entry per envelope.
func (l *Log) Deliver(_ context.Context, evt event.Envelope) error {
	l.logger.Info("event accepted",
		zap.String("id", evt.ID),
		zap.String("kind", evt.Kind),
		zap.Time("occurred_at", evt.OccurredAt),
		zap.Any("payload", evt.Payload),
	)
	return nil
}
