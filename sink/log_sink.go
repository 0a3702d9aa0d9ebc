package sink

import (
	"log/slog"

	"agroconnect/domain/event"
)

// LogSink writes every domain event to the debug log, keeping the
// local-only sync outcomes visible without ever surfacing them to the
// user.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.CartLineAdded:
		s.log.Debug("Cart line added",
			"line", evt.Line.LineID, "product", evt.Line.ProductID,
			"sync", evt.Sync.State, "reason", evt.Sync.Reason)
	case event.CartQuantityChanged:
		s.log.Debug("Cart quantity changed",
			"line", evt.LineID, "quantity", evt.Quantity,
			"sync", evt.Sync.State, "reason", evt.Sync.Reason)
	case event.CartLineRemoved:
		s.log.Debug("Cart line removed",
			"line", evt.LineID, "sync", evt.Sync.State, "reason", evt.Sync.Reason)
	case event.CartCleared:
		s.log.Debug("Cart cleared", "sync", evt.Sync.State, "reason", evt.Sync.Reason)
	default:
		s.log.Debug("Domain event", "kind", e.Kind())
	}
}
