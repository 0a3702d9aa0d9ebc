package sink

import (
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"agroconnect/domain/event"
	"agroconnect/observability"
)

func TestTelemetrySink_Counters(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitoringManager(slog.Default())
	s := NewTelemetrySink(monitoring)

	s.Consume(event.CartLineAdded{Sync: event.SyncedResult()})
	s.Consume(event.CartQuantityChanged{Sync: event.SyncedResult()})
	s.Consume(event.CartLineRemoved{Sync: event.LocalOnlyResult(stderrors.New("down"))})
	s.Consume(event.CartCleared{Sync: event.LocalOnlyResult(nil)})
	s.Consume(event.CartMutationRejected{ProductID: 1, Requested: 6, Available: 5})
	s.Consume(event.PollFailed{Worker: "NotificationPoller", Reason: "down"})
	s.Consume(event.UnreadChanged{Previous: 2, Current: 5, Alerted: true})
	s.Consume(event.UnreadChanged{Previous: 0, Current: 5, Alerted: false})
	s.Consume(event.MessageSent{ConversationID: "conv-1"})

	stats := monitoring.Snapshot()
	req.Equal(uint64(2), stats.SyncedMutations)
	req.Equal(uint64(2), stats.LocalOnlyMutations)
	req.Equal(uint64(1), stats.RejectedMutations)
	req.Equal(uint64(1), stats.PollFailures)
	req.Equal(uint64(1), stats.AlertsRaised)
	req.Equal(uint64(1), stats.MessagesSent)
}

func TestTelemetrySink_IgnoresSessionEvents(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitoringManager(slog.Default())
	s := NewTelemetrySink(monitoring)

	s.Consume(event.SessionOpened{UserID: "u-1"})
	s.Consume(event.SessionClosed{})
	s.Consume(event.CartLoaded{Source: "disk", Lines: 2})

	stats := monitoring.Snapshot()
	req.Zero(stats.SyncedMutations)
	req.Zero(stats.LocalOnlyMutations)
}
