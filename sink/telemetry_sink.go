package sink

import (
	"agroconnect/domain/event"
	"agroconnect/observability"
)

// TelemetrySink turns domain events into monitoring counters. It is
// observability only; losing an event loses a count, nothing else.
type TelemetrySink struct {
	monitoring *observability.MonitoringManager
}

func NewTelemetrySink(monitoring *observability.MonitoringManager) *TelemetrySink {
	return &TelemetrySink{monitoring: monitoring}
}

func (s *TelemetrySink) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.CartLineAdded:
		s.countSync(evt.Sync)
	case event.CartQuantityChanged:
		s.countSync(evt.Sync)
	case event.CartLineRemoved:
		s.countSync(evt.Sync)
	case event.CartCleared:
		s.countSync(evt.Sync)
	case event.CartMutationRejected:
		s.monitoring.IncrRejectedMutations()
	case event.PollFailed:
		s.monitoring.IncrPollFailures()
	case event.UnreadChanged:
		if evt.Alerted {
			s.monitoring.IncrAlertsRaised()
		}
	case event.MessageSent:
		s.monitoring.IncrMessagesSent()
	}
}

func (s *TelemetrySink) countSync(result event.SyncResult) {
	if result.Local() {
		s.monitoring.IncrLocalOnlyMutations()
		return
	}
	s.monitoring.IncrSyncedMutations()
}
