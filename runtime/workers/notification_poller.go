package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"agroconnect/contract"
	"agroconnect/domain/event"
	"agroconnect/errors"
)

// NotificationPoller checks the unread-message count on a fixed
// interval. An alert fires only when the count grew AND the previous
// count was already non-zero: the first observation after a cold start
// is stored silently, so login doesn't spam the user.
type NotificationPoller struct {
	log      *slog.Logger
	backend  contract.IBackend
	tokens   func() string
	alerter  contract.Alerter
	sinks    []contract.EventSink
	interval time.Duration

	mu       sync.RWMutex
	previous int
}

func NewNotificationPoller(backend contract.IBackend, tokens func() string,
	alerter contract.Alerter, interval time.Duration, log *slog.Logger,
	sinks ...contract.EventSink) *NotificationPoller {
	return &NotificationPoller{
		log:      log,
		backend:  backend,
		tokens:   tokens,
		alerter:  alerter,
		sinks:    sinks,
		interval: interval,
	}
}

func (w *NotificationPoller) Run(ctx context.Context) error {
	w.log.Info("Starting notification poller", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick is one poll. Without a token the stored count resets to zero
// and no network call is made.
func (w *NotificationPoller) Tick(ctx context.Context) {
	if w.tokens() == "" {
		w.mu.Lock()
		w.previous = 0
		w.mu.Unlock()
		return
	}

	fresh, err := w.backend.UnreadCount(ctx)
	if err != nil {
		// Session expiry is handled by the global 401 hook, not here.
		if !stderrors.Is(err, errors.ErrNotAuthenticated) {
			w.log.Warn("Unread count fetch failed", "err", err)
			w.publish(event.PollFailed{Worker: "NotificationPoller", Reason: err.Error()})
		}
		return
	}

	w.mu.Lock()
	previous := w.previous
	w.previous = fresh
	w.mu.Unlock()

	alerted := fresh > previous && previous > 0
	if alerted {
		w.alerter.Alert("Mensajes nuevos",
			fmt.Sprintf("Tienes %d mensajes sin leer", fresh))
	}
	w.publish(event.UnreadChanged{Previous: previous, Current: fresh, Alerted: alerted})
}

// Unread returns the last stored count.
func (w *NotificationPoller) Unread() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.previous
}

func (w *NotificationPoller) publish(e event.DomainEvent) {
	for _, sink := range w.sinks {
		sink.Consume(e)
	}
}
