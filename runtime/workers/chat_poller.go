package workers

import (
	"context"
	"log/slog"
	"time"

	"agroconnect/chat"
	"agroconnect/contract"
	"agroconnect/domain/event"
)

// ChatPoller refreshes one open conversation on a fixed interval,
// replacing its message list wholesale with the server's. It runs
// until its context is canceled, which happens when the conversation
// view is closed.
type ChatPoller struct {
	log          *slog.Logger
	conversation *chat.Conversation
	interval     time.Duration
	sinks        []contract.EventSink
}

func NewChatPoller(conversation *chat.Conversation, interval time.Duration,
	log *slog.Logger, sinks ...contract.EventSink) *ChatPoller {
	return &ChatPoller{
		log:          log,
		conversation: conversation,
		interval:     interval,
		sinks:        sinks,
	}
}

func (w *ChatPoller) Run(ctx context.Context) error {
	w.log.Info("Starting chat poller",
		"conversation", w.conversation.ID(), "interval", w.interval)

	// Fetch once immediately so the view isn't empty for a full tick.
	if err := w.conversation.Refresh(ctx); err != nil {
		w.log.Warn("Initial refresh failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A failed tick is skipped; the previous state stays
			// displayed until the next successful one.
			if err := w.conversation.Refresh(ctx); err != nil {
				w.log.Warn("Poll tick skipped", "err", err)
				for _, sink := range w.sinks {
					sink.Consume(event.PollFailed{Worker: "ChatPoller", Reason: err.Error()})
				}
			}
		}
	}
}
