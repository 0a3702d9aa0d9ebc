package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"agroconnect/client"
	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/domain/event"
	"agroconnect/errors"
	"agroconnect/moderation"
)

// Conversation is the read/write state of one open chat thread.
//
// Reads follow the wholesale-replacement contract: every refresh
// replaces the message list with the server's order, no merge, no
// dedup. A sent message is appended optimistically and reconciled only
// by the next replacement, so it may briefly double-render or, if the
// send failed, vanish on the next tick.
type Conversation struct {
	mu        sync.RWMutex
	log       *slog.Logger
	backend   contract.IBackend
	alerter   contract.Alerter
	moderator *moderation.Moderator
	sinks     []contract.EventSink

	id       string
	selfID   string
	messages []domain.ChatMessage
}

// Open starts a conversation session and marks it read, best effort.
func Open(ctx context.Context, conversationID, selfID string,
	backend contract.IBackend, alerter contract.Alerter,
	moderator *moderation.Moderator, log *slog.Logger,
	sinks ...contract.EventSink) *Conversation {

	c := &Conversation{
		log:       log,
		backend:   backend,
		alerter:   alerter,
		moderator: moderator,
		sinks:     sinks,
		id:        conversationID,
		selfID:    selfID,
	}

	if err := backend.MarkConversationRead(ctx, conversationID); err != nil {
		log.Debug("Mark-read failed", "conversation", conversationID, "err", err)
	}
	return c
}

func (c *Conversation) ID() string {
	return c.id
}

// Refresh fetches the full message list and replaces local state with
// it. A failed refresh leaves the previous state displayed; the caller
// just skips the tick.
func (c *Conversation) Refresh(ctx context.Context) error {
	fetched, err := c.backend.ListMessages(ctx, c.id)
	if err != nil {
		return fmt.Errorf("refresh of conversation %s failed: %w", c.id, err)
	}

	for i := range fetched {
		fetched[i].SenderIsSelf = fetched[i].SenderID == c.selfID
	}

	c.mu.Lock()
	c.messages = fetched
	c.mu.Unlock()
	return nil
}

// Messages returns the current list in the server's returned order,
// plus any optimistic entries not yet replaced.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ChatMessage(nil), c.messages...)
}

// Send appends the message optimistically, then attempts the remote
// send. On failure the user is alerted and the typed text is returned
// with the error so the input can be restored.
func (c *Conversation) Send(ctx context.Context, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return body, errors.ErrEmptyMessage
	}

	masked := body
	var censored []string
	if c.moderator != nil {
		masked, censored = c.moderator.Censor(body)
	}
	language := whatlanggo.Detect(body).Lang.Iso6391()

	optimistic := domain.ChatMessage{
		ID:           uuid.NewString(),
		Body:         masked,
		SenderID:     c.selfID,
		SenderIsSelf: true,
		SentAt:       time.Now().UTC(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, optimistic)
	c.mu.Unlock()

	if err := c.backend.SendMessage(ctx, c.id, masked); err != nil {
		c.alerter.Alert("Mensaje no enviado",
			client.ServerMessage(err, "No se pudo enviar el mensaje"))
		return body, fmt.Errorf("send failed: %w", err)
	}

	if len(censored) > 0 {
		c.log.Warn("Outgoing message censored",
			"conversation", c.id, "words", censored, "lang", language)
	}
	c.publish(event.MessageSent{
		ConversationID: c.id,
		MessageID:      optimistic.ID,
		Language:       language,
		CensoredWords:  censored,
		At:             optimistic.SentAt,
	})
	return "", nil
}

func (c *Conversation) publish(e event.DomainEvent) {
	for _, sink := range c.sinks {
		sink.Consume(e)
	}
}
