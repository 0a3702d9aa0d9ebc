package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"agroconnect/chat"
	"agroconnect/domain"
	"agroconnect/mocks"
)

func TestChatPoller_RefreshesUntilCanceled(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockIBackend(ctrl)
	alerter := mocks.NewMockAlerter(ctrl)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	backend.EXPECT().MarkConversationRead(ctx, "conv-1").Return(nil)

	messages := []domain.ChatMessage{{ID: "m1", Body: "hola", SenderID: "them"}}
	calls := 0
	backend.EXPECT().
		ListMessages(gomock.Any(), "conv-1").
		DoAndReturn(func(context.Context, string) ([]domain.ChatMessage, error) {
			calls++
			return messages, nil
		}).
		MinTimes(2)

	conversation := chat.Open(ctx, "conv-1", "me", backend, alerter, nil, slog.Default())
	poller := NewChatPoller(conversation, 50*time.Millisecond, slog.Default())

	err := poller.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)

	// The immediate fetch plus at least one tick.
	req.GreaterOrEqual(calls, 2)
	req.Len(conversation.Messages(), 1)
}
