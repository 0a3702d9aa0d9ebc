package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"agroconnect/errors"
	"agroconnect/mocks"
)

func setupPoller(t *testing.T, token string) (*NotificationPoller, *mocks.MockIBackend, *mocks.MockAlerter) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockIBackend(ctrl)
	alerter := mocks.NewMockAlerter(ctrl)
	poller := NewNotificationPoller(backend,
		func() string { return token }, alerter, time.Second, slog.Default())
	return poller, backend, alerter
}

func TestNotificationPoller_ColdStartSuppression(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	// First observation after a cold start: messages were already
	// waiting, so no alert, only storage.
	backend.EXPECT().UnreadCount(ctx).Return(3, nil)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)
	poller.Tick(ctx)
	req.Equal(3, poller.Unread())
}

func TestNotificationPoller_AlertOnGrowth(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	gomock.InOrder(
		backend.EXPECT().UnreadCount(ctx).Return(3, nil),
		backend.EXPECT().UnreadCount(ctx).Return(5, nil),
	)
	alerter.EXPECT().Alert("Mensajes nuevos", fmt.Sprintf("Tienes %d mensajes sin leer", 5))

	poller.Tick(ctx)
	poller.Tick(ctx)
	req.Equal(5, poller.Unread())
}

func TestNotificationPoller_NoAlertOnDecreaseOrSame(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	gomock.InOrder(
		backend.EXPECT().UnreadCount(ctx).Return(5, nil),
		backend.EXPECT().UnreadCount(ctx).Return(5, nil),
		backend.EXPECT().UnreadCount(ctx).Return(2, nil),
	)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	poller.Tick(ctx)
	poller.Tick(ctx)
	poller.Tick(ctx)
	req.Equal(2, poller.Unread())
}

func TestNotificationPoller_GrowthFromZeroStaysSilent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	// 0 -> 4 is the first batch after catching up, not new activity on
	// top of known unread messages.
	gomock.InOrder(
		backend.EXPECT().UnreadCount(ctx).Return(0, nil),
		backend.EXPECT().UnreadCount(ctx).Return(4, nil),
	)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	poller.Tick(ctx)
	poller.Tick(ctx)
	req.Equal(4, poller.Unread())
}

func TestNotificationPoller_NoTokenNoNetwork(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "")

	backend.EXPECT().UnreadCount(gomock.Any()).Times(0)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	poller.Tick(ctx)
	req.Equal(0, poller.Unread())
}

func TestNotificationPoller_ErrorKeepsPreviousCount(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	gomock.InOrder(
		backend.EXPECT().UnreadCount(ctx).Return(3, nil),
		backend.EXPECT().UnreadCount(ctx).Return(0, stderrors.New("connection refused")),
	)
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	poller.Tick(ctx)
	poller.Tick(ctx)
	req.Equal(3, poller.Unread())
}

func TestNotificationPoller_SessionExpiryIsQuiet(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	poller, backend, alerter := setupPoller(t, "tok")

	// The 401 hook handles credential erasure; the poller neither
	// alerts nor counts it as a poll failure.
	backend.EXPECT().UnreadCount(ctx).
		Return(0, fmt.Errorf("wrapped: %w", errors.ErrNotAuthenticated))
	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	poller.Tick(ctx)
	req.Equal(0, poller.Unread())
}
