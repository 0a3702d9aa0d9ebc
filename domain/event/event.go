package event

import (
	"time"

	"agroconnect/domain"
)

// DomainEvent is anything the core publishes to in-process sinks.
// Sinks are for observability and side effects, never for core logic.
type DomainEvent interface {
	Kind() string
}

// SyncState tags the outcome of the remote half of a cart mutation.
type SyncState string

const (
	// Synced means the remote call for this mutation succeeded.
	Synced SyncState = "synced"
	// LocalOnly means the remote call failed and the mutation was
	// applied to local state alone. The user still sees success.
	LocalOnly SyncState = "local_only"
)

// SyncResult makes the local-first fallback explicit instead of
// swallowed: every mutation carries one, it is logged and counted but
// intentionally never escalated to the caller.
type SyncResult struct {
	State  SyncState
	Reason string
}

func SyncedResult() SyncResult {
	return SyncResult{State: Synced}
}

func LocalOnlyResult(err error) SyncResult {
	r := SyncResult{State: LocalOnly}
	if err != nil {
		r.Reason = err.Error()
	}
	return r
}

// Local reports whether the mutation never reached the backend.
func (r SyncResult) Local() bool {
	return r.State == LocalOnly
}

type CartLoaded struct {
	Source string // "remote" or "disk"
	Lines  int
}

func (CartLoaded) Kind() string { return "cart_loaded" }

type CartLineAdded struct {
	Line domain.CartLine
	Sync SyncResult
}

func (CartLineAdded) Kind() string { return "cart_line_added" }

type CartQuantityChanged struct {
	LineID   string
	Quantity int
	Sync     SyncResult
}

func (CartQuantityChanged) Kind() string { return "cart_quantity_changed" }

type CartLineRemoved struct {
	LineID string
	Sync   SyncResult
}

func (CartLineRemoved) Kind() string { return "cart_line_removed" }

type CartCleared struct {
	Sync SyncResult
}

func (CartCleared) Kind() string { return "cart_cleared" }

// CartMutationRejected is raised when a stock check fails before any
// network attempt.
type CartMutationRejected struct {
	ProductID int64
	Requested int
	Available int
}

func (CartMutationRejected) Kind() string { return "cart_mutation_rejected" }

type MessageSent struct {
	ConversationID string
	MessageID      string
	Language       string
	CensoredWords  []string
	At             time.Time
}

func (MessageSent) Kind() string { return "message_sent" }

// PollFailed is a skipped poll tick; the previous state stays
// displayed until the next successful one.
type PollFailed struct {
	Worker string
	Reason string
}

func (PollFailed) Kind() string { return "poll_failed" }

type UnreadChanged struct {
	Previous int
	Current  int
	Alerted  bool
}

func (UnreadChanged) Kind() string { return "unread_changed" }

type SessionOpened struct {
	UserID string
	Role   domain.Role
}

func (SessionOpened) Kind() string { return "session_opened" }

type SessionClosed struct{}

func (SessionClosed) Kind() string { return "session_closed" }
