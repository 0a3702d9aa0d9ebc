//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"agroconnect/domain"
	"agroconnect/domain/event"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision without manual naming.
func WorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes domain events fanned out in-process.
type EventSink interface {
	Consume(e event.DomainEvent)
}

// Alerter surfaces a dismissable message to the user. Sync failures
// never go through it; validation and send failures do.
type Alerter interface {
	Alert(title, message string)
}

// IBackend is the REST backend as the client consumes it. Every call
// carries the bearer token when one is present; a 401 on any of them
// triggers the process-wide unauthorized hook.
type IBackend interface {
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Logout(ctx context.Context) error

	FetchCart(ctx context.Context) ([]domain.CartLine, error)
	CreateCartLine(ctx context.Context, line domain.CartLine) (string, error)
	UpdateCartLine(ctx context.Context, lineID string, quantity int) error
	DeleteCartLine(ctx context.Context, lineID string) error
	EmptyCart(ctx context.Context) error

	UnreadCount(ctx context.Context) (int, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
	ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error)
	SendMessage(ctx context.Context, conversationID, body string) error

	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ISessionRepository persists the session pieces under the device
// storage keys "token", "user" and "theme".
type ISessionRepository interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	SaveUser(user domain.User) error
	LoadUser() (domain.User, error)
	SaveTheme(mode domain.ThemeMode) error
	LoadTheme() (domain.ThemeMode, error)
	ClearCredentials() error
}

// ICartRepository persists the full cart line list as one snapshot
// under the device storage key "carrito".
type ICartRepository interface {
	SaveLines(lines []domain.CartLine) error
	LoadLines() ([]domain.CartLine, error)
	EraseLines() error
}

// ICatalogRepository caches the product listing locally and serves
// offline browsing and full-text search over it.
type ICatalogRepository interface {
	ReplaceAll(ctx context.Context, products []domain.Product) error
	Get(id int64) (domain.Product, error)
	All() ([]domain.Product, error)
	Search(ctx context.Context, terms string) ([]domain.Product, error)
}
