package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"

	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/errors"
)

// Mapping defaults applied when the backend omits snapshot fields on a
// cart line.
const (
	placeholderImage  = "🧺"
	placeholderSeller = "Productor local"
)

// APIError carries the backend's own message so screens can surface it
// verbatim, with a generic fallback when the body had none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// ServerMessage extracts the backend message from an error chain, or
// returns the given fallback.
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Backend is the REST adapter. A request middleware attaches the
// bearer token from the token source; a response middleware fires the
// unauthorized hook on any 401, which erases persisted credentials
// process-wide.
type Backend struct {
	http         *resty.Client
	log          *slog.Logger
	tokens       func() string
	unauthorized func()
}

func NewBackend(baseURL string, timeout time.Duration, log *slog.Logger) *Backend {
	b := &Backend{log: log}

	b.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	b.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if b.tokens != nil {
			if token := b.tokens(); token != "" {
				r.SetHeader("Authorization", "Bearer "+token)
			}
		}
		return nil
	})

	b.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		if r.StatusCode() == http.StatusUnauthorized && b.unauthorized != nil {
			b.unauthorized()
		}
		return nil
	})

	return b
}

// BindSession wires the token source and the global 401 side effect.
// Done after construction because the session store needs the backend
// for login while the backend needs the store for tokens.
func (b *Backend) BindSession(tokens func() string, onUnauthorized func()) {
	b.tokens = tokens
	b.unauthorized = onUnauthorized
}

type errorBody struct {
	Mensaje string `json:"mensaje"`
	Error   string `json:"error"`
}

func (e errorBody) message() string {
	if e.Mensaje != "" {
		return e.Mensaje
	}
	return e.Error
}

// asError maps a non-2xx response to a typed error. 401 wraps
// ErrNotAuthenticated so pollers can treat it as session expiry rather
// than a failure.
func asError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	body, _ := resp.Error().(*errorBody)
	apiErr := &APIError{Status: resp.StatusCode()}
	if body != nil {
		apiErr.Message = body.message()
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", errors.ErrNotAuthenticated, apiErr)
	}
	return apiErr
}

func (b *Backend) request(ctx context.Context) *resty.Request {
	return b.http.R().SetContext(ctx).SetError(&errorBody{})
}

type loginResponse struct {
	Token   string      `json:"token"`
	Usuario domain.User `json:"usuario"`
}

func (b *Backend) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	var out loginResponse
	resp, err := b.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return domain.User{}, "", fmt.Errorf("login request failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return domain.User{}, "", err
	}
	return out.Usuario, out.Token, nil
}

func (b *Backend) Logout(ctx context.Context) error {
	resp, err := b.request(ctx).Post("/auth/logout")
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return asError(resp)
}

func (b *Backend) FetchCart(ctx context.Context) ([]domain.CartLine, error) {
	var out []domain.CartLine
	resp, err := b.request(ctx).SetResult(&out).Get("/carrito")
	if err != nil {
		return nil, fmt.Errorf("cart fetch failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, err
	}
	return lo.Map(out, func(line domain.CartLine, _ int) domain.CartLine {
		return withLineDefaults(line)
	}), nil
}

type createdLine struct {
	ID string `json:"id"`
}

func (b *Backend) CreateCartLine(ctx context.Context, line domain.CartLine) (string, error) {
	var out createdLine
	resp, err := b.request(ctx).SetBody(line).SetResult(&out).Post("/carrito")
	if err != nil {
		return "", fmt.Errorf("cart line create failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (b *Backend) UpdateCartLine(ctx context.Context, lineID string, quantity int) error {
	resp, err := b.request(ctx).
		SetBody(map[string]int{"cantidad": quantity}).
		Put("/carrito/" + lineID)
	if err != nil {
		return fmt.Errorf("cart line update failed: %w", err)
	}
	return asError(resp)
}

func (b *Backend) DeleteCartLine(ctx context.Context, lineID string) error {
	resp, err := b.request(ctx).Delete("/carrito/" + lineID)
	if err != nil {
		return fmt.Errorf("cart line delete failed: %w", err)
	}
	return asError(resp)
}

func (b *Backend) EmptyCart(ctx context.Context) error {
	resp, err := b.request(ctx).Delete("/carrito")
	if err != nil {
		return fmt.Errorf("cart empty failed: %w", err)
	}
	return asError(resp)
}

type unreadResponse struct {
	NoLeidos int `json:"no_leidos"`
}

func (b *Backend) UnreadCount(ctx context.Context) (int, error) {
	var out unreadResponse
	resp, err := b.request(ctx).SetResult(&out).Get("/chats/no-leidos")
	if err != nil {
		return 0, fmt.Errorf("unread count fetch failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return 0, err
	}
	return out.NoLeidos, nil
}

func (b *Backend) MarkConversationRead(ctx context.Context, conversationID string) error {
	resp, err := b.request(ctx).Put("/chats/" + conversationID + "/marcar-leidos")
	if err != nil {
		return fmt.Errorf("mark read failed: %w", err)
	}
	return asError(resp)
}

func (b *Backend) ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	resp, err := b.request(ctx).SetResult(&out).Get("/chats/" + conversationID + "/mensajes")
	if err != nil {
		return nil, fmt.Errorf("message list fetch failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) SendMessage(ctx context.Context, conversationID, body string) error {
	resp, err := b.request(ctx).
		SetBody(map[string]string{"contenido": body}).
		Post("/chats/" + conversationID + "/mensajes")
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	return asError(resp)
}

func (b *Backend) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var out domain.Order
	resp, err := b.request(ctx).SetBody(draft).SetResult(&out).Post("/pedidos")
	if err != nil {
		return domain.Order{}, fmt.Errorf("order create failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (b *Backend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	resp, err := b.request(ctx).SetResult(&out).Get("/productos")
	if err != nil {
		return nil, fmt.Errorf("product list fetch failed: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, err
	}
	return out, nil
}

// withLineDefaults fills the snapshot fields the backend may omit.
func withLineDefaults(line domain.CartLine) domain.CartLine {
	if line.ImageRef == "" {
		line.ImageRef = placeholderImage
	}
	if line.SellerName == "" {
		line.SellerName = placeholderSeller
	}
	if line.AvailableStock == 0 {
		line.AvailableStock = domain.DefaultAvailableStock
	}
	return line
}

var _ contract.IBackend = (*Backend)(nil)
