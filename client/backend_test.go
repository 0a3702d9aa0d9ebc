package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agroconnect/domain"
	"agroconnect/errors"
)

func setupBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackend(server.URL, 2*time.Second, slog.Default())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBackend_AttachesBearerToken(t *testing.T) {
	req := require.New(t)

	var seen string
	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.CartLine{})
	})
	backend.BindSession(func() string { return "tok-123" }, func() {})

	_, err := backend.FetchCart(context.Background())
	req.NoError(err)
	req.Equal("Bearer tok-123", seen)
}

func TestBackend_NoTokenNoHeader(t *testing.T) {
	req := require.New(t)

	var seen string
	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.Product{})
	})
	backend.BindSession(func() string { return "" }, func() {})

	_, err := backend.ListProducts(context.Background())
	req.NoError(err)
	req.Empty(seen)
}

func TestBackend_UnauthorizedFiresGlobalHook(t *testing.T) {
	req := require.New(t)

	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"mensaje": "sesión caducada"})
	})

	fired := 0
	backend.BindSession(func() string { return "stale" }, func() { fired++ })

	_, err := backend.UnreadCount(context.Background())
	req.ErrorIs(err, errors.ErrNotAuthenticated)
	req.Equal(1, fired)

	// Any endpoint hitting a 401 fires the same hook.
	err = backend.SendMessage(context.Background(), "conv-1", "hola")
	req.ErrorIs(err, errors.ErrNotAuthenticated)
	req.Equal(2, fired)
}

func TestBackend_CartLineDefaults(t *testing.T) {
	req := require.New(t)

	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"line_id": "srv-1", "producto_id": 1, "nombre": "Tomate",
				"precio": "2.50", "cantidad": 2},
		})
	})
	backend.BindSession(func() string { return "tok" }, func() {})

	lines, err := backend.FetchCart(context.Background())
	req.NoError(err)
	req.Len(lines, 1)
	req.Equal("🧺", lines[0].ImageRef)
	req.Equal("Productor local", lines[0].SellerName)
	req.Equal(domain.DefaultAvailableStock, lines[0].AvailableStock)
}

func TestBackend_ServerMessageExtraction(t *testing.T) {
	req := require.New(t)

	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"mensaje": "stock agotado"})
	})
	backend.BindSession(func() string { return "tok" }, func() {})

	_, err := backend.CreateCartLine(context.Background(), domain.CartLine{ProductID: 1})
	req.Error(err)
	req.Equal("stock agotado", ServerMessage(err, "fallback"))
}

func TestBackend_ServerMessageFallback(t *testing.T) {
	req := require.New(t)

	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	backend.BindSession(func() string { return "tok" }, func() {})

	err := backend.EmptyCart(context.Background())
	req.Error(err)
	req.Equal("fallback", ServerMessage(err, "fallback"))
}

func TestBackend_LoginRoundTrip(t *testing.T) {
	req := require.New(t)

	backend := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ana@example.com", body["email"])

		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-123",
			"usuario": map[string]string{
				"id": "u-1", "email": "ana@example.com",
				"nombre": "Ana", "rol": "consumidor",
			},
		})
	})
	backend.BindSession(func() string { return "" }, func() {})

	user, token, err := backend.Login(context.Background(), "ana@example.com", "secret")
	req.NoError(err)
	req.Equal("tok-123", token)
	req.Equal(domain.RoleConsumer, user.Role)
}
