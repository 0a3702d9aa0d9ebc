package cart

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/domain/event"
	"agroconnect/errors"
)

// Engine is the local-first cart. Local state is authoritative for
// immediate feedback; the remote store is attempted opportunistically
// on every mutation and failures are absorbed as LocalOnly sync
// results, logged and counted but never surfaced to the caller. The
// one exception is the stock check, which rejects before any network
// attempt.
type Engine struct {
	mu      sync.Mutex
	log     *slog.Logger
	backend contract.IBackend
	repo    contract.ICartRepository
	alerter contract.Alerter
	sinks   []contract.EventSink

	lines []domain.CartLine
}

func NewEngine(backend contract.IBackend, repo contract.ICartRepository,
	alerter contract.Alerter, log *slog.Logger, sinks ...contract.EventSink) *Engine {
	return &Engine{
		backend: backend,
		repo:    repo,
		alerter: alerter,
		log:     log,
		sinks:   sinks,
	}
}

// Initialize loads the cart: a non-empty remote cart wins, otherwise
// the persisted local snapshot. Neither path raises an error; an empty
// cart is a valid terminal state.
func (e *Engine) Initialize(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	remote, err := e.backend.FetchCart(ctx)
	if err == nil && len(remote) > 0 {
		e.lines = remote
		e.persistLocked()
		e.publish(event.CartLoaded{Source: "remote", Lines: len(remote)})
		return
	}
	if err != nil {
		e.log.Warn("Remote cart unavailable, falling back to disk", "err", err)
	}

	local, err := e.repo.LoadLines()
	if err != nil {
		if !stderrors.Is(err, errors.ErrNothingStored) {
			e.log.Warn("Persisted cart unreadable, starting empty", "err", err)
		}
		e.lines = nil
		return
	}
	e.lines = local
	e.publish(event.CartLoaded{Source: "disk", Lines: len(local)})
}

// AddItem appends a new line for the product, or bumps the existing
// line's quantity when the product is already in the cart. Returns
// false only when the stock check rejected the operation.
func (e *Engine) AddItem(ctx context.Context, product domain.Product, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	e.mu.Lock()
	if existing := e.findByProductLocked(product.ID); existing != nil {
		lineID, newQuantity := existing.LineID, existing.Quantity+quantity
		e.mu.Unlock()
		return e.UpdateQuantity(ctx, lineID, newQuantity)
	}
	defer e.mu.Unlock()

	stock := product.AvailableStock
	if stock == 0 {
		stock = domain.DefaultAvailableStock
	}
	if quantity > stock {
		e.rejectLocked(product.ID, quantity, stock)
		return false
	}

	line := domain.CartLine{
		LineID:         localLineID(),
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPrice:      product.UnitPrice,
		Quantity:       quantity,
		ImageRef:       product.ImageRef,
		SellerName:     product.SellerName,
		AvailableStock: stock,
	}

	sync := event.SyncedResult()
	serverID, err := e.backend.CreateCartLine(ctx, line)
	switch {
	case err != nil:
		sync = event.LocalOnlyResult(err)
		e.log.Warn("Cart line kept local only", "product", product.ID, "err", err)
	case serverID != "":
		line.LineID = serverID
	}

	e.lines = append(e.lines, line)
	e.persistLocked()
	e.publish(event.CartLineAdded{Line: line, Sync: sync})
	return true
}

// UpdateQuantity sets a line's quantity. A target below 1 removes the
// line instead. The remote update is attempted first and its failure
// swallowed; the local quantity is applied unconditionally.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, quantity int) bool {
	if quantity < 1 {
		return e.RemoveItem(ctx, lineID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	line := e.findLocked(lineID)
	if line == nil {
		e.log.Warn("Quantity update for unknown line", "line", lineID)
		return false
	}
	if quantity > line.Quantity && quantity > line.AvailableStock {
		e.rejectLocked(line.ProductID, quantity, line.AvailableStock)
		return false
	}

	sync := event.SyncedResult()
	if err := e.backend.UpdateCartLine(ctx, lineID, quantity); err != nil {
		sync = event.LocalOnlyResult(err)
		e.log.Warn("Quantity change kept local only", "line", lineID, "err", err)
	}

	line.Quantity = quantity
	e.persistLocked()
	e.publish(event.CartQuantityChanged{LineID: lineID, Quantity: quantity, Sync: sync})
	return true
}

// RemoveItem deletes a line. The remote delete is attempted and its
// failure swallowed; the local line is removed unconditionally.
func (e *Engine) RemoveItem(ctx context.Context, lineID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.findLocked(lineID) == nil {
		e.log.Warn("Removal of unknown line", "line", lineID)
		return false
	}

	sync := event.SyncedResult()
	if err := e.backend.DeleteCartLine(ctx, lineID); err != nil {
		sync = event.LocalOnlyResult(err)
		e.log.Warn("Line removal kept local only", "line", lineID, "err", err)
	}

	kept := e.lines[:0]
	for _, line := range e.lines {
		if line.LineID != lineID {
			kept = append(kept, line)
		}
	}
	e.lines = kept
	e.persistLocked()
	e.publish(event.CartLineRemoved{LineID: lineID, Sync: sync})
	return true
}

// Clear empties the cart and erases the persisted snapshot, e.g. after
// a successful checkout.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sync := event.SyncedResult()
	if err := e.backend.EmptyCart(ctx); err != nil {
		sync = event.LocalOnlyResult(err)
		e.log.Warn("Cart clear kept local only", "err", err)
	}

	e.lines = nil
	if err := e.repo.EraseLines(); err != nil {
		e.log.Error("Cart snapshot erase failed", "err", err)
	}
	e.publish(event.CartCleared{Sync: sync})
}

// Lines returns a copy of the line list in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.CartLine(nil), e.lines...)
}

// Totals recomputes the derived values from the current lines.
func (e *Engine) Totals() domain.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.ComputeTotals(e.lines)
}

func (e *Engine) findLocked(lineID string) *domain.CartLine {
	for i := range e.lines {
		if e.lines[i].LineID == lineID {
			return &e.lines[i]
		}
	}
	return nil
}

func (e *Engine) findByProductLocked(productID int64) *domain.CartLine {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return &e.lines[i]
		}
	}
	return nil
}

func (e *Engine) rejectLocked(productID int64, requested, available int) {
	e.alerter.Alert("Stock insuficiente",
		fmt.Sprintf("Solo quedan %d unidades disponibles", available))
	e.publish(event.CartMutationRejected{
		ProductID: productID,
		Requested: requested,
		Available: available,
	})
}

// persistLocked re-serializes the full line list after every mutation.
// A write failure loses at most the latest mutation on restart; the
// in-memory state stays correct for the session.
func (e *Engine) persistLocked() {
	if err := e.repo.SaveLines(append([]domain.CartLine(nil), e.lines...)); err != nil {
		e.log.Error("Cart persistence failed", "err", err)
	}
}

func (e *Engine) publish(evt event.DomainEvent) {
	for _, sink := range e.sinks {
		sink.Consume(evt)
	}
}

// localLineID builds the temporary identifier for a line created
// before (or without) a successful remote create.
func localLineID() string {
	return fmt.Sprintf("local-%d", time.Now().UnixNano())
}
