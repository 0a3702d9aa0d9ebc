package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"agroconnect/domain"
	"agroconnect/errors"
)

// keyCart holds the whole line list as one snapshot, mirroring the
// mobile client's single device-storage entry.
const keyCart = "carrito"

// CartRepository persists the cart snapshot after every mutation so an
// offline session survives a restart.
type CartRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewCartRepository(db *badger.DB, log *slog.Logger) *CartRepository {
	return &CartRepository{db: db, log: log}
}

func (r *CartRepository) SaveLines(lines []domain.CartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart serialization failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyCart), raw)
	})
}

func (r *CartRepository) LoadLines() ([]domain.CartLine, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCart))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.ErrNothingStored
	}
	if err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("cart deserialization failed: %w", err)
	}
	return lines, nil
}

func (r *CartRepository) EraseLines() error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyCart))
	})
}
