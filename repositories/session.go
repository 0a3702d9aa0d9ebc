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

// Device storage keys, kept identical to the mobile client's.
const (
	keyToken = "token"
	keyUser  = "user"
	keyTheme = "theme"
)

// SessionRepository persists the session pieces in BadgerDB so a
// restart restores the authenticated user without a new login.
type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, log: log}
}

func (r *SessionRepository) SaveToken(token string) error {
	return r.set(keyToken, []byte(token))
}

func (r *SessionRepository) LoadToken() (string, error) {
	raw, err := r.get(keyToken)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *SessionRepository) SaveUser(user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("user serialization failed: %w", err)
	}
	return r.set(keyUser, raw)
}

func (r *SessionRepository) LoadUser() (domain.User, error) {
	raw, err := r.get(keyUser)
	if err != nil {
		return domain.User{}, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, fmt.Errorf("user deserialization failed: %w", err)
	}
	return user, nil
}

func (r *SessionRepository) SaveTheme(mode domain.ThemeMode) error {
	return r.set(keyTheme, []byte(mode))
}

func (r *SessionRepository) LoadTheme() (domain.ThemeMode, error) {
	raw, err := r.get(keyTheme)
	if err != nil {
		return "", err
	}
	return domain.ThemeMode(raw), nil
}

// ClearCredentials erases token and user but keeps the theme, matching
// the 401 global side effect. Missing keys are not an error.
func (r *SessionRepository) ClearCredentials() error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyToken)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyUser))
	})
}

func (r *SessionRepository) set(key string, value []byte) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (r *SessionRepository) get(key string) ([]byte, error) {
	var out []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.ErrNothingStored
	}
	return out, err
}
