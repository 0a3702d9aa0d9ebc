package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"agroconnect/domain"
	"agroconnect/errors"
)

// SetupTestDB initializes a temporary Badger instance for testing
func SetupTestDB(t *testing.T) (*badger.DB, func()) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	return db, func() {
		db.Close()
	}
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(db, slog.Default())

	user := domain.User{
		ID:          "u-42",
		Email:       "ana@example.com",
		DisplayName: "Ana",
		Role:        domain.RoleConsumer,
	}

	req.NoError(repo.SaveToken("tok-123"))
	req.NoError(repo.SaveUser(user))
	req.NoError(repo.SaveTheme(domain.ThemeDark))

	token, err := repo.LoadToken()
	req.NoError(err)
	req.Equal("tok-123", token)

	loaded, err := repo.LoadUser()
	req.NoError(err)
	req.Equal(user, loaded)

	theme, err := repo.LoadTheme()
	req.NoError(err)
	req.Equal(domain.ThemeDark, theme)
}

func TestSessionRepository_EmptyStore(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(db, slog.Default())

	_, err := repo.LoadToken()
	req.ErrorIs(err, errors.ErrNothingStored)
	_, err = repo.LoadUser()
	req.ErrorIs(err, errors.ErrNothingStored)
	_, err = repo.LoadTheme()
	req.ErrorIs(err, errors.ErrNothingStored)
}

func TestSessionRepository_ClearCredentials_KeepsTheme(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(db, slog.Default())
	req.NoError(repo.SaveToken("tok-123"))
	req.NoError(repo.SaveUser(domain.User{ID: "u-42"}))
	req.NoError(repo.SaveTheme(domain.ThemeDark))

	req.NoError(repo.ClearCredentials())

	_, err := repo.LoadToken()
	req.ErrorIs(err, errors.ErrNothingStored)
	_, err = repo.LoadUser()
	req.ErrorIs(err, errors.ErrNothingStored)

	// The theme is a display preference, not a credential.
	theme, err := repo.LoadTheme()
	req.NoError(err)
	req.Equal(domain.ThemeDark, theme)
}

func TestSessionRepository_ClearCredentials_EmptyIsNoError(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(db, slog.Default())
	req.NoError(repo.ClearCredentials())
}
