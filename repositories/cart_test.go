package repositories

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agroconnect/domain"
	"agroconnect/errors"
)

func TestCartRepository_SnapshotRoundTrip(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(db, slog.Default())
	lines := []domain.CartLine{
		{
			LineID:         "srv-1",
			ProductID:      1,
			Name:           "Tomate",
			UnitPrice:      decimal.RequireFromString("2.50"),
			Quantity:       2,
			ImageRef:       "🍅",
			SellerName:     "Huerta Sur",
			AvailableStock: 10,
		},
		{
			LineID:    "local-99",
			ProductID: 2,
			Name:      "Queso",
			UnitPrice: decimal.RequireFromString("6.00"),
			Quantity:  1,
		},
	}

	req.NoError(repo.SaveLines(lines))

	loaded, err := repo.LoadLines()
	req.NoError(err)
	req.Len(loaded, 2)
	// Insertion order and decimal values must survive the round trip.
	req.Equal("srv-1", loaded[0].LineID)
	req.Equal("local-99", loaded[1].LineID)
	req.True(loaded[0].UnitPrice.Equal(lines[0].UnitPrice))
}

func TestCartRepository_OverwriteKeepsLatest(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(db, slog.Default())
	req.NoError(repo.SaveLines([]domain.CartLine{{LineID: "a", Quantity: 1}}))
	req.NoError(repo.SaveLines([]domain.CartLine{{LineID: "b", Quantity: 3}}))

	loaded, err := repo.LoadLines()
	req.NoError(err)
	req.Len(loaded, 1)
	req.Equal("b", loaded[0].LineID)
}

func TestCartRepository_EraseAndEmpty(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(db, slog.Default())

	_, err := repo.LoadLines()
	req.ErrorIs(err, errors.ErrNothingStored)

	req.NoError(repo.SaveLines([]domain.CartLine{{LineID: "a", Quantity: 1}}))
	req.NoError(repo.EraseLines())

	_, err = repo.LoadLines()
	req.ErrorIs(err, errors.ErrNothingStored)

	// Erasing an already empty snapshot is fine.
	req.NoError(repo.EraseLines())
}
