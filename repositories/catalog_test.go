package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agroconnect/domain"
	"agroconnect/errors"
)

func setupCatalog(t *testing.T) *CatalogRepository {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { blugeWriter.Close() })

	return NewCatalogRepository(db, blugeWriter, slog.Default(), 50)
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID:             1,
			Name:           "Tomate raf",
			Description:    "Tomate de temporada cultivado sin invernadero",
			UnitPrice:      decimal.RequireFromString("2.50"),
			SellerName:     "Huerta Sur",
			AvailableStock: 10,
			Category:       "verdura",
		},
		{
			ID:             2,
			Name:           "Queso curado",
			Description:    "Queso de oveja curado seis meses",
			UnitPrice:      decimal.RequireFromString("6.00"),
			SellerName:     "Granja Norte",
			AvailableStock: 5,
			Category:       "lácteos",
		},
	}
}

func TestCatalogRepository_ReplaceAllAndGet(t *testing.T) {
	req := require.New(t)
	repo := setupCatalog(t)
	ctx := context.Background()

	req.NoError(repo.ReplaceAll(ctx, sampleProducts()))

	product, err := repo.Get(1)
	req.NoError(err)
	req.Equal("Tomate raf", product.Name)
	req.True(product.UnitPrice.Equal(decimal.RequireFromString("2.50")))

	all, err := repo.All()
	req.NoError(err)
	req.Len(all, 2)

	_, err = repo.Get(99)
	req.ErrorIs(err, errors.ErrNothingStored)
}

func TestCatalogRepository_ReplaceAllIsWholesale(t *testing.T) {
	req := require.New(t)
	repo := setupCatalog(t)
	ctx := context.Background()

	req.NoError(repo.ReplaceAll(ctx, sampleProducts()))

	// The second listing no longer contains product 2.
	req.NoError(repo.ReplaceAll(ctx, sampleProducts()[:1]))

	all, err := repo.All()
	req.NoError(err)
	req.Len(all, 1)
	req.Equal(int64(1), all[0].ID)

	_, err = repo.Get(2)
	req.ErrorIs(err, errors.ErrNothingStored)
}

func TestCatalogRepository_Search(t *testing.T) {
	req := require.New(t)
	repo := setupCatalog(t)
	ctx := context.Background()

	req.NoError(repo.ReplaceAll(ctx, sampleProducts()))

	t.Run("should match on name", func(t *testing.T) {
		hits, err := repo.Search(ctx, "tomate")
		require.NoError(t, err)
		require.Len(t, hits, 1)
		require.Equal(t, int64(1), hits[0].ID)
	})

	t.Run("should match on description", func(t *testing.T) {
		hits, err := repo.Search(ctx, "oveja")
		require.NoError(t, err)
		require.Len(t, hits, 1)
		require.Equal(t, int64(2), hits[0].ID)
	})

	t.Run("should return everything on a blank query", func(t *testing.T) {
		hits, err := repo.Search(ctx, "   ")
		require.NoError(t, err)
		require.Len(t, hits, 2)
	})

	t.Run("should return nothing on an unmatched term", func(t *testing.T) {
		hits, err := repo.Search(ctx, "zzz")
		require.NoError(t, err)
		require.Empty(t, hits)
	})
}
