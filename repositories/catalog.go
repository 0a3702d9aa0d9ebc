package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"

	"agroconnect/domain"
	"agroconnect/errors"
)

const productPrefix = "producto:"

// CatalogRepository caches the remote product listing. BadgerDB holds
// the full records under "producto:{id}" keys; a Bluge index over name
// and description keeps browsing and search usable offline.
type CatalogRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
	limit int
}

func NewCatalogRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger, limit int) *CatalogRepository {
	return &CatalogRepository{db: db, index: index, log: log, limit: limit}
}

// ReplaceAll swaps the whole cache for the given listing, the same
// wholesale-replacement contract the pollers use.
func (r *CatalogRepository) ReplaceAll(_ context.Context, products []domain.Product) error {
	previous, err := r.ids()
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for _, id := range previous {
			if err := txn.Delete([]byte(productKey(id))); err != nil {
				return err
			}
		}
		for _, p := range products {
			raw, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("product serialization failed: %w", err)
			}
			if err := txn.Set([]byte(productKey(p.ID)), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	batch := bluge.NewBatch()
	for _, id := range previous {
		batch.Delete(bluge.Identifier(strconv.FormatInt(id, 10)))
	}
	for _, p := range products {
		doc := bluge.NewDocument(strconv.FormatInt(p.ID, 10)).
			AddField(bluge.NewTextField("nombre", p.Name)).
			AddField(bluge.NewTextField("descripcion", p.Description)).
			AddField(bluge.NewTextField("categoria", p.Category))
		batch.Update(doc.ID(), doc)
	}
	return r.index.Batch(batch)
}

func (r *CatalogRepository) Get(id int64) (domain.Product, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(productKey(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Product{}, errors.ErrNothingStored
	}
	if err != nil {
		return domain.Product{}, err
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return domain.Product{}, fmt.Errorf("product deserialization failed: %w", err)
	}
	return product, nil
}

func (r *CatalogRepository) All() ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(productPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p domain.Product
				if err := json.Unmarshal(val, &p); err != nil {
					return fmt.Errorf("product deserialization failed: %w", err)
				}
				products = append(products, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return products, err
}

// Search runs a full-text match over name, description and category
// and resolves the hits against the Badger cache.
func (r *CatalogRepository) Search(ctx context.Context, terms string) ([]domain.Product, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return r.All()
	}

	reader, err := r.index.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader failed: %w", err)
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(terms).SetField("nombre")).
		AddShould(bluge.NewMatchQuery(terms).SetField("descripcion")).
		AddShould(bluge.NewMatchQuery(terms).SetField("categoria"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(r.limit, query))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var products []domain.Product
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("search iteration failed: %w", err)
		}
		if match == nil {
			break
		}

		var hitID string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				hitID = string(value)
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(hitID, 10, 64)
		if err != nil {
			r.log.Warn("Skipping non-numeric index hit", "id", hitID)
			continue
		}
		product, err := r.Get(id)
		if stderrors.Is(err, errors.ErrNothingStored) {
			// Index and cache can drift between a batch and a crash.
			r.log.Debug("Index hit missing from cache", "id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *CatalogRepository) ids() ([]int64, error) {
	var ids []int64
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(productPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			id, err := strconv.ParseInt(strings.TrimPrefix(key, productPrefix), 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productPrefix, id)
}
