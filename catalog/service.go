package catalog

import (
	"context"
	"log/slog"

	"agroconnect/contract"
	"agroconnect/domain"
)

// Service keeps the local product cache in step with the backend and
// serves browsing/search from it. Like the cart, reads degrade to the
// local copy when the backend is unreachable.
type Service struct {
	log     *slog.Logger
	backend contract.IBackend
	repo    contract.ICatalogRepository
}

func NewService(backend contract.IBackend, repo contract.ICatalogRepository, log *slog.Logger) *Service {
	return &Service{log: log, backend: backend, repo: repo}
}

// Refresh replaces the cache with the remote listing. On failure the
// stale cache keeps serving; no error reaches the caller's screen.
func (s *Service) Refresh(ctx context.Context) []domain.Product {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		s.log.Warn("Product listing unavailable, serving cache", "err", err)
		cached, err := s.repo.All()
		if err != nil {
			s.log.Error("Product cache unreadable", "err", err)
			return nil
		}
		return cached
	}

	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		s.log.Error("Product cache update failed", "err", err)
	}
	return products
}

// Search queries the local full-text index; it works offline.
func (s *Service) Search(ctx context.Context, terms string) ([]domain.Product, error) {
	return s.repo.Search(ctx, terms)
}

// Get resolves one product from the cache.
func (s *Service) Get(id int64) (domain.Product, error) {
	return s.repo.Get(id)
}
