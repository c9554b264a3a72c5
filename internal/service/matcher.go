package service

import (
	"context"
	"strings"

	"medorder/internal/domain"
	"medorder/internal/repository"
)

// DefaultSearchLimit caps free-text catalog searches.
const DefaultSearchLimit = 10

// CatalogMatcher resolves free text to catalog entries.
type CatalogMatcher struct {
	medicines repository.MedicineRepository
}

func NewCatalogMatcher(medicines repository.MedicineRepository) *CatalogMatcher {
	return &CatalogMatcher{medicines: medicines}
}

// Match returns medicines whose name, localized name or generic name
// contains query, best match first. A blank query matches nothing.
func (m *CatalogMatcher) Match(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Medicine{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return m.medicines.Search(ctx, query, limit)
}

// Best returns the top match, or nil when nothing matches.
func (m *CatalogMatcher) Best(ctx context.Context, query string) (*domain.Medicine, error) {
	found, err := m.Match(ctx, query, 1)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}
