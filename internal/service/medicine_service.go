package service

import (
	"context"
	"strings"

	"medorder/internal/domain"
	"medorder/internal/repository"
)

// MedicineService инкапсулирует ведение каталога лекарств
type MedicineService struct {
	repo    repository.MedicineRepository
	matcher *CatalogMatcher
}

func NewMedicineService(repo repository.MedicineRepository) *MedicineService {
	return &MedicineService{repo: repo, matcher: NewCatalogMatcher(repo)}
}

func validMedicine(m domain.Medicine) error {
	if strings.TrimSpace(m.Name) == "" {
		return validationf("name is required")
	}
	if m.UnitPrice.IsNegative() {
		return validationf("unit_price must not be negative")
	}
	if m.StockQuantity < 0 || m.ReorderLevel < 0 {
		return validationf("stock_quantity and reorder_level must not be negative")
	}
	if !m.DefaultPackaging.Valid() {
		return validationf("unknown packaging %q", m.DefaultPackaging)
	}
	return nil
}

func prepare(m *domain.Medicine) {
	m.Name = strings.TrimSpace(m.Name)
	m.UnitPrice = domain.Money(m.UnitPrice)
	if m.DefaultPackaging == "" {
		m.DefaultPackaging = domain.PackagingStrip
	}
	if m.UnitsPerPackage <= 0 {
		m.UnitsPerPackage = 10
	}
}

func (s *MedicineService) Create(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	prepare(&m)
	if err := validMedicine(m); err != nil {
		return nil, err
	}
	cp := m
	cp.ID = 0
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *MedicineService) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	if id <= 0 {
		return nil, validationf("invalid id")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *MedicineService) Update(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	if m.ID <= 0 {
		return nil, validationf("invalid id")
	}
	prepare(&m)
	if err := validMedicine(m); err != nil {
		return nil, err
	}
	cp := m
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete fails with repository.ErrReferenced while order lines point at the
// medicine.
func (s *MedicineService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationf("invalid id")
	}
	return s.repo.Delete(ctx, id)
}

func (s *MedicineService) List(ctx context.Context, f repository.MedicineFilter) ([]domain.Medicine, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, validationf("min_price is greater than max_price")
	}
	return s.repo.List(ctx, f)
}

// Search ищет лекарство по названию на любом языке
func (s *MedicineService) Search(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationf("query is required")
	}
	return s.matcher.Match(ctx, query, limit)
}

// LowStock lists medicines at or below their reorder level.
func (s *MedicineService) LowStock(ctx context.Context, offset, limit int) ([]domain.Medicine, error) {
	return s.repo.List(ctx, repository.MedicineFilter{LowStockOnly: true, Offset: offset, Limit: limit})
}
