// Package seed imports catalog entries from CSV.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medorder/internal/catalog"
	"medorder/internal/domain"
	"medorder/internal/repository"
)

// Row is one CSV line. Headers match the csv tags.
type Row struct {
	Name                 string `csv:"name"`
	LocalizedName        string `csv:"localized_name"`
	GenericName          string `csv:"generic_name"`
	Company              string `csv:"company"`
	Category             string `csv:"category"`
	UnitPrice            string `csv:"unit_price"`
	StockQuantity        int64  `csv:"stock_quantity"`
	ReorderLevel         int64  `csv:"reorder_level"`
	DefaultPackaging     string `csv:"default_packaging"`
	UnitsPerPackage      int64  `csv:"units_per_package"`
	PrescriptionRequired bool   `csv:"prescription_required"`
}

// Medicine converts r into a catalog entry.
func (r Row) Medicine() (domain.Medicine, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.Medicine{}, fmt.Errorf("name is empty")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.UnitPrice))
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("%s: unit_price %q: %w", name, r.UnitPrice, err)
	}
	if price.IsNegative() {
		return domain.Medicine{}, fmt.Errorf("%s: unit_price is negative", name)
	}
	if r.StockQuantity < 0 {
		return domain.Medicine{}, fmt.Errorf("%s: stock_quantity is negative", name)
	}
	pkg := domain.Packaging(strings.ToLower(strings.TrimSpace(r.DefaultPackaging)))
	if pkg == "" {
		pkg = domain.PackagingStrip
	}
	if !pkg.Valid() {
		return domain.Medicine{}, fmt.Errorf("%s: unknown packaging %q", name, r.DefaultPackaging)
	}
	m := domain.Medicine{
		Name:                 name,
		LocalizedName:        strings.TrimSpace(r.LocalizedName),
		GenericName:          strings.TrimSpace(r.GenericName),
		Company:              strings.TrimSpace(r.Company),
		Category:             strings.TrimSpace(r.Category),
		UnitPrice:            domain.Money(price),
		StockQuantity:        r.StockQuantity,
		ReorderLevel:         r.ReorderLevel,
		DefaultPackaging:     pkg,
		UnitsPerPackage:      r.UnitsPerPackage,
		PrescriptionRequired: r.PrescriptionRequired,
	}
	if m.ReorderLevel <= 0 {
		m.ReorderLevel = 10
	}
	if m.UnitsPerPackage <= 0 {
		m.UnitsPerPackage = 10
	}
	return m, nil
}

// Parse reads every row of a catalog CSV.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse catalog csv: %w", err)
	}
	return rows, nil
}

// Import creates the medicines listed in r. Rows whose name already exists
// in the catalog (case-insensitively) are skipped, so importing the same
// file twice is harmless. Invalid rows are logged and skipped.
func Import(ctx context.Context, repo repository.MedicineRepository, r io.Reader, log *zap.Logger) (created int, err error) {
	rows, err := Parse(r)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		m, err := row.Medicine()
		if err != nil {
			log.Warn("skipping catalog row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		exists, err := nameExists(ctx, repo, m.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := repo.Create(ctx, &m); err != nil {
			return created, fmt.Errorf("create %s: %w", m.Name, err)
		}
		created++
	}
	log.Info("catalog imported", zap.Int("rows", len(rows)), zap.Int("created", created))
	return created, nil
}

// ImportFile is Import over a file path.
func ImportFile(ctx context.Context, repo repository.MedicineRepository, path string, log *zap.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Import(ctx, repo, f, log)
}

func nameExists(ctx context.Context, repo repository.MedicineRepository, name string) (bool, error) {
	matches, err := repo.Search(ctx, name, 0)
	if err != nil {
		return false, err
	}
	want := catalog.Fold(name)
	for _, m := range matches {
		if catalog.Fold(m.Name) == want {
			return true, nil
		}
	}
	return false, nil
}
