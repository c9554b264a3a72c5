package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"medorder/internal/domain"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInsufficientStock is returned when a decrement would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrReferenced is returned when deleting a row other rows still point to.
	ErrReferenced = errors.New("referenced by other records")
)

// MedicineFilter narrows a catalog listing.
type MedicineFilter struct {
	NameSubstring string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	LowStockOnly  bool
	Offset        int
	Limit         int
}

// MedicineRepository is the catalog store.
type MedicineRepository interface {
	Create(ctx context.Context, m *domain.Medicine) error
	GetByID(ctx context.Context, id int64) (*domain.Medicine, error)
	// LockByID loads a medicine and holds its row against concurrent stock
	// changes until the surrounding transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.Medicine, error)
	Update(ctx context.Context, m *domain.Medicine) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error)
	// Search returns medicines whose name, localized name or generic name
	// contains query, ordered by catalog.Rank.
	Search(ctx context.Context, query string, limit int) ([]domain.Medicine, error)
	// AdjustStock adds delta to the stock quantity. A negative delta that
	// exceeds the available stock fails with ErrInsufficientStock and
	// changes nothing.
	AdjustStock(ctx context.Context, id int64, delta int64) error
}

// CustomerRepository stores customers keyed by phone.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	// LockByPhone is GetByPhone holding the row until the surrounding
	// transaction ends.
	LockByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	// AddTotals shifts the order count and lifetime spend by the given
	// deltas in place. Neither counter goes below zero.
	AddTotals(ctx context.Context, id int64, orders int64, amount decimal.Decimal) error
	List(ctx context.Context, offset, limit int) ([]domain.Customer, error)
}

// OrderRepository stores orders and their lines.
type OrderRepository interface {
	// Create inserts the order header only; lines are added with AddLine.
	Create(ctx context.Context, o *domain.Order) error
	Update(ctx context.Context, o *domain.Order) error
	AddLine(ctx context.Context, l *domain.OrderLine) error
	// GetByID returns the order with its customer, lines and invoice.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// LockByID is GetByID holding the order row until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]domain.Order, error)
}

// InvoiceRepository stores invoices, one per order.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	Update(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	GetByOrderID(ctx context.Context, orderID int64) (*domain.Invoice, error)
}

// TxManager runs fn inside one transaction. Repositories called with the
// context passed to fn take part in it; any error returned by fn, a panic,
// or a cancelled context rolls every write back. Nested calls join the
// outer transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Medicines MedicineRepository
	Customers CustomerRepository
	Orders    OrderRepository
	Invoices  InvoiceRepository
	Tx        TxManager
}

func page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
