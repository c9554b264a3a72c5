package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"medorder/internal/domain"
)

func newMedicine(name string, price string, stock int64) domain.Medicine {
	return domain.Medicine{
		Name:             name,
		UnitPrice:        decimal.RequireFromString(price),
		StockQuantity:    stock,
		ReorderLevel:     10,
		DefaultPackaging: domain.PackagingStrip,
		UnitsPerPackage:  10,
	}
}

func TestMemoryStore_MedicineCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := newMedicine("Dolo 650", "30.50", 5)
	if err := store.Create(ctx, &m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("no id")
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil || got.ID != m.ID {
		t.Fatalf("get: %v", err)
	}

	m.UnitPrice = decimal.RequireFromString("32")
	if err := store.Update(ctx, &m); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetByID(ctx, m.ID)
	if !got.UnitPrice.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("price not updated: %s", got.UnitPrice)
	}

	if err := store.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_AdjustStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newMedicine("Crocin", "20", 5)
	if err := store.Create(ctx, &m); err != nil {
		t.Fatal(err)
	}

	if err := store.AdjustStock(ctx, m.ID, -3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := store.AdjustStock(ctx, m.ID, -3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	got, _ := store.GetByID(ctx, m.ID)
	if got.StockQuantity != 2 {
		t.Fatalf("stock expected 2, got %d", got.StockQuantity)
	}
	if err := store.AdjustStock(ctx, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryTx_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	store := repos.Medicines

	m := newMedicine("Azithral 500", "120", 5)
	if err := store.Create(ctx, &m); err != nil {
		t.Fatal(err)
	}

	// commit
	err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.AdjustStock(ctx, m.ID, -3); err != nil {
			return err
		}
		c := domain.Customer{Name: "Ramesh", Phone: "+919876543210"}
		return repos.Customers.Create(ctx, &c)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	got, _ := store.GetByID(ctx, m.ID)
	if got.StockQuantity != 2 {
		t.Fatalf("stock expected 2, got %d", got.StockQuantity)
	}

	// rollback restores stock and forgets the new customer
	boom := errors.New("boom")
	err = repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.AdjustStock(ctx, m.ID, -2); err != nil {
			return err
		}
		c := domain.Customer{Name: "Sita", Phone: "+919999999999"}
		if err := repos.Customers.Create(ctx, &c); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ = store.GetByID(ctx, m.ID)
	if got.StockQuantity != 2 {
		t.Fatalf("rollback failed: stock %d", got.StockQuantity)
	}
	if _, err := repos.Customers.GetByPhone(ctx, "+919999999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("customer survived rollback: %v", err)
	}
}

func TestMemoryTx_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	m := newMedicine("Pan 40", "90", 4)
	if err := repos.Medicines.Create(ctx, &m); err != nil {
		t.Fatal(err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("panic was swallowed")
			}
		}()
		_ = repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			_ = repos.Medicines.AdjustStock(ctx, m.ID, -4)
			panic("mid-transaction")
		})
	}()

	got, _ := repos.Medicines.GetByID(ctx, m.ID)
	if got.StockQuantity != 4 {
		t.Fatalf("stock expected 4, got %d", got.StockQuantity)
	}
}

func TestMemoryTx_CancelledContextRollsBack(t *testing.T) {
	repos := NewMemoryRepositories()
	m := newMedicine("Shelcal", "110", 6)
	if err := repos.Medicines.Create(context.Background(), &m); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	err := repos.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repos.Medicines.AdjustStock(txCtx, m.ID, -6); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	got, _ := repos.Medicines.GetByID(context.Background(), m.ID)
	if got.StockQuantity != 6 {
		t.Fatalf("stock expected 6, got %d", got.StockQuantity)
	}
}

func TestMemoryOrders_Assemble(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	m := newMedicine("Dolo 650", "30", 10)
	_ = repos.Medicines.Create(ctx, &m)
	c := domain.Customer{Name: "Ramesh", Phone: "+919876543210"}
	_ = repos.Customers.Create(ctx, &c)

	key := "voice-1"
	o := domain.Order{OrderNumber: "ORD-1", CustomerID: c.ID, Status: domain.OrderStatusPending, IdempotencyKey: &key}
	if err := repos.Orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}
	dup := domain.Order{OrderNumber: "ORD-2", CustomerID: c.ID, IdempotencyKey: &key}
	if err := repos.Orders.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate idempotency key, got %v", err)
	}

	l := domain.OrderLine{OrderID: o.ID, MedicineID: m.ID, MedicineName: m.Name, Quantity: 2,
		Packaging: domain.PackagingStrip, UnitPrice: m.UnitPrice, LineTotal: domain.LineTotal(2, m.UnitPrice)}
	if err := repos.Orders.AddLine(ctx, &l); err != nil {
		t.Fatal(err)
	}
	inv := domain.Invoice{InvoiceNumber: "INV-1", OrderID: o.ID, Subtotal: l.LineTotal, TotalAmount: l.LineTotal}
	if err := repos.Invoices.Create(ctx, &inv); err != nil {
		t.Fatal(err)
	}

	got, err := repos.Orders.GetByIdempotencyKey(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Customer == nil || got.Customer.ID != c.ID {
		t.Fatalf("customer not attached")
	}
	if len(got.Lines) != 1 || got.Lines[0].Quantity != 2 {
		t.Fatalf("lines not attached: %+v", got.Lines)
	}
	if got.Invoice == nil || got.Invoice.InvoiceNumber != "INV-1" {
		t.Fatalf("invoice not attached")
	}

	// a medicine with order lines cannot be deleted
	if err := repos.Medicines.Delete(ctx, m.ID); !errors.Is(err, ErrReferenced) {
		t.Fatalf("expected referenced, got %v", err)
	}
}

func TestMemoryCustomers_UniquePhone(t *testing.T) {
	ctx := context.Background()
	customers := NewMemoryCustomers(NewMemoryStore())
	a := domain.Customer{Name: "A", Phone: "+911111111111"}
	if err := customers.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	b := domain.Customer{Name: "B", Phone: "+911111111111"}
	if err := customers.Create(ctx, &b); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestList_Filtering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(n string, price string, stock int64) {
		m := newMedicine(n, price, stock)
		if err := store.Create(ctx, &m); err != nil {
			t.Fatal(err)
		}
	}
	add("Aspirin", "100", 50)
	add("Paracetamol", "50", 3)
	add("Ibuprofen", "150", 40)
	add("Insulin Glargine", "300", 40)

	list, _ := store.List(ctx, MedicineFilter{NameSubstring: "IN"})
	if len(list) != 2 || list[0].Name != "Aspirin" || list[1].Name != "Insulin Glargine" {
		t.Fatalf("name filter: %+v", list)
	}

	min := decimal.NewFromInt(100)
	list, _ = store.List(ctx, MedicineFilter{MinPrice: &min})
	for _, m := range list {
		if m.UnitPrice.LessThan(min) {
			t.Fatalf("min filter fail")
		}
	}

	max := decimal.NewFromInt(100)
	list, _ = store.List(ctx, MedicineFilter{MaxPrice: &max})
	for _, m := range list {
		if m.UnitPrice.GreaterThan(max) {
			t.Fatalf("max filter fail")
		}
	}

	list, _ = store.List(ctx, MedicineFilter{LowStockOnly: true})
	if len(list) != 1 || list[0].Name != "Paracetamol" {
		t.Fatalf("low stock filter: %+v", list)
	}

	list, _ = store.List(ctx, MedicineFilter{Offset: 1, Limit: 1})
	if len(list) != 1 || list[0].Name != "Paracetamol" {
		t.Fatalf("paging: %+v", list)
	}
}

func TestSearch_Ranked(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, n := range []string{"Dolo 650", "Dolo", "Paradolo"} {
		m := newMedicine(n, "10", 10)
		_ = store.Create(ctx, &m)
	}
	got, err := store.Search(ctx, "dolo", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Name != "Dolo" || got[1].Name != "Dolo 650" || got[2].Name != "Paradolo" {
		t.Fatalf("unexpected order: %+v", got)
	}
	got, _ = store.Search(ctx, "dolo", 1)
	if len(got) != 1 {
		t.Fatalf("limit ignored")
	}
}

func TestMemoryCustomers_AddTotals(t *testing.T) {
	ctx := context.Background()
	customers := NewMemoryCustomers(NewMemoryStore())
	c := domain.Customer{Name: "A", Phone: "+911111111111", TotalAmountSpent: decimal.Zero}
	if err := customers.Create(ctx, &c); err != nil {
		t.Fatal(err)
	}

	if err := customers.AddTotals(ctx, c.ID, 1, decimal.RequireFromString("40")); err != nil {
		t.Fatal(err)
	}
	if err := customers.AddTotals(ctx, c.ID, 1, decimal.RequireFromString("2.50")); err != nil {
		t.Fatal(err)
	}
	got, err := customers.LockByPhone(ctx, "+911111111111")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalOrders != 2 || !got.TotalAmountSpent.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("unexpected counters %d %s", got.TotalOrders, got.TotalAmountSpent)
	}

	// counters never go below zero
	if err := customers.AddTotals(ctx, c.ID, -5, decimal.RequireFromString("-100")); err != nil {
		t.Fatal(err)
	}
	got, _ = customers.GetByID(ctx, c.ID)
	if got.TotalOrders != 0 || !got.TotalAmountSpent.IsZero() {
		t.Fatalf("counters below zero: %d %s", got.TotalOrders, got.TotalAmountSpent)
	}

	if err := customers.AddTotals(ctx, 99, 1, decimal.Zero); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := customers.LockByPhone(ctx, "+919999999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryOrders_LockByID(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	c := domain.Customer{Name: "A", Phone: "+911111111111"}
	if err := repos.Customers.Create(ctx, &c); err != nil {
		t.Fatal(err)
	}
	o := domain.Order{OrderNumber: "ORD-1", CustomerID: c.ID, Status: domain.OrderStatusConfirmed}
	if err := repos.Orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}
	got, err := repos.Orders.LockByID(ctx, o.ID)
	if err != nil || got.OrderNumber != "ORD-1" {
		t.Fatalf("lock: %v", err)
	}
	if _, err := repos.Orders.LockByID(ctx, o.ID+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
