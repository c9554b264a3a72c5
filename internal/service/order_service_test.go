package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"medorder/internal/document"
	"medorder/internal/domain"
	"medorder/internal/repository"
)

func TestCreateOrderAndCancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	p1 := h.addMedicine(t, "A", "", "10", 5)
	p2 := h.addMedicine(t, "B", "", "20", 2)

	res, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName:  "John",
		CustomerPhone: "+911234567890",
		Items:         []ManualItem{{MedicineID: p1.ID, Quantity: 3}, {MedicineID: p2.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// stocks decreased
	if s1, s2 := h.stock(t, p1.ID), h.stock(t, p2.ID); s1 != 2 || s2 != 0 {
		t.Fatalf("stock not decreased: %v %v", s1, s2)
	}

	// cancel
	o, err := h.orders.CancelOrder(ctx, res.OrderID)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if o.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled")
	}

	// stocks restored
	if s1, s2 := h.stock(t, p1.ID), h.stock(t, p2.ID); s1 != 5 || s2 != 2 {
		t.Fatalf("stock not restored: %v %v", s1, s2)
	}

	// counters reverted, invoice kept
	c, _ := h.orders.GetCustomerByPhone(ctx, "+911234567890")
	if c.TotalOrders != 0 || !c.TotalAmountSpent.IsZero() {
		t.Fatalf("counters not reverted: %d %s", c.TotalOrders, c.TotalAmountSpent)
	}
	inv, err := h.orders.GetInvoiceByOrder(ctx, res.OrderID)
	if err != nil || inv.InvoiceNumber != res.InvoiceNumber {
		t.Fatalf("invoice lost: %v", err)
	}
}

func TestCancelOrder_InvalidState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	p1 := h.addMedicine(t, "A", "", "10", 10)
	res, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName: "Jane", CustomerPhone: "+911234567890",
		Items: []ManualItem{{MedicineID: p1.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := h.orders.CancelOrder(ctx, res.OrderID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := h.orders.CancelOrder(ctx, res.OrderID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state on second cancel, got %v", err)
	}
	if got := h.stock(t, p1.ID); got != 10 {
		t.Fatalf("stock restored twice: %d", got)
	}
}

func TestCancelOrder_NotFound(t *testing.T) {
	h := newHarness(t)
	if _, err := h.orders.CancelOrder(context.Background(), 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.orders.CancelOrder(context.Background(), 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIdentityResolver(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	r := NewIdentityResolver(repos.Customers)

	c, err := r.Resolve(ctx, "Ramesh", "+919876543210", "MG Road")
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalOrders != 0 || !c.TotalAmountSpent.IsZero() {
		t.Fatalf("new customer must start with zero counters")
	}

	// blanks never clear stored values
	same, err := r.Resolve(ctx, "  ", "+919876543210", "")
	if err != nil {
		t.Fatal(err)
	}
	if same.ID != c.ID || same.Name != "Ramesh" || same.Address != "MG Road" {
		t.Fatalf("unexpected customer %+v", same)
	}

	renamed, err := r.Resolve(ctx, "Ramesh Kumar", "+919876543210", "Station Road")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.ID != c.ID || renamed.Name != "Ramesh Kumar" || renamed.Address != "Station Road" {
		t.Fatalf("unexpected customer %+v", renamed)
	}

	// a different number is a different customer
	other, err := r.Resolve(ctx, "Ramesh", "+919876543211", "")
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == c.ID {
		t.Fatalf("phone must be the only key")
	}

	if _, err := r.Resolve(ctx, "X", " ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// lateCustomers loses the insert race: another transaction commits the
// same phone between the lookup and the insert.
type lateCustomers struct {
	repository.CustomerRepository
}

func (l lateCustomers) Create(ctx context.Context, c *domain.Customer) error {
	winner := domain.Customer{Name: "First Caller", Phone: c.Phone, TotalAmountSpent: decimal.Zero}
	if err := l.CustomerRepository.Create(ctx, &winner); err != nil {
		return err
	}
	return repository.ErrDuplicate
}

func TestIdentityResolver_InsertRace(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	r := NewIdentityResolver(lateCustomers{repos.Customers})

	c, err := r.Resolve(ctx, "Second Caller", "+919876543210", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.ID == 0 || c.Name != "Second Caller" {
		t.Fatalf("unexpected customer %+v", c)
	}
	all, err := repos.Customers.List(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != c.ID {
		t.Fatalf("expected the committed row to be reused, got %+v", all)
	}
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.orders.CreateCustomer(ctx, " Asha ", "+919800000001", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == 0 || c.Name != "Asha" || c.TotalOrders != 0 {
		t.Fatalf("unexpected customer %+v", c)
	}
	if _, err := h.orders.CreateCustomer(ctx, "Other", "+919800000001", ""); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := h.orders.CreateCustomer(ctx, "", "+919800000002", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvoiceDocument(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, WithRenderer(document.NewFileRenderer(t.TempDir(), document.Shop{Name: "City Pharmacy"})))
	med := h.addMedicine(t, "Dolo 650", "", "30", 10)

	res, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName: "A", CustomerPhone: "+911111111111",
		Items: []ManualItem{{MedicineID: med.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	inv, err := h.orders.GetInvoiceByNumber(ctx, res.InvoiceNumber)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := h.orders.InvoiceDocument(ctx, inv.ID)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if snap.InvoiceNumber != res.InvoiceNumber || snap.Total.String() != "60.00" {
		t.Fatalf("unexpected document %+v", snap)
	}

	// the file disappeared from disk
	if err := os.Remove(inv.DocumentRef); err != nil {
		t.Fatal(err)
	}
	if _, err := h.orders.InvoiceDocument(ctx, inv.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInvoiceDocument_NotRendered(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	med := h.addMedicine(t, "Dolo 650", "", "30", 10)
	res, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName: "A", CustomerPhone: "+911111111111",
		Items: []ManualItem{{MedicineID: med.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	inv, _ := h.orders.GetInvoiceByNumber(ctx, res.InvoiceNumber)
	if _, err := h.orders.InvoiceDocument(ctx, inv.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.orders.InvoiceDocument(ctx, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMedicineService(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	if _, err := h.meds.Create(ctx, domain.Medicine{Name: "", UnitPrice: decimal.NewFromInt(1)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty name")
	}
	if _, err := h.meds.Create(ctx, domain.Medicine{Name: "X", UnitPrice: decimal.NewFromInt(-1)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative price")
	}
	if _, err := h.meds.Create(ctx, domain.Medicine{Name: "X", UnitPrice: decimal.NewFromInt(1), DefaultPackaging: "sachet"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for packaging")
	}

	para := h.addMedicine(t, "Paracetamol 500mg", "Acetaminophen", "2", 3)
	crocin := h.addMedicine(t, "Crocin 650mg", "Paracetamol", "3", 300)

	found, err := h.meds.Search(ctx, "paracetamol", 0)
	if err != nil {
		t.Fatal(err)
	}
	// exact generic name outranks a prefix of the brand name
	if len(found) != 2 || found[0].ID != crocin.ID || found[1].ID != para.ID {
		t.Fatalf("unexpected search result %+v", found)
	}
	if _, err := h.meds.Search(ctx, " ", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank search must be rejected")
	}

	low, err := h.meds.LowStock(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 1 || low[0].ID != para.ID {
		t.Fatalf("unexpected low stock %+v", low)
	}

	// referenced medicines cannot be deleted
	if _, err := h.orch.CreateManualOrder(ctx, ManualOrder{
		CustomerName: "A", CustomerPhone: "+911111111111",
		Items: []ManualItem{{MedicineID: para.ID, Quantity: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := h.meds.Delete(ctx, para.ID); !errors.Is(err, repository.ErrReferenced) {
		t.Fatalf("expected referenced, got %v", err)
	}
}
