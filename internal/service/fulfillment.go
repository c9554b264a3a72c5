package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medorder/internal/domain"
	"medorder/internal/numbering"
	"medorder/internal/repository"
)

// Policy decides what happens to a line that cannot be reserved.
type Policy int

const (
	// PolicyStrict aborts the whole order on the first unfulfillable line.
	PolicyStrict Policy = iota
	// PolicyBestEffort skips unfulfillable lines and reports them.
	PolicyBestEffort
)

func (p Policy) String() string {
	if p == PolicyBestEffort {
		return "best-effort"
	}
	return "strict"
}

// SkipReason explains why a line was left out of a best-effort order.
type SkipReason string

const (
	SkipNotFound          SkipReason = "not found"
	SkipInsufficientStock SkipReason = "insufficient stock"
)

// SkippedItem is a requested line that did not make it into the order.
type SkippedItem struct {
	Name   string     `json:"name"`
	Reason SkipReason `json:"reason"`
}

func (s SkippedItem) String() string {
	if s.Reason == SkipNotFound {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Reason)
}

// LineRequest is one requested line. Strict orders reference MedicineID,
// best-effort orders carry free text in Query.
type LineRequest struct {
	MedicineID int64
	Query      string
	Quantity   int64
	Packaging  domain.Packaging
}

func (l LineRequest) label() string {
	if l.Query != "" {
		return l.Query
	}
	return fmt.Sprintf("medicine #%d", l.MedicineID)
}

// FulfillmentRequest is the canonical input of Fulfill.
type FulfillmentRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Lines           []LineRequest
	Policy          Policy
	Source          string
	Language        string
	Notes           string
	IdempotencyKey  string
}

// Fulfillment is a committed order with its invoice.
type Fulfillment struct {
	Order    *domain.Order
	Invoice  *domain.Invoice
	Skipped  []SkippedItem
	Warnings []string
}

// PricingPolicy returns the discount amount and tax rate (percent) for a
// subtotal.
type PricingPolicy func(subtotal decimal.Decimal) (discount, taxRatePercent decimal.Decimal)

// NoPricing applies no discount and no tax.
func NoPricing(decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	return decimal.Zero, decimal.Zero
}

// DocumentRenderer stores a rendered invoice and returns its reference.
type DocumentRenderer interface {
	Render(ctx context.Context, o *domain.Order, inv *domain.Invoice) (string, error)
}

// Fulfiller reserves stock and opens invoices.
type Fulfiller struct {
	repos    repository.Repositories
	identity *IdentityResolver
	matcher  *CatalogMatcher
	numbers  *numbering.Authority
	pricing  PricingPolicy
	renderer DocumentRenderer
	log      *zap.Logger
}

// FulfillerOption customizes a Fulfiller.
type FulfillerOption func(*Fulfiller)

func WithPricing(p PricingPolicy) FulfillerOption {
	return func(f *Fulfiller) { f.pricing = p }
}

func WithRenderer(r DocumentRenderer) FulfillerOption {
	return func(f *Fulfiller) { f.renderer = r }
}

func WithLogger(l *zap.Logger) FulfillerOption {
	return func(f *Fulfiller) { f.log = l }
}

func NewFulfiller(repos repository.Repositories, numbers *numbering.Authority, opts ...FulfillerOption) *Fulfiller {
	f := &Fulfiller{
		repos:    repos,
		identity: NewIdentityResolver(repos.Customers),
		matcher:  NewCatalogMatcher(repos.Medicines),
		numbers:  numbers,
		pricing:  NoPricing,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fulfill runs one order through a single transaction: customer resolution,
// a pending order, one locked stock decrement and price-snapshotted line per
// reservable request, totals, the invoice and the customer counters. Either
// all of it commits or none of it does. Under PolicyBestEffort unreservable
// lines are skipped; if none remain the order fails with
// ErrNoFulfillableItems and the skipped lines are still returned.
//
// After commit the invoice document is rendered. A rendering failure keeps
// the order and is reported as a warning.
func (f *Fulfiller) Fulfill(ctx context.Context, req FulfillmentRequest) (*Fulfillment, error) {
	if len(req.Lines) == 0 {
		return nil, validationf("order must have at least one item")
	}
	for i, l := range req.Lines {
		if l.Quantity < 1 {
			return nil, validationf("item %d: quantity must be positive", i+1)
		}
	}

	var out Fulfillment
	err := f.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		out = Fulfillment{}
		return f.reserve(ctx, req, &out)
	})
	if err != nil {
		err = classify(err)
		f.log.Warn("order aborted",
			zap.String("policy", req.Policy.String()),
			zap.String("customer_phone", req.CustomerPhone),
			zap.Int("skipped", len(out.Skipped)),
			zap.Error(err))
		if errors.Is(err, ErrNoFulfillableItems) {
			return &Fulfillment{Skipped: out.Skipped}, err
		}
		return nil, err
	}

	f.render(ctx, &out)

	fields := []zap.Field{
		zap.String("order_number", out.Order.OrderNumber),
		zap.String("invoice_number", out.Invoice.InvoiceNumber),
		zap.String("customer_phone", out.Order.Customer.Phone),
		zap.Int("lines", len(out.Order.Lines)),
		zap.String("final_amount", out.Order.FinalAmount.StringFixed(domain.MoneyPlaces)),
	}
	if len(out.Skipped) > 0 {
		f.log.Info("order confirmed with skipped items", append(fields, zap.Int("skipped", len(out.Skipped)))...)
	} else {
		f.log.Info("order confirmed", fields...)
	}
	return &out, nil
}

func (f *Fulfiller) reserve(ctx context.Context, req FulfillmentRequest, out *Fulfillment) error {
	customer, err := f.identity.Resolve(ctx, req.CustomerName, req.CustomerPhone, req.CustomerAddress)
	if err != nil {
		return err
	}

	order := &domain.Order{
		OrderNumber:    f.numbers.NextOrderNumber(),
		CustomerID:     customer.ID,
		Status:         domain.OrderStatusPending,
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		FinalAmount:    decimal.Zero,
		Source:         req.Source,
		Language:       req.Language,
		Notes:          req.Notes,
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		order.IdempotencyKey = &key
	}
	if err := f.repos.Orders.Create(ctx, order); err != nil {
		if order.IdempotencyKey != nil && errors.Is(err, repository.ErrDuplicate) {
			return errReplay
		}
		return err
	}

	subtotal := decimal.Zero
	for _, lr := range req.Lines {
		line, reason, err := f.reserveLine(ctx, req.Policy, order.ID, lr)
		if err != nil {
			return err
		}
		if reason != "" {
			out.Skipped = append(out.Skipped, SkippedItem{Name: lr.label(), Reason: reason})
			continue
		}
		order.Lines = append(order.Lines, *line)
		subtotal = subtotal.Add(line.LineTotal)
	}
	if len(order.Lines) == 0 {
		names := make([]string, len(out.Skipped))
		for i, s := range out.Skipped {
			names[i] = s.String()
		}
		return fmt.Errorf("%w: %s", ErrNoFulfillableItems, strings.Join(names, ", "))
	}

	discount, rate := f.pricing(subtotal)
	order.Subtotal = domain.Money(subtotal)
	order.DiscountAmount = domain.Money(discount)
	order.TaxAmount = domain.TaxOn(order.Subtotal.Sub(order.DiscountAmount), rate)
	order.FinalAmount = domain.FinalAmount(order.Subtotal, order.DiscountAmount, order.TaxAmount)
	order.Status = domain.OrderStatusConfirmed
	if err := f.repos.Orders.Update(ctx, order); err != nil {
		return err
	}

	inv := &domain.Invoice{
		InvoiceNumber: f.numbers.NextInvoiceNumber(),
		OrderID:       order.ID,
		Subtotal:      order.Subtotal,
		Discount:      order.DiscountAmount,
		TaxRate:       rate,
		TaxAmount:     order.TaxAmount,
		TotalAmount:   order.FinalAmount,
		PaymentStatus: domain.PaymentUnpaid,
	}
	if err := f.repos.Invoices.Create(ctx, inv); err != nil {
		return err
	}

	if err := f.repos.Customers.AddTotals(ctx, customer.ID, 1, order.FinalAmount); err != nil {
		return err
	}
	// the row is locked since Resolve, so the copy stays in step
	customer.TotalOrders++
	customer.TotalAmountSpent = domain.Money(customer.TotalAmountSpent.Add(order.FinalAmount))

	order.Customer = customer
	order.Invoice = inv
	out.Order = order
	out.Invoice = inv
	return nil
}

// reserveLine returns the created line, or the reason it was skipped under
// the best-effort policy. Under the strict policy a skip becomes an error.
func (f *Fulfiller) reserveLine(ctx context.Context, policy Policy, orderID int64, lr LineRequest) (*domain.OrderLine, SkipReason, error) {
	skip := func(reason SkipReason) (*domain.OrderLine, SkipReason, error) {
		if policy == PolicyBestEffort {
			return nil, reason, nil
		}
		if reason == SkipNotFound {
			return nil, "", validationf("%s not found", lr.label())
		}
		return nil, "", fmt.Errorf("%w: %s", ErrStockConflict, lr.label())
	}

	id := lr.MedicineID
	if policy == PolicyBestEffort {
		m, err := f.matcher.Best(ctx, lr.Query)
		if err != nil {
			return nil, "", err
		}
		if m == nil {
			return skip(SkipNotFound)
		}
		id = m.ID
	}

	med, err := f.repos.Medicines.LockByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return skip(SkipNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	if med.StockQuantity < lr.Quantity {
		return skip(SkipInsufficientStock)
	}
	if err := f.repos.Medicines.AdjustStock(ctx, med.ID, -lr.Quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return skip(SkipInsufficientStock)
		}
		return nil, "", err
	}

	pkg := lr.Packaging
	if pkg == "" {
		pkg = med.DefaultPackaging
	}
	line := &domain.OrderLine{
		OrderID:      orderID,
		MedicineID:   med.ID,
		MedicineName: med.Name,
		Quantity:     lr.Quantity,
		Packaging:    pkg,
		UnitPrice:    med.UnitPrice,
		LineTotal:    domain.LineTotal(lr.Quantity, med.UnitPrice),
	}
	if err := f.repos.Orders.AddLine(ctx, line); err != nil {
		return nil, "", err
	}
	return line, "", nil
}

func (f *Fulfiller) render(ctx context.Context, out *Fulfillment) {
	if f.renderer == nil {
		return
	}
	ref, err := f.renderer.Render(ctx, out.Order, out.Invoice)
	if err != nil {
		f.log.Error("invoice document not rendered",
			zap.String("invoice_number", out.Invoice.InvoiceNumber), zap.Error(err))
		out.Warnings = append(out.Warnings, "invoice document could not be generated")
		return
	}
	out.Invoice.DocumentRef = ref
	if err := f.repos.Invoices.Update(ctx, out.Invoice); err != nil {
		f.log.Error("document reference not saved",
			zap.String("invoice_number", out.Invoice.InvoiceNumber), zap.Error(err))
		out.Invoice.DocumentRef = ""
		out.Warnings = append(out.Warnings, "invoice document reference could not be saved")
	}
}
