package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medorder/internal/domain"
	"medorder/internal/normalize"
	"medorder/internal/repository"
)

// Result messages, read back to the caller by the voice channel.
const (
	MsgOrderCreated   = "Order created successfully! आर्डर सफलतापूर्वक बन गया!"
	MsgOrderReplayed  = "Order already recorded. आर्डर पहले ही दर्ज हो चुका है।"
	MsgNoItems        = "Could not find medicines: %s. दवाइयाँ नहीं मिलीं।"
	MsgOrderFailed    = "Could not create the order, please try again. आर्डर नहीं बन पाया, कृपया फिर से कोशिश करें।"
	MsgInvalidRequest = "Invalid order request. आर्डर अनुरोध सही नहीं है।"
)

// ManualItem is one line of a manual or web order.
type ManualItem struct {
	MedicineID int64            `json:"medicine_id"`
	Quantity   int64            `json:"quantity"`
	Packaging  domain.Packaging `json:"packaging_type"`
}

// ManualOrder is the request shape of the manual/web channel.
type ManualOrder struct {
	CustomerName    string       `json:"customer_name"`
	CustomerPhone   string       `json:"customer_phone"`
	CustomerAddress string       `json:"customer_address"`
	Items           []ManualItem `json:"items"`
	Notes           string       `json:"notes"`
	Source          string       `json:"order_source"`
	Language        string       `json:"language_used"`
}

// Result is what every channel gets back.
type Result struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	OrderID       int64           `json:"order_id,omitempty"`
	OrderNumber   string          `json:"order_number,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	FinalAmount   domain.Amount   `json:"total_amount"`
	DocumentRef   string          `json:"invoice_document,omitempty"`
	Skipped       []SkippedItem   `json:"skipped_items,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Replayed      bool            `json:"replayed,omitempty"`
}

// Orchestrator binds the channel request shapes to the fulfillment policies.
type Orchestrator struct {
	fulfiller  *Fulfiller
	normalizer *normalize.Normalizer
	orders     repository.OrderRepository
	log        *zap.Logger
}

func NewOrchestrator(f *Fulfiller, n *normalize.Normalizer, orders repository.OrderRepository, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{fulfiller: f, normalizer: n, orders: orders, log: log}
}

// CreateManualOrder создаёт заказ по схеме «всё или ничего»
func (o *Orchestrator) CreateManualOrder(ctx context.Context, in ManualOrder) (*Result, error) {
	if len(in.Items) == 0 {
		return failed(MsgInvalidRequest), validationf("order must have at least one item")
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return failed(MsgInvalidRequest), validationf("customer name and phone are required")
	}
	lines := make([]LineRequest, 0, len(in.Items))
	for i, it := range in.Items {
		if it.MedicineID <= 0 || it.Quantity <= 0 {
			return failed(MsgInvalidRequest), validationf("item %d: medicine_id and quantity must be positive", i+1)
		}
		pkg := domain.Packaging(strings.ToLower(strings.TrimSpace(string(it.Packaging))))
		if pkg == "" {
			pkg = domain.PackagingStrip
		}
		if !pkg.Valid() {
			return failed(MsgInvalidRequest), validationf("item %d: unknown packaging %q", i+1, it.Packaging)
		}
		lines = append(lines, LineRequest{MedicineID: it.MedicineID, Quantity: it.Quantity, Packaging: pkg})
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = domain.SourcePhone
	}
	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang == "" {
		lang = normalize.DefaultLanguage
	}

	out, err := o.fulfiller.Fulfill(ctx, FulfillmentRequest{
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		Lines:           lines,
		Policy:          PolicyStrict,
		Source:          source,
		Language:        lang,
		Notes:           strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return failedFor(err, nil), err
	}
	return succeeded(out), nil
}

// CreateVoiceOrder нормализует запрос голосового агента и создаёт заказ,
// пропуская позиции, которые нельзя выполнить
func (o *Orchestrator) CreateVoiceOrder(ctx context.Context, in normalize.VoiceOrder) (*Result, error) {
	req := o.normalizer.VoiceOrder(in)

	if req.IdempotencyKey != "" {
		if res, ok, err := o.replay(ctx, req.IdempotencyKey); err != nil || ok {
			return res, err
		}
	}

	if len(req.Items) == 0 {
		r := failed(MsgInvalidRequest)
		r.Warnings = req.Warnings
		return r, validationf("no medicines in request")
	}

	lines := make([]LineRequest, len(req.Items))
	for i, it := range req.Items {
		lines[i] = LineRequest{Query: it.Name, Quantity: it.Quantity, Packaging: it.Packaging}
	}
	notes := ""
	if req.Transcript != "" {
		notes = "Transcript: " + req.Transcript
	}

	out, err := o.fulfiller.Fulfill(ctx, FulfillmentRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Lines:           lines,
		Policy:          PolicyBestEffort,
		Source:          domain.SourceAIAgent,
		Language:        req.Language,
		Notes:           notes,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if errors.Is(err, errReplay) {
		res, _, rerr := o.replay(ctx, req.IdempotencyKey)
		return res, rerr
	}
	if err != nil {
		r := failedFor(err, out)
		r.Warnings = req.Warnings
		return r, err
	}
	r := succeeded(out)
	r.Warnings = append(req.Warnings, r.Warnings...)
	return r, nil
}

// replay returns the result of an order already committed under key.
func (o *Orchestrator) replay(ctx context.Context, key string) (*Result, bool, error) {
	existing, err := o.orders.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		err = classify(err)
		return failedFor(err, nil), false, err
	}
	o.log.Info("voice order replayed",
		zap.String("idempotency_key", key), zap.String("order_number", existing.OrderNumber))
	r := &Result{
		Success:     true,
		Message:     MsgOrderReplayed,
		OrderID:     existing.ID,
		OrderNumber: existing.OrderNumber,
		FinalAmount: domain.Amount(existing.FinalAmount),
		Replayed:    true,
	}
	if existing.Invoice != nil {
		r.InvoiceNumber = existing.Invoice.InvoiceNumber
		r.DocumentRef = existing.Invoice.DocumentRef
	}
	return r, true, nil
}

func succeeded(out *Fulfillment) *Result {
	return &Result{
		Success:       true,
		Message:       MsgOrderCreated,
		OrderID:       out.Order.ID,
		OrderNumber:   out.Order.OrderNumber,
		InvoiceNumber: out.Invoice.InvoiceNumber,
		FinalAmount:   domain.Amount(out.Order.FinalAmount),
		DocumentRef:   out.Invoice.DocumentRef,
		Skipped:       out.Skipped,
		Warnings:      out.Warnings,
	}
}

func failed(msg string) *Result {
	return &Result{Success: false, Message: msg, FinalAmount: domain.Amount(decimal.Zero)}
}

func failedFor(err error, out *Fulfillment) *Result {
	switch {
	case errors.Is(err, ErrNoFulfillableItems):
		r := failed("")
		names := make([]string, 0)
		if out != nil {
			r.Skipped = out.Skipped
			for _, s := range out.Skipped {
				names = append(names, s.String())
			}
		}
		r.Message = fmt.Sprintf(MsgNoItems, strings.Join(names, ", "))
		return r
	case errors.Is(err, ErrValidation), errors.Is(err, ErrStockConflict):
		// the detail names the offending medicine and is safe to show
		r := failed(err.Error())
		return r
	default:
		return failed(MsgOrderFailed)
	}
}
