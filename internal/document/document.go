// Package document renders issued invoices to files.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	jsoniter "github.com/json-iterator/go"

	"medorder/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Shop is the seller block printed on every invoice.
type Shop struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
}

// Snapshot is the rendered invoice. It is self-contained: later catalog or
// customer edits do not change an issued document.
type Snapshot struct {
	Shop          Shop            `json:"shop"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	OrderNumber   string          `json:"order_number"`
	Customer      SnapshotParty   `json:"customer"`
	Lines         []SnapshotLine  `json:"lines"`
	Subtotal      domain.Amount   `json:"subtotal"`
	Discount      domain.Amount   `json:"discount"`
	TaxRate       domain.Amount   `json:"tax_rate"`
	TaxAmount     domain.Amount   `json:"tax_amount"`
	Total         domain.Amount   `json:"total"`
	PaymentStatus string          `json:"payment_status"`
}

type SnapshotParty struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

type SnapshotLine struct {
	Medicine  string        `json:"medicine"`
	Quantity  int64         `json:"quantity"`
	Packaging string        `json:"packaging"`
	UnitPrice domain.Amount `json:"unit_price"`
	Total     domain.Amount `json:"total"`
}

// NewSnapshot builds the document body for inv. o must carry its customer
// and lines.
func NewSnapshot(shop Shop, o *domain.Order, inv *domain.Invoice) Snapshot {
	s := Snapshot{
		Shop:          shop,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		OrderNumber:   o.OrderNumber,
		Lines:         make([]SnapshotLine, 0, len(o.Lines)),
		Subtotal:      domain.Amount(inv.Subtotal),
		Discount:      domain.Amount(inv.Discount),
		TaxRate:       domain.Amount(inv.TaxRate),
		TaxAmount:     domain.Amount(inv.TaxAmount),
		Total:         domain.Amount(inv.TotalAmount),
		PaymentStatus: string(inv.PaymentStatus),
	}
	if o.Customer != nil {
		s.Customer = SnapshotParty{Name: o.Customer.Name, Phone: o.Customer.Phone, Address: o.Customer.Address}
	}
	for _, l := range o.Lines {
		s.Lines = append(s.Lines, SnapshotLine{
			Medicine:  l.MedicineName,
			Quantity:  l.Quantity,
			Packaging: string(l.Packaging),
			UnitPrice: domain.Amount(l.UnitPrice),
			Total:     domain.Amount(l.LineTotal),
		})
	}
	return s
}

// FileRenderer writes one JSON document per invoice into Dir.
type FileRenderer struct {
	Dir  string
	Shop Shop
}

func NewFileRenderer(dir string, shop Shop) *FileRenderer {
	return &FileRenderer{Dir: dir, Shop: shop}
}

// Render writes the invoice document and returns its path.
func (r *FileRenderer) Render(ctx context.Context, o *domain.Order, inv *domain.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("document dir: %w", err)
	}
	body, err := json.MarshalIndent(NewSnapshot(r.Shop, o, inv), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode invoice %s: %w", inv.InvoiceNumber, err)
	}
	path := filepath.Join(r.Dir, unsafeName.ReplaceAllString(inv.InvoiceNumber, "_")+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", fmt.Errorf("write invoice %s: %w", inv.InvoiceNumber, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write invoice %s: %w", inv.InvoiceNumber, err)
	}
	return path, nil
}

// Load reads a document written by Render.
func Load(path string) (Snapshot, error) {
	var s Snapshot
	body, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(body, &s)
	return s, err
}
