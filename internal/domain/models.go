package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Packaging is the unit a medicine is dispensed in.
type Packaging string

const (
	PackagingStrip  Packaging = "strip"
	PackagingBottle Packaging = "bottle"
	PackagingBox    Packaging = "box"
	PackagingLoose  Packaging = "loose"
	PackagingTube   Packaging = "tube"
	PackagingVial   Packaging = "vial"
)

// Packagings lists the recognized packaging kinds in matching priority order.
var Packagings = []Packaging{
	PackagingStrip,
	PackagingBottle,
	PackagingBox,
	PackagingLoose,
	PackagingTube,
	PackagingVial,
}

// Valid reports whether p is one of the recognized packaging kinds.
func (p Packaging) Valid() bool {
	for _, k := range Packagings {
		if p == k {
			return true
		}
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Order sources.
const (
	SourcePhone   = "phone"
	SourceWalkIn  = "walk-in"
	SourceOnline  = "online"
	SourceAIAgent = "ai-agent"
)

// Medicine is a catalog entry.
type Medicine struct {
	ID                   int64           `json:"id" gorm:"primaryKey"`
	Name                 string          `json:"name" gorm:"size:200;not null;index"`
	LocalizedName        string          `json:"localized_name,omitempty" gorm:"size:200"`
	GenericName          string          `json:"generic_name,omitempty" gorm:"size:200"`
	Company              string          `json:"company,omitempty" gorm:"size:200"`
	Category             string          `json:"category,omitempty" gorm:"size:100"`
	UnitPrice            decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	StockQuantity        int64           `json:"stock_quantity" gorm:"not null;default:0;check:stock_quantity >= 0"`
	ReorderLevel         int64           `json:"reorder_level" gorm:"not null;default:10"`
	DefaultPackaging     Packaging       `json:"default_packaging" gorm:"size:20;not null;default:strip"`
	UnitsPerPackage      int64           `json:"units_per_package" gorm:"not null;default:10"`
	PrescriptionRequired bool            `json:"prescription_required" gorm:"not null;default:false"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// LowStock reports whether the medicine is at or below its reorder threshold.
func (m Medicine) LowStock() bool {
	return m.StockQuantity <= m.ReorderLevel
}

// Customer is identified by phone number.
type Customer struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"size:200;not null"`
	Phone            string          `json:"phone" gorm:"size:20;not null;uniqueIndex"`
	Address          string          `json:"address,omitempty" gorm:"type:text"`
	TotalOrders      int64           `json:"total_orders" gorm:"not null;default:0"`
	TotalAmountSpent decimal.Decimal `json:"total_amount_spent" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Order aggregates the lines reserved for one customer request.
type Order struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	OrderNumber    string          `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	CustomerID     int64           `json:"customer_id" gorm:"not null;index"`
	Status         OrderStatus     `json:"status" gorm:"size:20;not null;default:pending"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);not null;default:0"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2);not null;default:0"`
	FinalAmount    decimal.Decimal `json:"final_amount" gorm:"type:numeric(12,2);not null;default:0"`
	Source         string          `json:"source" gorm:"size:50;not null;default:phone"`
	Language       string          `json:"language,omitempty" gorm:"size:20"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty" gorm:"size:128;uniqueIndex"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Customer *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Lines    []OrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Invoice  *Invoice    `json:"invoice,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderLine is one reserved medicine within an order, priced at order time.
type OrderLine struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	OrderID      int64           `json:"order_id" gorm:"not null;index"`
	MedicineID   int64           `json:"medicine_id" gorm:"not null;index"`
	MedicineName string          `json:"medicine_name" gorm:"size:200;not null"`
	Quantity     int64           `json:"quantity" gorm:"not null"`
	Packaging    Packaging       `json:"packaging" gorm:"size:20;not null;default:strip"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	LineTotal    decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
	CreatedAt    time.Time       `json:"created_at"`

	Medicine *Medicine `json:"-" gorm:"foreignKey:MedicineID;constraint:OnDelete:RESTRICT"`
}

// Invoice is the financial record opened for a confirmed order.
type Invoice struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	InvoiceNumber string          `json:"invoice_number" gorm:"size:50;not null;uniqueIndex"`
	OrderID       int64           `json:"order_id" gorm:"not null;uniqueIndex"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null;default:0"`
	TaxRate       decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,2);not null;default:0"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"size:20;not null;default:unpaid"`
	DocumentRef   string          `json:"document_ref,omitempty" gorm:"size:500"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Tables is the migration set in dependency order.
var Tables = []any{
	&Medicine{},
	&Customer{},
	&Order{},
	&OrderLine{},
	&Invoice{},
}
