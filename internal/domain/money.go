package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the presentation precision of every monetary amount.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Money rounds an amount to two decimal places (half away from zero).
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal is quantity × unit price.
func LineTotal(qty int64, unitPrice decimal.Decimal) decimal.Decimal {
	return Money(unitPrice.Mul(decimal.NewFromInt(qty)))
}

// TaxOn applies a percentage rate to a taxable base.
func TaxOn(base, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return decimal.Zero
	}
	return Money(base.Mul(ratePercent).Div(hundred))
}

// FinalAmount is subtotal − discount + tax.
func FinalAmount(subtotal, discount, tax decimal.Decimal) decimal.Decimal {
	return Money(subtotal.Sub(discount).Add(tax))
}

// Amount is a money value that always serializes with two decimal places,
// e.g. "4.00".
type Amount decimal.Decimal

func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

func (a Amount) String() string { return a.Decimal().StringFixed(MoneyPlaces) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}
