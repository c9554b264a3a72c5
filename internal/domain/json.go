package domain

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// The wire form of every entity replaces its decimal fields with Amount.
// The outer fields shadow the embedded ones of the same JSON name.

func (m Medicine) MarshalJSON() ([]byte, error) {
	type plain Medicine
	return json.Marshal(struct {
		plain
		UnitPrice Amount `json:"unit_price"`
	}{plain(m), Amount(m.UnitPrice)})
}

func (c Customer) MarshalJSON() ([]byte, error) {
	type plain Customer
	return json.Marshal(struct {
		plain
		TotalAmountSpent Amount `json:"total_amount_spent"`
	}{plain(c), Amount(c.TotalAmountSpent)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Subtotal       Amount `json:"subtotal"`
		DiscountAmount Amount `json:"discount_amount"`
		TaxAmount      Amount `json:"tax_amount"`
		FinalAmount    Amount `json:"final_amount"`
	}{plain(o), Amount(o.Subtotal), Amount(o.DiscountAmount), Amount(o.TaxAmount), Amount(o.FinalAmount)})
}

func (l OrderLine) MarshalJSON() ([]byte, error) {
	type plain OrderLine
	return json.Marshal(struct {
		plain
		UnitPrice Amount `json:"unit_price"`
		LineTotal Amount `json:"line_total"`
	}{plain(l), Amount(l.UnitPrice), Amount(l.LineTotal)})
}

func (inv Invoice) MarshalJSON() ([]byte, error) {
	type plain Invoice
	return json.Marshal(struct {
		plain
		Subtotal    Amount `json:"subtotal"`
		Discount    Amount `json:"discount"`
		TaxRate     Amount `json:"tax_rate"`
		TaxAmount   Amount `json:"tax_amount"`
		TotalAmount Amount `json:"total_amount"`
	}{plain(inv), Amount(inv.Subtotal), Amount(inv.Discount), Amount(inv.TaxRate), Amount(inv.TaxAmount), Amount(inv.TotalAmount)})
}
