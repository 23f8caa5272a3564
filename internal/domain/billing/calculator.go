package billing

import (
	"github.com/shopspring/decimal"
)

// Totals holds the derived amounts of a bill. All values are exact
// decimals: two-decimal display rounding is cosmetic and never feeds
// back into stored totals.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals derives subtotal, tax and grand total from the line
// items. Pure and deterministic: no clock, no I/O.
//
//	subtotal   = sum(price x quantity)
//	taxAmount  = subtotal x taxRate
//	grandTotal = subtotal + taxAmount
func ComputeTotals(items []LineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	taxAmount := subtotal.Mul(taxRate)
	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		GrandTotal: subtotal.Add(taxAmount),
	}
}
