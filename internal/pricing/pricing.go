package pricing

import "math"

// TaxRate is the IGV sales tax applied to every sale.
const TaxRate = 0.18

// Line pairs a quantity with the authoritative unit price captured from the
// catalog. Amounts are integer cents.
type Line struct {
	Qty            int
	UnitPriceCents int64
}

type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// Compute sums every line first and rounds the tax once on the aggregate.
// Rounding per line produces different totals for fractional prices, so the
// order here matters: subtotal, then a single half-up rounding of the tax.
func Compute(lines []Line) Totals {
	subtotal := int64(0)
	for _, line := range lines {
		subtotal += int64(line.Qty) * line.UnitPriceCents
	}

	tax := int64(math.Round(float64(subtotal) * TaxRate))
	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}
