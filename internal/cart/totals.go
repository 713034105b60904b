package cart

import (
	"strings"

	"supply-desk/internal/model"

	"github.com/shopspring/decimal"
)

// Totals is the invoice summary of a cart. It is always recomputed from the
// lines, discount and paid amount and never patched incrementally.
type Totals struct {
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	Paid               decimal.Decimal
	TotalAfterDiscount decimal.Decimal
	Remaining          decimal.Decimal
}

// Compute derives the totals for lines with the given discount and paid amount.
func Compute(lines []Line, discount, paid decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	totalAfterDiscount := decimal.Max(subtotal.Sub(discount), decimal.Zero)
	paidClamped := decimal.Max(paid, decimal.Zero)
	remaining := decimal.Max(totalAfterDiscount.Sub(paidClamped), decimal.Zero)

	return Totals{
		Subtotal:           subtotal,
		Discount:           discount,
		Paid:               paid,
		TotalAfterDiscount: totalAfterDiscount,
		Remaining:          remaining,
	}
}

// Totals computes the invoice totals for the cart.
func (c Cart) Totals(discount, paid decimal.Decimal) Totals {
	return Compute(c.lines, discount, paid)
}

// Status derives the payment status of the invoice.
func (t Totals) Status() string {
	switch {
	case t.Remaining.IsZero():
		return model.OrderStatusPaid
	case t.Paid.IsPositive():
		return model.OrderStatusHalfPaid
	default:
		return model.OrderStatusUnpaid
	}
}

// ParseAmount parses a monetary input. Empty, unparsable and non-finite values
// parse as zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
