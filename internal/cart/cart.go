// Package cart holds the order line-item model and the invoice totals derived from it.
package cart

import (
	"supply-desk/internal/model"

	"github.com/shopspring/decimal"
)

// Line is a single product row of a cart.
type Line struct {
	// ID is the persisted cart-product id when editing an existing order, 0 for a
	// line added in this session.
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	Notes        string          `json:"notes"`
	QuantityType int             `json:"quantityType"`
}

// Total returns unitPrice × quantity, with invalid inputs counted as zero.
func (l Line) Total() decimal.Decimal {
	if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered, immutable sequence of lines. Every mutating operation
// returns a new Cart and leaves the receiver untouched.
type Cart struct {
	lines []Line
}

// New returns a cart holding a copy of lines in the given order.
func New(lines ...Line) Cart {
	return Cart{lines: append([]Line(nil), lines...)}
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Len returns the number of lines.
func (c Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Line returns the line at index i.
func (c Cart) Line(i int) (Line, error) {
	if i < 0 || i >= len(c.lines) {
		return Line{}, model.ErrLineNotFound
	}
	return c.lines[i], nil
}

// IndexOf returns the index of the line for productID, or -1.
func (c Cart) IndexOf(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddOrMerge increments the quantity of the line already holding the product,
// or appends a new line with quantity 1 at the catalog price. It returns the new
// cart and the index of the affected line.
func (c Cart) AddOrMerge(p model.ProductBrief) (Cart, int) {
	if i := c.IndexOf(p.ID); i >= 0 {
		next := c.clone()
		next.lines[i].Quantity++
		return next, i
	}

	next := Cart{lines: make([]Line, len(c.lines), len(c.lines)+1)}
	copy(next.lines, c.lines)
	next.lines = append(next.lines, Line{
		ProductID:    p.ID,
		ProductName:  p.Name,
		UnitPrice:    ParseAmount(string(p.Price)),
		Quantity:     1,
		QuantityType: p.QuantityType,
	})
	return next, len(next.lines) - 1
}

// SetQuantity replaces the quantity of line i. Values below 1 are rejected.
func (c Cart) SetQuantity(i, quantity int) (Cart, error) {
	if quantity < 1 {
		return c, model.ErrInvalidQuantity
	}
	return c.update(i, func(l *Line) { l.Quantity = quantity })
}

// SetUnitPrice replaces the unit price of line i. Negative prices are caught at
// submission time.
func (c Cart) SetUnitPrice(i int, price decimal.Decimal) (Cart, error) {
	return c.update(i, func(l *Line) { l.UnitPrice = price })
}

// SetNotes replaces the notes of line i verbatim.
func (c Cart) SetNotes(i int, notes string) (Cart, error) {
	return c.update(i, func(l *Line) { l.Notes = notes })
}

// SetLineTotal back-solves the unit price so that unitPrice × quantity equals
// total. The quotient is stored unrounded (decimal.DivisionPrecision digits).
func (c Cart) SetLineTotal(i int, total decimal.Decimal) (Cart, error) {
	if total.IsNegative() {
		return c, model.ErrNegativeTotal
	}
	if _, err := c.Line(i); err != nil {
		return c, err
	}
	if c.lines[i].Quantity <= 0 {
		return c, model.ErrInvalidQuantity
	}
	return c.update(i, func(l *Line) {
		l.UnitPrice = total.Div(decimal.NewFromInt(int64(l.Quantity)))
	})
}

// RemoveLine deletes line i; later lines shift down by one.
func (c Cart) RemoveLine(i int) (Cart, error) {
	if _, err := c.Line(i); err != nil {
		return c, err
	}
	next := Cart{lines: make([]Line, 0, len(c.lines)-1)}
	next.lines = append(next.lines, c.lines[:i]...)
	next.lines = append(next.lines, c.lines[i+1:]...)
	return next, nil
}

func (c Cart) update(i int, fn func(*Line)) (Cart, error) {
	if _, err := c.Line(i); err != nil {
		return c, err
	}
	next := c.clone()
	fn(&next.lines[i])
	return next, nil
}

func (c Cart) clone() Cart {
	return Cart{lines: append([]Line(nil), c.lines...)}
}
