// Package draft holds order drafts being edited on the dashboard and turns them
// into upstream create/update payloads.
package draft

import (
	"strings"
	"time"

	"supply-desk/internal/cart"
	"supply-desk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// contactPlaceholder stands in for a doctor's missing phone or address.
const contactPlaceholder = "-"

// Draft is an order being composed or edited. OrderID is zero for a new order.
type Draft struct {
	ID        uuid.UUID
	OrderID   int64
	DoctorID  int64
	Discount  decimal.Decimal
	Paid      decimal.Decimal
	Cart      cart.Cart
	Rep       *model.User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew reports whether submitting the draft creates an order.
func (d Draft) IsNew() bool {
	return d.OrderID == 0
}

// Totals recomputes the invoice totals from the current lines and amounts.
func (d Draft) Totals() cart.Totals {
	return d.Cart.Totals(d.Discount, d.Paid)
}

// Validate runs the submission gate. The first failing check wins.
func (d Draft) Validate() error {
	if d.Cart.IsEmpty() {
		return model.ErrEmptyCart
	}
	if d.DoctorID <= 0 {
		return model.ErrDoctorRequired
	}
	if d.Rep == nil {
		return model.ErrUserNotLoaded
	}
	if d.Discount.IsNegative() || d.Paid.IsNegative() {
		return model.ErrNegativeAmount
	}
	for _, l := range d.Cart.Lines() {
		if l.UnitPrice.IsNegative() {
			return model.ErrNegativePrice
		}
	}
	return nil
}

// BuildCreate assembles the create-order payload. Contact details come from
// doctor and fall back to a placeholder when missing.
func BuildCreate(d Draft, doctor *model.Doctor) (model.CreateOrderInput, error) {
	if err := d.Validate(); err != nil {
		return model.CreateOrderInput{}, err
	}

	phone, address := contactPlaceholder, contactPlaceholder
	if doctor != nil {
		phone = orPlaceholder(doctor.Phone)
		address = orPlaceholder(doctor.Address)
	}

	return model.CreateOrderInput{
		DoctorID: d.DoctorID,
		Discount: d.Discount,
		Paid:     d.Paid,
		RepName:  d.Rep.FullName,
		FullName: d.Rep.FullName,
		Email:    d.Rep.Email,
		Phone:    phone,
		Address:  address,
		Lines:    lineInputs(d.Cart),
	}, nil
}

// BuildUpdate assembles the update-order payload for an existing order.
func BuildUpdate(d Draft) (model.UpdateOrderInput, error) {
	if err := d.Validate(); err != nil {
		return model.UpdateOrderInput{}, err
	}

	return model.UpdateOrderInput{
		Discount: d.Discount,
		Paid:     d.Paid,
		Lines:    lineInputs(d.Cart),
	}, nil
}

// FromOrder hydrates a draft from an existing order for editing.
func FromOrder(detail *model.OrderDetail) Draft {
	lines := make([]cart.Line, 0, len(detail.CartProducts))
	for _, cp := range detail.CartProducts {
		l := cart.Line{
			ID:        cp.ID,
			ProductID: cp.ProductID,
			UnitPrice: cart.ParseAmount(string(cp.ProductPrice)),
			Quantity:  cp.Quantity,
			Notes:     cp.Notes,
		}
		if cp.Product != nil {
			l.ProductName = cp.Product.Name
			l.QuantityType = cp.Product.QuantityType
			if l.ProductID == 0 {
				l.ProductID = cp.Product.ID
			}
		}
		lines = append(lines, l)
	}

	paid := detail.Order.TotalPaid
	if paid == "" {
		paid = detail.Order.Paid
	}

	return Draft{
		OrderID:  detail.Order.ID,
		DoctorID: detail.Order.DoctorID,
		Discount: cart.ParseAmount(string(detail.Order.Discount)),
		Paid:     cart.ParseAmount(string(paid)),
		Cart:     cart.New(lines...),
	}
}

// lineInputs keeps cart order. Persisted lines are sent by cart product id,
// lines added in this session by product id.
func lineInputs(c cart.Cart) []model.OrderLineInput {
	lines := c.Lines()
	out := make([]model.OrderLineInput, 0, len(lines))
	for _, l := range lines {
		id := l.ID
		if id == 0 {
			id = l.ProductID
		}
		out = append(out, model.OrderLineInput{
			ID:        id,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Notes:     l.Notes,
		})
	}
	return out
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return contactPlaceholder
	}
	return s
}
