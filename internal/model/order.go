package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses known to the upstream API.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusHalfPaid  = "half-paid"
	OrderStatusUnpaid    = "unpaid"
	OrderStatusCancelled = "cancelled"
)

// Doctor is the customer an order is placed for.
type Doctor struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// User is the acting dashboard user, used as the order's representative.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	UserType string `json:"UserType"`
}

// OrderSummary is one entry of the upstream order list.
type OrderSummary struct {
	ID        int64   `json:"id"`
	Status    string  `json:"status"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	RepName   string  `json:"RepName"`
	UserType  string  `json:"userType"`
	DoctorID  int64   `json:"doctorId"`
	Doctor    *Doctor `json:"doctor"`
	Discount  Price   `json:"discount"`
	Paid      Price   `json:"paid"`
	TotalPaid Price   `json:"totalPaid"`
	Total     Price   `json:"total"`
	Rest      Price   `json:"rest"`
	CreatedAt string  `json:"createdAt,omitempty"`
	Date      string  `json:"date,omitempty"`
}

// CartProduct is a persisted order line.
type CartProduct struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"productId"`
	Quantity     int         `json:"quantity"`
	Notes        string      `json:"notes"`
	ProductPrice Price       `json:"productPrice"`
	Total        Price       `json:"total"`
	Product      *ProductRef `json:"product"`
}

// OrderDetail is an order together with its cart products.
type OrderDetail struct {
	Order        OrderSummary  `json:"order"`
	CartProducts []CartProduct `json:"cartProducts"`
	Total        Price         `json:"total"`
}

// OrderFilter narrows the order list. Zero values are omitted.
type OrderFilter struct {
	DoctorID  int64
	UserID    int64
	ProductID int64
	Status    string
	Date      string
}

// OrderLineInput is one submitted cart line. ID is the cart product id for an
// existing line, or the catalog product id for a line added in this session.
type OrderLineInput struct {
	ID        int64
	Quantity  int
	UnitPrice decimal.Decimal
	Notes     string
}

// CreateOrderInput is the create-order payload.
type CreateOrderInput struct {
	DoctorID int64
	Discount decimal.Decimal
	Paid     decimal.Decimal
	RepName  string
	FullName string
	Email    string
	Phone    string
	Address  string
	Lines    []OrderLineInput
}

// UpdateOrderInput is the update-order payload.
type UpdateOrderInput struct {
	Discount decimal.Decimal
	Paid     decimal.Decimal
	Lines    []OrderLineInput
}

// Submission is the audit record of a successful draft submission.
type Submission struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	DraftID            uuid.UUID       `json:"draftId" db:"draft_id"`
	OrderID            int64           `json:"orderId" db:"order_id"`
	Updated            bool            `json:"updated" db:"updated"`
	DoctorID           int64           `json:"doctorId" db:"doctor_id"`
	RepName            string          `json:"repName" db:"rep_name"`
	Subtotal           decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount           decimal.Decimal `json:"discount" db:"discount"`
	Paid               decimal.Decimal `json:"paid" db:"paid"`
	TotalAfterDiscount decimal.Decimal `json:"totalAfterDiscount" db:"total_after_discount"`
	Remaining          decimal.Decimal `json:"remaining" db:"remaining"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
}

// SubmissionLine is one line of a submission audit record.
type SubmissionLine struct {
	ID           uuid.UUID       `json:"-" db:"id"`
	SubmissionID uuid.UUID       `json:"-" db:"submission_id"`
	Position     int             `json:"position" db:"position"`
	LineID       int64           `json:"lineId" db:"line_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Notes        string          `json:"notes" db:"notes"`
}

// SubmissionDetail is a submission audit record with its lines in cart order.
type SubmissionDetail struct {
	Submission
	Lines []SubmissionLine `json:"lines"`
}

// IsAdminRole reports whether a user type denotes the administrative role.
// The upstream API sends either the role name or its numeric code "0".
func IsAdminRole(userType, adminRole string) bool {
	v := strings.TrimSpace(userType)
	if v == "" {
		return false
	}
	if strings.EqualFold(v, adminRole) {
		return true
	}
	return strings.EqualFold(adminRole, "admin") && v == "0"
}
