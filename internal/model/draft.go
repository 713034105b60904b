package model

import "time"

// OpenDraftRequest represents the request body for starting a new draft.
type OpenDraftRequest struct {
	DoctorID int64 `json:"doctorId"`
}

// DraftHeaderRequest updates the draft header. Nil fields are left unchanged.
type DraftHeaderRequest struct {
	DoctorID *int64 `json:"doctorId"`
	Discount *Price `json:"discount"`
	Paid     *Price `json:"paid"`
}

// ScanRequest carries a scanned barcode or typed slug.
type ScanRequest struct {
	Code string `json:"code"`
}

// AddProductRequest adds a product picked from the selection control.
type AddProductRequest struct {
	ProductID int64 `json:"productId"`
}

// LineUpdateRequest edits one cart line. Nil fields are left unchanged.
// Quantity is applied before LineTotal so a combined edit back-solves the
// unit price against the new quantity.
type LineUpdateRequest struct {
	Quantity  *int    `json:"quantity"`
	UnitPrice *Price  `json:"unitPrice"`
	LineTotal *Price  `json:"lineTotal"`
	Notes     *string `json:"notes"`
}

// DraftLineView is a cart line as shown to the dashboard.
type DraftLineView struct {
	Index        int    `json:"index"`
	ID           int64  `json:"id,omitempty"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	QuantityType int    `json:"quantityType"`
	UnitPrice    string `json:"unitPrice"`
	LineTotal    string `json:"lineTotal"`
	Notes        string `json:"notes"`
}

// TotalsView carries invoice totals formatted to two decimals.
type TotalsView struct {
	Subtotal           string `json:"subtotal"`
	Discount           string `json:"discount"`
	Paid               string `json:"paid"`
	TotalAfterDiscount string `json:"totalAfterDiscount"`
	Remaining          string `json:"remaining"`
}

// DraftView is the response for every draft operation.
type DraftView struct {
	ID        string          `json:"id"`
	OrderID   int64           `json:"orderId,omitempty"`
	DoctorID  int64           `json:"doctorId"`
	RepName   string          `json:"repName,omitempty"`
	Lines     []DraftLineView `json:"lines"`
	Totals    TotalsView      `json:"totals"`
	Status    string          `json:"status"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// LastIndex is the line touched by a scan or add, -1 otherwise.
	LastIndex int `json:"lastIndex"`
}

// SubmitResponse is returned after a draft was submitted upstream.
type SubmitResponse struct {
	OrderID      int64  `json:"orderId"`
	Updated      bool   `json:"updated"`
	SubmissionID string `json:"submissionId,omitempty"`
}
