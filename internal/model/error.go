package model

import "errors"

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorKind groups domain errors by how callers should present them.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindLookupMiss    ErrorKind = "lookup_miss"
	KindLookupPending ErrorKind = "lookup_pending"
	KindSubmission    ErrorKind = "submission"
	KindPoll          ErrorKind = "poll"
	KindNotFound      ErrorKind = "not_found"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeDoctorRequired   = "DOCTOR_REQUIRED"
	ErrCodeUserNotLoaded    = "USER_NOT_LOADED"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeNegativeTotal    = "NEGATIVE_TOTAL"
	ErrCodeNegativePrice    = "NEGATIVE_PRICE"
	ErrCodeNegativeAmount   = "NEGATIVE_AMOUNT"
	ErrCodeLineNotFound     = "LINE_NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeCatalogLoading   = "CATALOG_LOADING"
	ErrCodeDraftNotFound    = "DRAFT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeNotifNotFound    = "NOTIFICATION_NOT_FOUND"
	ErrCodeSubNotFound      = "SUBMISSION_NOT_FOUND"
	ErrCodeSubmissionFailed = "SUBMISSION_FAILED"
	ErrCodePollFailed       = "POLL_FAILED"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business-level failure raised before or instead of a network call.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still compare equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewSubmissionError wraps an upstream failure during order create/update.
// message is the server-provided text when available.
func NewSubmissionError(message string, cause error) *DomainError {
	if message == "" {
		message = "failed to submit order, please try again"
	}
	return &DomainError{
		Kind:    KindSubmission,
		Code:    ErrCodeSubmissionFailed,
		Message: message,
		Err:     cause,
	}
}

// NewPollError wraps a failed order list fetch.
func NewPollError(cause error) *DomainError {
	return &DomainError{
		Kind:    KindPoll,
		Code:    ErrCodePollFailed,
		Message: "order poll failed",
		Err:     cause,
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Common domain errors
var (
	ErrEmptyCart       = NewDomainError(KindValidation, ErrCodeEmptyCart, "at least one product required")
	ErrDoctorRequired  = NewDomainError(KindValidation, ErrCodeDoctorRequired, "doctor required")
	ErrUserNotLoaded   = NewDomainError(KindValidation, ErrCodeUserNotLoaded, "user not loaded")
	ErrInvalidQuantity = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "quantity must be at least 1")
	ErrNegativeTotal   = NewDomainError(KindValidation, ErrCodeNegativeTotal, "line total cannot be negative")
	ErrNegativePrice   = NewDomainError(KindValidation, ErrCodeNegativePrice, "unit price cannot be negative")
	ErrNegativeAmount  = NewDomainError(KindValidation, ErrCodeNegativeAmount, "discount and paid amount cannot be negative")
	ErrLineNotFound    = NewDomainError(KindValidation, ErrCodeLineNotFound, "cart line not found")

	ErrProductNotFound = NewDomainError(KindLookupMiss, ErrCodeProductNotFound, "product not found")
	ErrCatalogLoading  = NewDomainError(KindLookupPending, ErrCodeCatalogLoading, "still loading products, please wait")

	ErrDraftNotFound        = NewDomainError(KindNotFound, ErrCodeDraftNotFound, "draft not found")
	ErrOrderNotFound        = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "order not found")
	ErrNotificationNotFound = NewDomainError(KindNotFound, ErrCodeNotifNotFound, "notification not found")
	ErrSubmissionNotFound   = NewDomainError(KindNotFound, ErrCodeSubNotFound, "submission not found")
)
