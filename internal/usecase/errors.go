package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra data.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrBarcodeTaken        = errors.New("barcode already exists")
	ErrCategoryInUse       = errors.New("category still has products")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("user account is inactive")

	// ErrInvoiceConflict is mapped by the store adapter from a unique-key
	// violation on invoice_number. CreateSale retries a bounded number of
	// times before surfacing it.
	ErrInvoiceConflict = errors.New("invoice number conflict")

	// ErrDuplicateRequest means another submission holds the idempotency
	// lock for the same operator+key and has not finished yet.
	ErrDuplicateRequest = errors.New("duplicate sale submission in flight")
)

// ValidationError rejects a malformed request before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %s not found", e.ProductID)
}

type ProductInactiveError struct {
	ProductID string
	Name      string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %s is not active", e.Name)
}

type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s. available: %d, requested: %d",
		e.Name, e.Available, e.Requested)
}

type InsufficientPaymentError struct {
	TotalCents int64
	PaidCents  int64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment. total: %d, paid: %d", e.TotalCents, e.PaidCents)
}
