package service

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	ErrNoActiveShift          = errors.New("no active shift found, start a shift before processing sales")
	ErrShiftAlreadyOpen       = errors.New("shift already open")
	ErrHeldOrdersPending      = errors.New("held orders must be completed or voided before closing the shift")
	ErrEmptyCart              = errors.New("no items provided")
	ErrWholesaleMinimumNotMet = errors.New("wholesale minimum quantity not met")
	ErrAlreadyVoided          = errors.New("sale is already voided")
	ErrMissingVoidReason      = errors.New("void reason is required")
	ErrSaleNotFound           = errors.New("sale not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrCartNotFound           = errors.New("held order not found")
	ErrCartNotOwned           = errors.New("held order belongs to another cashier")
	ErrBatchNotFound          = errors.New("batch not found")
	ErrBatchAlreadyReceived   = errors.New("batch already received")
	ErrNegativeStock          = errors.New("adjustment would make stock negative")
)

// InsufficientStockError reports exactly which product could not be
// fulfilled so the caller can show available vs requested.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}
