package commands

import (
	"fmt"

	"farelock/internal/pkg/errs"
)

var (
	ErrValidation        = errs.New("validation failed")
	ErrSnapshotNotFound  = errs.New("price snapshot not found")
	ErrSnapshotExpired   = errs.New("price snapshot expired")
	ErrReviewConflict    = errs.New("snapshot reviewed under another booking")
	ErrSupplierRejected  = errs.New("supplier rejected the request")
	ErrBookingNotFound   = errs.New("booking not found")
	ErrPaymentRequired   = errs.New("no captured payment for booking")
	ErrSignatureInvalid  = errs.New("payment signature invalid")
	ErrPaymentConflict   = errs.New("payment already settled differently")
	ErrConfirmInProgress = errs.New("confirm already in progress")
	ErrTicketingTimeout  = errs.New("ticketing did not complete in time")
	ErrSeatUnavailable   = errs.New("selected seat unavailable")
	ErrRefundFailed      = errs.New("compensating refund failed")
)

// CompensationError wraps a confirm failure that happened after payment
// capture. Refunded reports whether the compensating refund went through;
// when it did not, the cause additionally carries ErrRefundFailed and the
// payment needs manual follow-up.
type CompensationError struct {
	Refunded bool
	RefundID string
	Cause    error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("confirm failed (refunded=%t): %v", e.Refunded, e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}
