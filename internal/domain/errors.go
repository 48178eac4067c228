package domain

import (
	"errors"
	"fmt"
)

// Rejection taxonomy. Every shop operation either commits fully or fails with
// one of these causes and zero state change. Callers branch with errors.Is.
var (
	// ErrAccessDenied is returned when a privileged operation is invoked by
	// anyone other than the owner.
	ErrAccessDenied = errors.New("caller is not the owner")

	// ErrAssetOutOfRange is returned when an asset id is outside [0, N).
	ErrAssetOutOfRange = errors.New("asset id out of range")

	// ErrZeroAmount is returned when an amount argument is not strictly positive.
	ErrZeroAmount = errors.New("amount must be positive")

	// ErrLengthMismatch is returned when a batch's ids and amounts differ in length.
	ErrLengthMismatch = errors.New("ids and amounts length mismatch")

	// ErrInsufficientPayment is returned when the offered payment does not
	// cover the aggregate buy price.
	ErrInsufficientPayment = errors.New("not enough payment")

	// ErrInsufficientInventory is returned when the shop does not hold enough
	// of the requested asset.
	ErrInsufficientInventory = errors.New("shop does not have enough assets")

	// ErrInsufficientSellerBalance is returned when a seller offers more than
	// they hold.
	ErrInsufficientSellerBalance = errors.New("seller does not have enough assets")

	// ErrApprovalRequired is returned when the shop is not an approved
	// operator for the seller's ledger account.
	ErrApprovalRequired = errors.New("shop is not an operator for seller")

	// ErrInsufficientShopFunds is returned when the treasury cannot cover a
	// sell payout.
	ErrInsufficientShopFunds = errors.New("shop does not have enough funds")

	// ErrTransferFailed is returned when a native currency movement is
	// rejected by the currency book.
	ErrTransferFailed = errors.New("native transfer failed")
)

// OpError annotates a rejection with the operation that produced it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Reject wraps a taxonomy error with operation context.
func Reject(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
