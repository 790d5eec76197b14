package services

import "errors"

// Stable reason strings for every precondition the engine can reject on.
// Client software branches on these, so the text must not drift.
var (
	// not-found
	ErrInvalidEvent      = errors.New("invalid distribution event")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidCollection = errors.New("invalid collection")

	// authorization
	ErrOnlyAthlete    = errors.New("only athlete")
	ErrOnlyTokenOwner = errors.New("only token owner")

	// compliance
	ErrNotIdentVerified = errors.New("not ID verified")
	ErrNotKYCVerified   = errors.New("not KYC verified")

	// state-conflict
	ErrAlreadyPaidIn    = errors.New("amount already paid in")
	ErrAlreadyClosed    = errors.New("distribution already closed")
	ErrEventNotOpen     = errors.New("distribution event not open")
	ErrNotPaidIn        = errors.New("total distribution amount has not been paid in")
	ErrTokenNotAllowed  = errors.New("token not allowed")
	ErrSnapshotAfterPay = errors.New("snapshot locked after pay in")

	// window
	ErrOutsideWindow = errors.New("distribution time has not started or has ended")

	// bounds
	ErrInvalidAddress     = errors.New("invalid address")
	ErrFeeOutOfRange      = errors.New("fee out of range")
	ErrEarningsOutOfRange = errors.New("earnings amount out of range")
	ErrInvalidTimeWindow  = errors.New("invalid time window")
	ErrBatchShape         = errors.New("token and event lists must have the same length")
	ErrBatchTooLarge      = errors.New("batch exceeds 100 claims")
	ErrNoEarnings         = errors.New("token has no earnings")

	// arithmetic-guard
	ErrAmountZero      = errors.New("amount to pay is 0")
	ErrBelowPaidIn     = errors.New("total payout must not fall below amount already paid in")
	ErrAmountNegative  = errors.New("amount must be greater than zero")
	ErrInsufficient    = errors.New("insufficient balance")
	ErrAllowanceLow    = errors.New("insufficient allowance")
	ErrCollectionFull  = errors.New("collection sold out")
	ErrNotMintable     = errors.New("collection is not mintable")
	ErrNoAllocation    = errors.New("no allowlist allocation")
	ErrVersionExceeded = errors.New("token version limit reached")
)
