package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrStoreUnavailable   = errors.New("storage unavailable")

	// Identifier issuance
	ErrInvalidScope = errors.New("unknown hierarchy scope")

	// Verification
	ErrAlreadyVerified = errors.New("registrant already verified")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrTooManyRequests = errors.New("too many code requests")

	// Approval
	ErrNotEligible       = errors.New("registrant not eligible for approval")
	ErrOutOfJurisdiction = errors.New("approver jurisdiction does not cover registrant")
	ErrAlreadyDecided    = errors.New("approval already decided")

	// Payments
	ErrInvalidSignature = errors.New("webhook signature invalid")
	ErrUnknownPurpose   = errors.New("unknown payment purpose")
	ErrLockHeld         = errors.New("resource lock held")
)
