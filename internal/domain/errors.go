package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Handlers wrap these so the dispatch boundary can decide whether an error
// is surfaced to the user as a reply, silently dropped, or only logged.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Command resolution.
	ErrUnknownCommand = errors.New("unknown command")
	ErrGuardRejected  = errors.New("guard rejected")
	ErrArgumentParse  = errors.New("argument parse error")

	// Verification workflow.
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrCodeMismatch        = errors.New("code mismatch")
	ErrAlreadyVerified     = errors.New("already verified")
	ErrMailTransient       = errors.New("mail delivery failed")
	ErrConfirmationTimeout = errors.New("confirmation timed out")
)
