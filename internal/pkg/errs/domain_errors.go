package errs

import "errors"

// Category markers. Concrete errors are matched with errors.Is regardless of wrapping.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("reservation conflict")
	ErrNotFound           = errors.New("reservation not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrIdempotencyInProgress  = errors.New("idempotent request in progress")
	ErrIdempotencyKeyMismatch = errors.New("idempotency key reused with a different request")
)
