package commands

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/commands/ports.go -package=commandsmock

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyStore remembers which reservation a create request produced so a
// retried request is answered with the same record. The fingerprint identifies
// the request body the key was first used with.
type IdempotencyStore interface {
	// Begin claims key. A non-nil id means an earlier request with this key already
	// completed; uuid.Nil means the caller now owns the key. A key still being
	// processed yields errs.ErrIdempotencyInProgress, and a key first used with a
	// different fingerprint yields errs.ErrIdempotencyKeyMismatch.
	Begin(ctx context.Context, key, fingerprint string) (uuid.UUID, error)
	Complete(ctx context.Context, key, fingerprint string, reservationID uuid.UUID) error
	Release(ctx context.Context, key string) error
}
