package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// NoopStore is used when no Redis address is configured. Every request is treated as new.
type NoopStore struct{}

func (NoopStore) Begin(context.Context, string, string) (uuid.UUID, error)  { return uuid.Nil, nil }
func (NoopStore) Complete(context.Context, string, string, uuid.UUID) error { return nil }
func (NoopStore) Release(context.Context, string) error                     { return nil }
