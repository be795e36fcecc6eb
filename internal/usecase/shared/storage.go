package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/errs"
)

// StorePolicy bounds every call into the reservation store.
type StorePolicy struct {
	Timeout time.Duration
}

func (p StorePolicy) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// StoreError passes domain outcomes through unchanged and turns anything else
// into a logged StorageUnavailable error.
func StoreError(ctx context.Context, logger *slog.Logger, op string, err error, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	var verr *reservation.ValidationError
	var cerr *reservation.ConflictError
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr):
		return err
	case errs.IsAny(err, errs.ErrNotFound, errs.ErrIdempotencyInProgress):
		return err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logAttrs := append([]slog.Attr{
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.Bool("deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	}, attrs...)
	if logger.Enabled(ctx, slog.LevelDebug) {
		logAttrs = append(logAttrs, slog.Any("stack", errs.ExtractStackLines(err, 12)))
	}
	logger.LogAttrs(ctx, slog.LevelError, "reservation store unavailable", logAttrs...)

	return errs.Mark(errs.Wrap(err, op), errs.ErrStorageUnavailable)
}
