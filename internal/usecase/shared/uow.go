package shared

import (
	"context"
	"time"

	"study-room-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: read-committed write transaction, no automatic retry
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for consistent multi-row reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, r ReservationReader) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	// Lock blocks until every key is held by this transaction, acquiring them in
	// argument order. Keys are released when the transaction ends.
	Lock(ctx context.Context, keys ...string) error
}

// ReservationFilter narrows Find. Zero-valued fields do not filter.
type ReservationFilter struct {
	Date        reservation.Date
	Room        string
	RequesterID string
	ExcludeID   uuid.UUID
	// After resumes strictly past a position in (date, start, sequence) order.
	After *ListPosition
	// Limit caps the result; zero means no cap.
	Limit int
}

// ListPosition is a keyset point in the list order.
type ListPosition struct {
	Date           reservation.Date
	Start          reservation.TimeOfDay
	SequenceNumber int64
}

func PositionOf(r *reservation.Reservation) ListPosition {
	return ListPosition{Date: r.Date(), Start: r.Slot().Start, SequenceNumber: r.SequenceNumber()}
}

type ReservationReader interface {
	Find(ctx context.Context, f ReservationFilter) ([]*reservation.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

type ReservationRepository interface {
	ReservationReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// Insert assigns id and sequence number.
	Insert(ctx context.Context, draft reservation.Draft, at time.Time) (*reservation.Reservation, error)
	Update(ctx context.Context, res *reservation.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}
