package queries

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation.go -package=queriesmock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/clock"
	"study-room-booking/internal/pkg/errs"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ReservationView struct {
	ID                      uuid.UUID `json:"id"`
	SequenceNumber          int64     `json:"sequence_number"`
	Date                    string    `json:"date"`
	Room                    string    `json:"room"`
	RequesterName           string    `json:"requester_name"`
	RequesterID             string    `json:"requester_id"`
	RequesterLabel          string    `json:"requester_label"`
	TimeStart               string    `json:"time_start"`
	TimeEnd                 string    `json:"time_end"`
	PersonCount             int       `json:"person_count"`
	Purpose                 string    `json:"purpose"`
	Remark                  string    `json:"remark,omitempty"`
	CleanlinessAcknowledged bool      `json:"cleanliness_acknowledged"`
	Status                  string    `json:"status,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type SlotView struct {
	Start         string     `json:"start"`
	End           string     `json:"end"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
}

type AvailabilityView struct {
	Room   string     `json:"room"`
	Date   string     `json:"date"`
	Closed bool       `json:"closed"`
	Open   string     `json:"open,omitempty"`
	Close  string     `json:"close,omitempty"`
	Booked []SlotView `json:"booked"`
	Free   []SlotView `json:"free"`
}

type ListFilter struct {
	Date        string
	Room        string
	RequesterID string
}

type ReservationQueries interface {
	// List pages through reservations in (date, start, sequence) order. A nil
	// cursor starts at the first row; the returned cursor is nil on the last page.
	List(ctx context.Context, f ListFilter, cursor *Cursor, limit int) ([]*ReservationView, *Cursor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	Rooms(ctx context.Context) []string
	Availability(ctx context.Context, room, date string) (*AvailabilityView, error)
}

type reservationQueriesImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	rules  reservation.Rules
	policy shared.StorePolicy
	logger *slog.Logger
}

func NewReservationQueries(
	uow shared.UnitOfWork,
	clk clock.Clock,
	rules reservation.Rules,
	policy shared.StorePolicy,
	logger *slog.Logger,
) ReservationQueries {
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationQueriesImpl{uow: uow, clock: clk, rules: rules, policy: policy, logger: logger}
}

func (q *reservationQueriesImpl) List(ctx context.Context, f ListFilter, cursor *Cursor, limit int) ([]*ReservationView, *Cursor, error) {
	filter := shared.ReservationFilter{
		Room:        strings.TrimSpace(f.Room),
		RequesterID: strings.TrimSpace(f.RequesterID),
	}
	if d := strings.TrimSpace(f.Date); d != "" {
		date, err := reservation.ParseDate(d)
		if err != nil {
			return nil, nil, reservation.NewValidationError(reservation.ReasonInvalidDate, "date")
		}
		filter.Date = date
	}
	if cursor != nil && cursor.After != "" {
		pos, err := DecodeAfterCursor(cursor.After)
		if err != nil {
			return nil, nil, errs.Mark(errs.Wrap(err, "list reservations"), ErrInvalidCursor)
		}
		filter.After = &pos
	}
	limit = ValidateLimit(limit)
	filter.Limit = limit + 1

	var rows []*reservation.Reservation
	var next *Cursor
	var days map[string][]*reservation.Reservation
	err := q.read(ctx, func(ctx context.Context, r shared.ReservationReader) error {
		found, err := r.Find(ctx, filter)
		if err != nil {
			return err
		}
		if len(found) > limit {
			found = found[:limit]
			next = &Cursor{After: EncodeAfterCursor(shared.PositionOf(found[limit-1]))}
		}
		rows = found
		days, err = sameDay(ctx, r, rows)
		return err
	})
	if err != nil {
		return nil, nil, shared.StoreError(ctx, q.logger, "list reservations", err, filterAttrs(filter)...)
	}

	now := q.clock.Now()
	views := make([]*ReservationView, len(rows))
	for i, r := range rows {
		views[i] = q.viewAt(r, now, days[r.Date().String()])
	}
	return views, next, nil
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	var found *reservation.Reservation
	var days map[string][]*reservation.Reservation
	err := q.read(ctx, func(ctx context.Context, r shared.ReservationReader) error {
		res, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = res
		days, err = sameDay(ctx, r, []*reservation.Reservation{res})
		return err
	})
	if err != nil {
		return nil, shared.StoreError(ctx, q.logger, "get reservation", err, slog.String("reservation_id", id.String()))
	}
	return q.viewAt(found, q.clock.Now(), days[found.Date().String()]), nil
}

func (q *reservationQueriesImpl) Rooms(_ context.Context) []string {
	rooms := make([]string, len(q.rules.Rooms))
	copy(rooms, q.rules.Rooms)
	return rooms
}

func (q *reservationQueriesImpl) Availability(ctx context.Context, room, date string) (*AvailabilityView, error) {
	room = strings.TrimSpace(room)
	if !q.rules.HasRoom(room) {
		return nil, reservation.NewValidationError(reservation.ReasonUnknownRoom, "room")
	}
	d, err := reservation.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, reservation.NewValidationError(reservation.ReasonInvalidDate, "date")
	}

	view := &AvailabilityView{Room: room, Date: d.String(), Booked: []SlotView{}, Free: []SlotView{}}
	window := q.rules.WindowFor(d)
	if window.IsClosed() {
		view.Closed = true
		return view, nil
	}
	view.Open, view.Close = window.Open.String(), window.Close.String()

	rows, err := q.find(ctx, "room availability", shared.ReservationFilter{Room: room, Date: d})
	if err != nil {
		return nil, err
	}
	booked := make([]reservation.Slot, 0, len(rows))
	for _, r := range rows {
		id := r.ID()
		booked = append(booked, r.Slot())
		view.Booked = append(view.Booked, SlotView{Start: r.Slot().Start.String(), End: r.Slot().End.String(), ReservationID: &id})
	}
	for _, s := range reservation.FreeSlots(window, booked) {
		view.Free = append(view.Free, SlotView{Start: s.Start.String(), End: s.End.String()})
	}
	return view, nil
}

func (q *reservationQueriesImpl) find(ctx context.Context, op string, f shared.ReservationFilter) ([]*reservation.Reservation, error) {
	var rows []*reservation.Reservation
	err := q.read(ctx, func(ctx context.Context, r shared.ReservationReader) error {
		found, err := r.Find(ctx, f)
		rows = found
		return err
	})
	if err != nil {
		return nil, shared.StoreError(ctx, q.logger, op, err, filterAttrs(f)...)
	}
	return rows, nil
}

func (q *reservationQueriesImpl) read(ctx context.Context, fn func(ctx context.Context, r shared.ReservationReader) error) error {
	ctx, cancel := q.policy.Context(ctx)
	defer cancel()
	return q.uow.WithinReadOnly(ctx, fn)
}

func (q *reservationQueriesImpl) viewAt(r *reservation.Reservation, now time.Time, day []*reservation.Reservation) *ReservationView {
	view := ViewFromDomain(r)
	view.Status = r.StatusAt(now, q.rules, day).String()
	return view
}

// sameDay loads every reservation on the dates rows fall on.
func sameDay(ctx context.Context, r shared.ReservationReader, rows []*reservation.Reservation) (map[string][]*reservation.Reservation, error) {
	days := make(map[string][]*reservation.Reservation)
	for _, row := range rows {
		key := row.Date().String()
		if _, ok := days[key]; ok {
			continue
		}
		found, err := r.Find(ctx, shared.ReservationFilter{Date: row.Date()})
		if err != nil {
			return nil, err
		}
		days[key] = found
	}
	return days, nil
}

func filterAttrs(f shared.ReservationFilter) []slog.Attr {
	attrs := []slog.Attr{slog.String("room", f.Room)}
	if !f.Date.IsZero() {
		attrs = append(attrs, slog.String("date", f.Date.String()))
	}
	return attrs
}

func ViewFromDomain(r *reservation.Reservation) *ReservationView {
	if r == nil {
		return nil
	}
	return &ReservationView{
		ID:                      r.ID(),
		SequenceNumber:          r.SequenceNumber(),
		Date:                    r.Date().String(),
		Room:                    r.Room(),
		RequesterName:           r.RequesterName(),
		RequesterID:             r.RequesterID(),
		RequesterLabel:          r.RequesterLabel(),
		TimeStart:               r.Slot().Start.String(),
		TimeEnd:                 r.Slot().End.String(),
		PersonCount:             r.PersonCount(),
		Purpose:                 r.Purpose(),
		Remark:                  r.Remark(),
		CleanlinessAcknowledged: r.CleanlinessAcknowledged(),
		CreatedAt:               r.CreatedAt(),
		UpdatedAt:               r.UpdatedAt(),
	}
}
