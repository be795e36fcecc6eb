package repository

import (
	"context"
	"time"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/infra"
	"study-room-booking/internal/infra/repository/converter"
	"study-room-booking/internal/pkg/pgconv"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `id, sequence_number, reservation_date, room, requester_name, requester_id,
	time_start, time_end, person_count, purpose, remark, cleanliness_acknowledged, created_at, updated_at`

const findReservations = `SELECT ` + reservationColumns + `
FROM reservations
WHERE ($1::date IS NULL OR reservation_date = $1::date)
  AND ($2::text = '' OR room = $2::text)
  AND ($3::text = '' OR requester_id = $3::text)
  AND ($4::uuid IS NULL OR id <> $4::uuid)
  AND ($5::date IS NULL OR (reservation_date, time_start, sequence_number) > ($5::date, $6::time, $7::bigint))
ORDER BY reservation_date, time_start, sequence_number
LIMIT NULLIF($8::integer, 0)`

const getReservationByID = `SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1`

const getReservationByIDForUpdate = getReservationByID + `
FOR UPDATE`

// sequence_number is derived inside the statement so it is computed against the
// same snapshot that the sequence lock protects.
const insertReservation = `INSERT INTO reservations (
	sequence_number, reservation_date, room, requester_name, requester_id,
	time_start, time_end, person_count, purpose, remark, cleanliness_acknowledged,
	created_at, updated_at
)
SELECT COALESCE(MAX(sequence_number), 0) + 1,
	$1::date, $2::text, $3::text, $4::text,
	$5::time, $6::time, $7::integer, $8::text, $9::text, $10::boolean,
	$11::timestamptz, $11::timestamptz
FROM reservations
RETURNING ` + reservationColumns

const updateReservation = `UPDATE reservations
SET reservation_date = $2::date,
	room = $3::text,
	requester_name = $4::text,
	requester_id = $5::text,
	time_start = $6::time,
	time_end = $7::time,
	person_count = $8::integer,
	purpose = $9::text,
	remark = $10::text,
	cleanliness_acknowledged = $11::boolean,
	updated_at = $12::timestamptz
WHERE id = $1`

const deleteReservation = `DELETE FROM reservations WHERE id = $1`

const advisoryXactLock = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

// SequenceLockKey serialises sequence number assignment across rooms.
const SequenceLockKey = "reservation|sequence"

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Find(ctx context.Context, f shared.ReservationFilter) ([]*reservation.Reservation, error) {
	date := pgtype.Date{}
	if !f.Date.IsZero() {
		date = pgconv.DateToPgtype(f.Date.Time())
	}
	exclude := pgtype.UUID{}
	if f.ExcludeID != uuid.Nil {
		exclude = pgtype.UUID{Bytes: f.ExcludeID, Valid: true}
	}

	afterDate, afterStart, afterSeq := pgtype.Date{}, pgtype.Time{}, int64(0)
	if f.After != nil {
		afterDate = pgconv.DateToPgtype(f.After.Date.Time())
		afterStart = pgconv.MinutesToPgtypeTime(int(f.After.Start))
		afterSeq = f.After.SequenceNumber
	}

	rows, err := r.db.Query(ctx, findReservations,
		date, f.Room, f.RequesterID, exclude, afterDate, afterStart, afterSeq, int32(f.Limit)) // #nosec G115 -- capped by ValidateLimit

	if err != nil {
		return nil, infra.ClassifyPgError("failed to find reservations", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ReservationRow])
	if err != nil {
		return nil, infra.ClassifyPgError("failed to scan reservations", err)
	}

	result := make([]*reservation.Reservation, len(found))
	for i, row := range found {
		result[i] = converter.RowToDomain(row)
	}
	return result, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.findOne(ctx, getReservationByID, id)
}

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.findOne(ctx, getReservationByIDForUpdate, id)
}

func (r *ReservationRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, infra.ClassifyPgError("failed to find reservation by ID", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[converter.ReservationRow])
	if err != nil {
		return nil, infra.ClassifyPgError("reservation "+id.String(), err)
	}
	return converter.RowToDomain(row), nil
}

func (r *ReservationRepository) Insert(ctx context.Context, draft reservation.Draft, at time.Time) (*reservation.Reservation, error) {
	if err := r.Lock(ctx, SequenceLockKey); err != nil {
		return nil, err
	}

	args := append(converter.DraftToParams(draft).Args(), pgconv.TimeToPgtype(at))
	rows, err := r.db.Query(ctx, insertReservation, args...)
	if err != nil {
		return nil, infra.ClassifyPgError("failed to create reservation", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[converter.ReservationRow])
	if err != nil {
		return nil, infra.ClassifyPgError("failed to create reservation", err)
	}
	return converter.RowToDomain(row), nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	args := append([]any{res.ID()}, converter.DraftToParams(res.Draft()).Args()...)
	args = append(args, pgconv.TimeToPgtype(res.UpdatedAt()))

	tag, err := r.db.Exec(ctx, updateReservation, args...)
	if err != nil {
		return infra.ClassifyPgError("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "reservation "+res.ID().String()+" not found", nil)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteReservation, id)
	if err != nil {
		return infra.ClassifyPgError("failed to delete reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "reservation "+id.String()+" not found", nil)
	}
	return nil
}

// Lock takes transaction-scoped advisory locks in the order given. Outside a
// transaction the lock would be released immediately, so callers pass a pgx.Tx.
func (r *ReservationRepository) Lock(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := r.db.Exec(ctx, advisoryXactLock, key); err != nil {
			return infra.ClassifyPgError("failed to acquire lock "+key, err)
		}
	}
	return nil
}
