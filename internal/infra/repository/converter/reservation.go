package converter

import (
	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReservationRow is the reservations table as scanned by pgx.RowToStructByName.
type ReservationRow struct {
	ID                      uuid.UUID          `db:"id"`
	SequenceNumber          int64              `db:"sequence_number"`
	ReservationDate         pgtype.Date        `db:"reservation_date"`
	Room                    string             `db:"room"`
	RequesterName           string             `db:"requester_name"`
	RequesterID             string             `db:"requester_id"`
	TimeStart               pgtype.Time        `db:"time_start"`
	TimeEnd                 pgtype.Time        `db:"time_end"`
	PersonCount             int32              `db:"person_count"`
	Purpose                 string             `db:"purpose"`
	Remark                  pgtype.Text        `db:"remark"`
	CleanlinessAcknowledged bool               `db:"cleanliness_acknowledged"`
	CreatedAt               pgtype.Timestamptz `db:"created_at"`
	UpdatedAt               pgtype.Timestamptz `db:"updated_at"`
}

// ReservationParams are the positional arguments shared by insert and update.
type ReservationParams struct {
	ReservationDate         pgtype.Date
	Room                    string
	RequesterName           string
	RequesterID             string
	TimeStart               pgtype.Time
	TimeEnd                 pgtype.Time
	PersonCount             int32
	Purpose                 string
	Remark                  pgtype.Text
	CleanlinessAcknowledged bool
}

func (p ReservationParams) Args() []any {
	return []any{
		p.ReservationDate,
		p.Room,
		p.RequesterName,
		p.RequesterID,
		p.TimeStart,
		p.TimeEnd,
		p.PersonCount,
		p.Purpose,
		p.Remark,
		p.CleanlinessAcknowledged,
	}
}

func DraftToParams(d reservation.Draft) ReservationParams {
	return ReservationParams{
		ReservationDate:         pgconv.DateToPgtype(d.Date.Time()),
		Room:                    d.Room,
		RequesterName:           d.RequesterName,
		RequesterID:             d.RequesterID,
		TimeStart:               pgconv.MinutesToPgtypeTime(int(d.Slot.Start)),
		TimeEnd:                 pgconv.MinutesToPgtypeTime(int(d.Slot.End)),
		PersonCount:             int32(d.PersonCount), // #nosec G115 -- bounded by request validation
		Purpose:                 d.Purpose,
		Remark:                  pgconv.StringToPgtype(d.Remark),
		CleanlinessAcknowledged: d.CleanlinessAcknowledged,
	}
}

func RowToDomain(row ReservationRow) *reservation.Reservation {
	draft := reservation.Draft{
		Date:          reservation.DateOf(pgconv.DateFromPgtype(row.ReservationDate)),
		Room:          row.Room,
		RequesterName: row.RequesterName,
		RequesterID:   row.RequesterID,
		Slot: reservation.Slot{
			Start: reservation.TimeOfDay(pgconv.MinutesFromPgtypeTime(row.TimeStart)),
			End:   reservation.TimeOfDay(pgconv.MinutesFromPgtypeTime(row.TimeEnd)),
		},
		PersonCount:             int(row.PersonCount),
		Purpose:                 row.Purpose,
		Remark:                  pgconv.StringFromPgtype(row.Remark),
		CleanlinessAcknowledged: row.CleanlinessAcknowledged,
	}
	return reservation.ReconstructReservation(
		row.ID,
		row.SequenceNumber,
		draft,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}
