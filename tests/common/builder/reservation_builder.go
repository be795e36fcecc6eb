//go:build unit || e2e

package builder

import (
	"time"

	"study-room-booking/internal/domain/reservation"
	reqdto "study-room-booking/internal/handler/dto/request"
	"study-room-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ID                      uuid.UUID
	SequenceNumber          int64
	Date                    string
	Room                    string
	RequesterName           string
	RequesterID             string
	TimeStart               string
	TimeEnd                 string
	PersonCount             *int
	Purpose                 string
	Remark                  string
	CleanlinessAcknowledged bool
	CreatedAt               time.Time
}

// NewReservationBuilder defaults to a valid Monday booking for room 1.
func NewReservationBuilder() *ReservationBuilder {
	persons := 3
	return &ReservationBuilder{
		ID:                      uuid.New(),
		SequenceNumber:          1,
		Date:                    "2030-01-07",
		Room:                    "1",
		RequesterName:           "Alice",
		RequesterID:             "S001",
		TimeStart:               "09:00",
		TimeEnd:                 "11:00",
		PersonCount:             &persons,
		Purpose:                 "Group study",
		CleanlinessAcknowledged: true,
		CreatedAt:               time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(r)
	return r
}

func (r *ReservationBuilder) WithDate(date string) *ReservationBuilder {
	r.Date = date
	return r
}

func (r *ReservationBuilder) WithRoom(room string) *ReservationBuilder {
	r.Room = room
	return r
}

func (r *ReservationBuilder) WithRequester(name, id string) *ReservationBuilder {
	r.RequesterName = name
	r.RequesterID = id
	return r
}

func (r *ReservationBuilder) WithSlot(start, end string) *ReservationBuilder {
	r.TimeStart = start
	r.TimeEnd = end
	return r
}

func (r *ReservationBuilder) WithPersonCount(n int) *ReservationBuilder {
	r.PersonCount = &n
	return r
}

// Build methods
func (r *ReservationBuilder) BuildCandidate() reservation.Candidate {
	return reservation.Candidate{
		Date:                    r.Date,
		Room:                    r.Room,
		RequesterName:           r.RequesterName,
		RequesterID:             r.RequesterID,
		TimeStart:               r.TimeStart,
		TimeEnd:                 r.TimeEnd,
		PersonCount:             r.PersonCount,
		Purpose:                 r.Purpose,
		Remark:                  r.Remark,
		CleanlinessAcknowledged: r.CleanlinessAcknowledged,
	}
}

// BuildDraft panics on malformed builder values; tests only use it with valid ones.
func (r *ReservationBuilder) BuildDraft() reservation.Draft {
	date, err := reservation.ParseDate(r.Date)
	if err != nil {
		panic(err)
	}
	start, err := reservation.ParseTimeOfDay(r.TimeStart)
	if err != nil {
		panic(err)
	}
	end, err := reservation.ParseTimeOfDay(r.TimeEnd)
	if err != nil {
		panic(err)
	}
	persons := 0
	if r.PersonCount != nil {
		persons = *r.PersonCount
	}
	return reservation.Draft{
		Date:                    date,
		Room:                    r.Room,
		RequesterName:           r.RequesterName,
		RequesterID:             r.RequesterID,
		Slot:                    reservation.Slot{Start: start, End: end},
		PersonCount:             persons,
		Purpose:                 r.Purpose,
		Remark:                  r.Remark,
		CleanlinessAcknowledged: r.CleanlinessAcknowledged,
	}
}

func (r *ReservationBuilder) BuildDomain() *reservation.Reservation {
	return reservation.ReconstructReservation(r.ID, r.SequenceNumber, r.BuildDraft(), r.CreatedAt, r.CreatedAt)
}

func (r *ReservationBuilder) BuildView() *queries.ReservationView {
	return queries.ViewFromDomain(r.BuildDomain())
}

func (r *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		Date:                    r.Date,
		Room:                    r.Room,
		RequesterName:           r.RequesterName,
		RequesterID:             r.RequesterID,
		TimeStart:               r.TimeStart,
		TimeEnd:                 r.TimeEnd,
		PersonCount:             r.PersonCount,
		Purpose:                 r.Purpose,
		Remark:                  r.Remark,
		CleanlinessAcknowledged: r.CleanlinessAcknowledged,
	}
}
