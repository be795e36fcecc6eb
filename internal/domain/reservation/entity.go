package reservation

import (
	"time"

	"github.com/google/uuid"
)

type Reservation struct {
	id                      uuid.UUID
	sequenceNumber          int64
	date                    Date
	room                    string
	requesterName           string
	requesterID             string
	slot                    Slot
	personCount             int
	purpose                 string
	remark                  string
	cleanlinessAcknowledged bool
	createdAt               time.Time
	updatedAt               time.Time
}

func ReconstructReservation(
	id uuid.UUID,
	sequenceNumber int64,
	draft Draft,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                      id,
		sequenceNumber:          sequenceNumber,
		date:                    draft.Date,
		room:                    draft.Room,
		requesterName:           draft.RequesterName,
		requesterID:             draft.RequesterID,
		slot:                    draft.Slot,
		personCount:             draft.PersonCount,
		purpose:                 draft.Purpose,
		remark:                  draft.Remark,
		cleanlinessAcknowledged: draft.CleanlinessAcknowledged,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
	}
}

// HasEnded reports whether the slot's end instant in the facility time zone is not after now.
func (r *Reservation) HasEnded(now time.Time, rules Rules) bool {
	return !now.Before(rules.InstantOf(r.date, r.slot.End))
}

// Draft returns the reservation's fields in the form Validate produces, for patching.
func (r *Reservation) Draft() Draft {
	return Draft{
		Date:                    r.date,
		Room:                    r.room,
		RequesterName:           r.requesterName,
		RequesterID:             r.requesterID,
		Slot:                    r.slot,
		PersonCount:             r.personCount,
		Purpose:                 r.purpose,
		Remark:                  r.remark,
		CleanlinessAcknowledged: r.cleanlinessAcknowledged,
	}
}

// Candidate renders the reservation back into request form.
func (r *Reservation) Candidate() Candidate {
	count := r.personCount
	return Candidate{
		Date:                    r.date.String(),
		Room:                    r.room,
		RequesterName:           r.requesterName,
		RequesterID:             r.requesterID,
		TimeStart:               r.slot.Start.String(),
		TimeEnd:                 r.slot.End.String(),
		PersonCount:             &count,
		Purpose:                 r.purpose,
		Remark:                  r.remark,
		CleanlinessAcknowledged: r.cleanlinessAcknowledged,
	}
}

func (r *Reservation) WithEnd(end TimeOfDay, at time.Time) *Reservation {
	cp := *r
	cp.slot.End = end
	cp.updatedAt = at
	return &cp
}

// RequesterLabel is the display form "<name>-<id>".
func (r *Reservation) RequesterLabel() string {
	return r.requesterName + "-" + r.requesterID
}

func (r *Reservation) ID() uuid.UUID                 { return r.id }
func (r *Reservation) SequenceNumber() int64         { return r.sequenceNumber }
func (r *Reservation) Date() Date                    { return r.date }
func (r *Reservation) Room() string                  { return r.room }
func (r *Reservation) RequesterName() string         { return r.requesterName }
func (r *Reservation) RequesterID() string           { return r.requesterID }
func (r *Reservation) Slot() Slot                    { return r.slot }
func (r *Reservation) PersonCount() int              { return r.personCount }
func (r *Reservation) Purpose() string               { return r.purpose }
func (r *Reservation) Remark() string                { return r.remark }
func (r *Reservation) CleanlinessAcknowledged() bool { return r.cleanlinessAcknowledged }
func (r *Reservation) CreatedAt() time.Time          { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time          { return r.updatedAt }
