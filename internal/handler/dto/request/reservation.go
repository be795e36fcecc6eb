package request

import (
	"strings"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/usecase/commands"
	"study-room-booking/internal/usecase/queries"
)

// Required-ness is decided by the domain validator so a missing field surfaces as
// MissingField instead of a binding error.
type CreateReservationRequest struct {
	Date                    string `json:"date"`
	Room                    string `json:"room"`
	RequesterName           string `json:"requesterName"`
	RequesterID             string `json:"requesterId"`
	TimeStart               string `json:"timeStart"`
	TimeEnd                 string `json:"timeEnd"`
	PersonCount             *int   `json:"personCount"`
	Purpose                 string `json:"purpose"`
	Remark                  string `json:"remark,omitempty"`
	CleanlinessAcknowledged bool   `json:"cleanlinessAcknowledged"`
}

func (r CreateReservationRequest) ToCandidate() reservation.Candidate {
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

type UpdateReservationRequest struct {
	Date                    *string `json:"date"`
	Room                    *string `json:"room"`
	RequesterName           *string `json:"requesterName"`
	RequesterID             *string `json:"requesterId"`
	TimeStart               *string `json:"timeStart"`
	TimeEnd                 *string `json:"timeEnd"`
	PersonCount             *int    `json:"personCount"`
	Purpose                 *string `json:"purpose"`
	Remark                  *string `json:"remark"`
	CleanlinessAcknowledged *bool   `json:"cleanlinessAcknowledged"`
}

func (r UpdateReservationRequest) ToPatch() commands.UpdatePatch {
	return commands.UpdatePatch{
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

// ExtendReservationRequest is optional; a zero IncrementHours uses the configured increment.
type ExtendReservationRequest struct {
	IncrementHours int `json:"incrementHours" binding:"omitempty,min=1,max=24"`
}

type ListReservationsQuery struct {
	Date        string `form:"date"`
	Room        string `form:"room"`
	RequesterID string `form:"requesterId"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=200"`
	After       string `form:"after"`
}

func (q ListReservationsQuery) Trimmed() ListReservationsQuery {
	return ListReservationsQuery{
		Date:        strings.TrimSpace(q.Date),
		Room:        strings.TrimSpace(q.Room),
		RequesterID: strings.TrimSpace(q.RequesterID),
		Limit:       q.Limit,
		After:       strings.TrimSpace(q.After),
	}
}

func (q ListReservationsQuery) ToFilter() queries.ListFilter {
	return queries.ListFilter{Date: q.Date, Room: q.Room, RequesterID: q.RequesterID}
}

// ToCursor returns nil for the first page.
func (q ListReservationsQuery) ToCursor() *queries.Cursor {
	if q.After == "" {
		return nil
	}
	return &queries.Cursor{After: q.After}
}
