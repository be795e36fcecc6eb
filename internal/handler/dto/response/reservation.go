package response

import (
	"time"

	"study-room-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID                      uuid.UUID `json:"id"`
	SequenceNumber          int64     `json:"sequenceNumber"`
	Date                    string    `json:"date"`
	Room                    string    `json:"room"`
	RequesterName           string    `json:"requesterName"`
	RequesterID             string    `json:"requesterId"`
	RequesterLabel          string    `json:"requesterLabel"`
	TimeStart               string    `json:"timeStart"`
	TimeEnd                 string    `json:"timeEnd"`
	PersonCount             int       `json:"personCount"`
	Purpose                 string    `json:"purpose"`
	Remark                  string    `json:"remark,omitempty"`
	CleanlinessAcknowledged bool      `json:"cleanlinessAcknowledged"`
	Status                  string    `json:"status,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type ReservationListResponse struct {
	Reservations []*ReservationResponse `json:"reservations"`
	NextCursor   string                 `json:"nextCursor,omitempty"`
}

type SlotResponse struct {
	Start         string     `json:"start"`
	End           string     `json:"end"`
	ReservationID *uuid.UUID `json:"reservationId,omitempty"`
}

type AvailabilityResponse struct {
	Room   string         `json:"room"`
	Date   string         `json:"date"`
	Closed bool           `json:"closed"`
	Open   string         `json:"open,omitempty"`
	Close  string         `json:"close,omitempty"`
	Booked []SlotResponse `json:"booked"`
	Free   []SlotResponse `json:"free"`
}

type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// field names mirror the read model, so copier maps them one to one
func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	var resp ReservationResponse
	if err := copier.Copy(&resp, v); err != nil {
		return &ReservationResponse{ID: v.ID}
	}
	return &resp
}

func FromReservationViews(vs []*queries.ReservationView) []*ReservationResponse {
	out := make([]*ReservationResponse, len(vs))
	for i, v := range vs {
		out[i] = FromReservationView(v)
	}
	return out
}

func FromReservationPage(vs []*queries.ReservationView, next *queries.Cursor) *ReservationListResponse {
	resp := &ReservationListResponse{Reservations: FromReservationViews(vs)}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		Room:   v.Room,
		Date:   v.Date,
		Closed: v.Closed,
		Open:   v.Open,
		Close:  v.Close,
		Booked: make([]SlotResponse, 0, len(v.Booked)),
		Free:   make([]SlotResponse, 0, len(v.Free)),
	}
	_ = copier.Copy(&resp.Booked, &v.Booked)
	_ = copier.Copy(&resp.Free, &v.Free)
	return resp
}
