package commands

import (
	"context"

	"study-room-booking/internal/domain/reservation"
	"study-room-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

func checkRoomConflict(ctx context.Context, r shared.ReservationReader, room string, date reservation.Date, slot reservation.Slot, excludeID uuid.UUID) error {
	existing, err := r.Find(ctx, shared.ReservationFilter{Date: date, Room: room, ExcludeID: excludeID})
	if err != nil {
		return err
	}
	if hit := reservation.FirstOverlap(existing, slot, excludeID); hit != nil {
		return &reservation.ConflictError{Kind: reservation.ConflictRoom, ConflictingID: hit.ID(), Slot: hit.Slot()}
	}
	return nil
}

func checkUserConflict(ctx context.Context, r shared.ReservationReader, requesterID string, date reservation.Date, slot reservation.Slot, excludeID uuid.UUID) error {
	existing, err := r.Find(ctx, shared.ReservationFilter{Date: date, RequesterID: requesterID, ExcludeID: excludeID})
	if err != nil {
		return err
	}
	if hit := reservation.FirstOverlap(existing, slot, excludeID); hit != nil {
		return &reservation.ConflictError{Kind: reservation.ConflictUser, ConflictingID: hit.ID(), Slot: hit.Slot()}
	}
	return nil
}

// checkConflicts runs the room check before the requester check.
func checkConflicts(ctx context.Context, r shared.ReservationReader, d reservation.Draft, excludeID uuid.UUID) error {
	if err := checkRoomConflict(ctx, r, d.Room, d.Date, d.Slot, excludeID); err != nil {
		return err
	}
	return checkUserConflict(ctx, r, d.RequesterID, d.Date, d.Slot, excludeID)
}
