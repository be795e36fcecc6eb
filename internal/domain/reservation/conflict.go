package reservation

import "github.com/google/uuid"

// FirstOverlap returns the first reservation in existing whose slot overlaps slot,
// skipping excludeID. Callers pass reservations already narrowed to one room or
// one requester on one date.
func FirstOverlap(existing []*Reservation, slot Slot, excludeID uuid.UUID) *Reservation {
	for _, r := range existing {
		if excludeID != uuid.Nil && r.ID() == excludeID {
			continue
		}
		if r.Slot().Overlaps(slot) {
			return r
		}
	}
	return nil
}
