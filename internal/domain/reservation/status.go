package reservation

import "time"

// Status is the display state of a reservation at a given instant.
type Status string

const (
	// StatusActive: the slot has not ended yet.
	StatusActive Status = "Active"
	// StatusExtendable: the slot ended today and the default extension would be admitted.
	StatusExtendable Status = "Extendable"
	// StatusExpired: the slot ended and can no longer be extended.
	StatusExpired Status = "Expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExtendable, StatusExpired:
		return true
	default:
		return false
	}
}

// ExtensionSlot returns the time an extension by increment would add after the
// current end. It fails with TooEarlyToExtend before the slot ends and with
// ClosingTimeExceeded when the new end passes the day's closing time.
func (r *Reservation) ExtensionSlot(now time.Time, rules Rules, increment time.Duration) (Slot, error) {
	if !r.HasEnded(now, rules) {
		return Slot{}, NewValidationError(ReasonTooEarlyToExtend, "timeEnd")
	}
	window := rules.WindowFor(r.date)
	end := r.slot.End.Add(increment)
	if window.IsClosed() || !end.Valid() || end > window.Close {
		return Slot{}, NewValidationError(ReasonClosingTimeExceeded, "timeEnd")
	}
	return Slot{Start: r.slot.End, End: end}, nil
}

// StatusAt derives the status at now. sameDay holds the other reservations on
// the reservation's date in any room; they decide whether an extension is free.
func (r *Reservation) StatusAt(now time.Time, rules Rules, sameDay []*Reservation) Status {
	if !r.HasEnded(now, rules) {
		return StatusActive
	}
	if r.date.Before(rules.Today(now)) {
		return StatusExpired
	}
	addition, err := r.ExtensionSlot(now, rules, rules.ExtensionIncrement)
	if err != nil {
		return StatusExpired
	}
	for _, o := range sameDay {
		if o.id == r.id || !o.date.Equal(r.date) {
			continue
		}
		if (o.room == r.room || o.requesterID == r.requesterID) && o.slot.Overlaps(addition) {
			return StatusExpired
		}
	}
	return StatusExtendable
}
