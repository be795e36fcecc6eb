package reservation

import (
	"slices"
	"sort"
	"time"
)

// Window is a day's operating hours. A window whose Close is not after Open is closed all day.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

func (w Window) IsClosed() bool { return w.Close <= w.Open }

func (w Window) Contains(s Slot) bool {
	return !w.IsClosed() && w.Open <= s.Start && s.End <= w.Close
}

type Rules struct {
	Rooms              []string
	ClosedWeekday      time.Weekday
	WeekdayHours       Window
	WeekendHours       Window
	MinPersons         int
	MaxDuration        time.Duration
	ExtensionIncrement time.Duration
	MinAdvanceDays     int
	Location           *time.Location
}

func DefaultRules() Rules {
	return Rules{
		Rooms:              []string{"1", "2", "3", "4"},
		ClosedWeekday:      time.Sunday,
		WeekdayHours:       Window{Open: NewTimeOfDay(8, 0), Close: NewTimeOfDay(18, 0)},
		WeekendHours:       Window{Open: NewTimeOfDay(9, 0), Close: NewTimeOfDay(15, 0)},
		MinPersons:         2,
		MaxDuration:        2 * time.Hour,
		ExtensionIncrement: 2 * time.Hour,
		MinAdvanceDays:     1,
		Location:           time.Local,
	}
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func (r Rules) IsClosed(d Date) bool {
	return d.Weekday() == r.ClosedWeekday
}

// WindowFor returns the operating window for d; the closed day gets the zero Window.
func (r Rules) WindowFor(d Date) Window {
	if r.IsClosed(d) {
		return Window{}
	}
	if d.IsWeekend() {
		return r.WeekendHours
	}
	return r.WeekdayHours
}

func (r Rules) HasRoom(room string) bool {
	return slices.Contains(r.Rooms, room)
}

// Today is the facility's civil date at now.
func (r Rules) Today(now time.Time) Date {
	return DateOf(now.In(r.location()))
}

// InstantOf places tod on d in the facility time zone.
func (r Rules) InstantOf(d Date, tod TimeOfDay) time.Time {
	return d.At(tod, r.location())
}

// FreeSlots returns the gaps in w not covered by booked.
func FreeSlots(w Window, booked []Slot) []Slot {
	if w.IsClosed() {
		return nil
	}
	sorted := slices.Clone(booked)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var free []Slot
	cursor := w.Open
	for _, b := range sorted {
		if b.End <= cursor {
			continue
		}
		if b.Start > cursor {
			end := min(b.Start, w.Close)
			if end > cursor {
				free = append(free, Slot{Start: cursor, End: end})
			}
		}
		cursor = max(cursor, b.End)
		if cursor >= w.Close {
			return free
		}
	}
	if cursor < w.Close {
		free = append(free, Slot{Start: cursor, End: w.Close})
	}
	return free
}
