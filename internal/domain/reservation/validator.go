package reservation

import (
	"strings"
	"time"
)

// Candidate is an unvalidated reservation request. Fields stay as received so the
// validator can report format problems itself.
type Candidate struct {
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
}

// Draft is a Candidate that passed every rule.
type Draft struct {
	Date                    Date
	Room                    string
	RequesterName           string
	RequesterID             string
	Slot                    Slot
	PersonCount             int
	Purpose                 string
	Remark                  string
	CleanlinessAcknowledged bool
}

type ValidateOptions struct {
	// SkipAdvanceNotice is set when re-validating an existing reservation.
	SkipAdvanceNotice bool
}

// Validate checks c against rules in a fixed order and returns the first failure.
func Validate(c Candidate, now time.Time, rules Rules, opts ValidateOptions) (Draft, error) {
	if field := firstMissing(c); field != "" {
		return Draft{}, NewValidationError(ReasonMissingField, field)
	}
	room := strings.TrimSpace(c.Room)
	if !rules.HasRoom(room) {
		return Draft{}, NewValidationError(ReasonUnknownRoom, "room")
	}

	date, err := ParseDate(strings.TrimSpace(c.Date))
	if err != nil {
		return Draft{}, NewValidationError(ReasonInvalidDate, "date")
	}
	if rules.IsClosed(date) {
		return Draft{}, NewValidationError(ReasonClosedDay, "date")
	}

	today := rules.Today(now)
	diff := date.DaysSince(today)
	if !opts.SkipAdvanceNotice && diff > 0 && diff < rules.MinAdvanceDays {
		return Draft{}, NewValidationError(ReasonInsufficientAdvanceNotice, "date")
	}
	if diff < 0 {
		return Draft{}, NewValidationError(ReasonPastDate, "date")
	}

	if *c.PersonCount < rules.MinPersons {
		return Draft{}, NewValidationError(ReasonBelowMinimumPersons, "personCount")
	}
	if !c.CleanlinessAcknowledged {
		return Draft{}, NewValidationError(ReasonAcknowledgementRequired, "cleanlinessAcknowledged")
	}

	start, err := ParseTimeOfDay(c.TimeStart)
	if err != nil {
		return Draft{}, NewValidationError(ReasonInvalidTimeFormat, "timeStart")
	}
	end, err := ParseTimeOfDay(c.TimeEnd)
	if err != nil {
		return Draft{}, NewValidationError(ReasonInvalidTimeFormat, "timeEnd")
	}
	slot := Slot{Start: start, End: end}

	window := rules.WindowFor(date)
	if window.IsClosed() ||
		start < window.Open || start > window.Close ||
		end < window.Open || end > window.Close {
		return Draft{}, NewValidationError(ReasonOutsideOperatingHours, "timeStart")
	}
	if end <= start {
		return Draft{}, NewValidationError(ReasonEndBeforeStart, "timeEnd")
	}
	if slot.Duration() > rules.MaxDuration {
		return Draft{}, NewValidationError(ReasonDurationExceeded, "timeEnd")
	}

	return Draft{
		Date:                    date,
		Room:                    room,
		RequesterName:           strings.TrimSpace(c.RequesterName),
		RequesterID:             strings.TrimSpace(c.RequesterID),
		Slot:                    slot,
		PersonCount:             *c.PersonCount,
		Purpose:                 strings.TrimSpace(c.Purpose),
		Remark:                  strings.TrimSpace(c.Remark),
		CleanlinessAcknowledged: c.CleanlinessAcknowledged,
	}, nil
}

func firstMissing(c Candidate) string {
	switch {
	case blank(c.Date):
		return "date"
	case blank(c.TimeStart):
		return "timeStart"
	case blank(c.TimeEnd):
		return "timeEnd"
	case c.PersonCount == nil:
		return "personCount"
	case blank(c.RequesterName):
		return "requesterName"
	case blank(c.RequesterID):
		return "requesterId"
	case blank(c.Room):
		return "room"
	}
	return ""
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
