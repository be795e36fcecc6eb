package reservation

import (
	"fmt"

	"study-room-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonMissingField              Reason = "MissingField"
	ReasonUnknownRoom               Reason = "UnknownRoom"
	ReasonInvalidDate               Reason = "InvalidDate"
	ReasonClosedDay                 Reason = "ClosedDay"
	ReasonInsufficientAdvanceNotice Reason = "InsufficientAdvanceNotice"
	ReasonPastDate                  Reason = "PastDate"
	ReasonBelowMinimumPersons       Reason = "BelowMinimumPersons"
	ReasonAcknowledgementRequired   Reason = "AcknowledgementRequired"
	ReasonInvalidTimeFormat         Reason = "InvalidTimeFormat"
	ReasonOutsideOperatingHours     Reason = "OutsideOperatingHours"
	ReasonEndBeforeStart            Reason = "EndBeforeStart"
	ReasonDurationExceeded          Reason = "DurationExceeded"
	ReasonTooEarlyToExtend          Reason = "TooEarlyToExtend"
	ReasonClosingTimeExceeded       Reason = "ClosingTimeExceeded"
)

var reasonMessages = map[Reason]string{
	ReasonMissingField:              "Please fill in all required fields.",
	ReasonUnknownRoom:               "The selected room does not exist.",
	ReasonInvalidDate:               "Please enter a valid date (YYYY-MM-DD).",
	ReasonClosedDay:                 "The library is closed on the selected day.",
	ReasonInsufficientAdvanceNotice: "Reservations must be made at least one day in advance.",
	ReasonPastDate:                  "Reservations must be for today or a later date.",
	ReasonBelowMinimumPersons:       "Minimum 2 persons required per reservation rule.",
	ReasonAcknowledgementRequired:   "Please acknowledge keeping the room clean and tidy per reservation rule.",
	ReasonInvalidTimeFormat:         "Please select both start and end times.",
	ReasonOutsideOperatingHours:     "The selected time is outside library hours.",
	ReasonEndBeforeStart:            "End time must be after start time.",
	ReasonDurationExceeded:          "Maximum 2 hours per slot allowed per reservation rule.",
	ReasonTooEarlyToExtend:          "A reservation can only be extended after its end time has passed.",
	ReasonClosingTimeExceeded:       "Extending would run past closing time.",
}

// ValidationError is a business-rule refusal. Message is safe to show to the requester.
type ValidationError struct {
	Reason Reason
	Field  string
}

func NewValidationError(reason Reason, field string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Reason, e.Field)
	}
	return "validation failed: " + string(e.Reason)
}

func (e *ValidationError) Message() string {
	if msg, ok := reasonMessages[e.Reason]; ok {
		return msg
	}
	return string(e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == errs.ErrValidation
}

type ConflictKind string

const (
	ConflictRoom ConflictKind = "RoomConflict"
	ConflictUser ConflictKind = "UserConflict"
)

// ConflictError reports an overlap with an existing reservation. ConflictingID is
// uuid.Nil when the overlap was only detected by a store constraint.
type ConflictError struct {
	Kind          ConflictKind
	ConflictingID uuid.UUID
	Slot          Slot
}

func (e *ConflictError) Error() string {
	if e.ConflictingID == uuid.Nil {
		return "conflict: " + string(e.Kind)
	}
	return fmt.Sprintf("conflict: %s with reservation %s (%s)", e.Kind, e.ConflictingID, e.Slot)
}

func (e *ConflictError) Message() string {
	if e.Kind == ConflictUser {
		return "You already have a reservation that overlaps this time."
	}
	return "This room/time slot is already booked."
}

func (e *ConflictError) Is(target error) bool {
	return target == errs.ErrConflict
}
