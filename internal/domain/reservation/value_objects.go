package reservation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Date is a civil calendar date with no time zone attached.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

// DateOf returns the civil date of t as observed in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) IsZero() bool                 { return d.t.IsZero() }
func (d Date) Weekday() time.Weekday        { return d.t.Weekday() }
func (d Date) Time() time.Time              { return d.t }
func (d Date) String() string               { return d.t.Format(DateLayout) }
func (d Date) Equal(o Date) bool            { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool           { return d.t.Before(o.t) }
func (d Date) AddDays(n int) Date           { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) DaysSince(o Date) int         { return int(d.t.Sub(o.t).Hours() / 24) }
func (d Date) IsWeekend() bool              { return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday }
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// At places tod on this date in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, day := d.t.Date()
	return time.Date(y, m, day, tod.Hour(), tod.Minute(), 0, 0, loc)
}

// TimeOfDay counts minutes since midnight.
type TimeOfDay int

const minutesPerDay = 24 * 60

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(s) {
		return 0, ErrInvalidTimeOfDay
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return NewTimeOfDay(h, m), nil
}

func (t TimeOfDay) Hour() int                     { return int(t) / 60 }
func (t TimeOfDay) Minute() int                   { return int(t) % 60 }
func (t TimeOfDay) Duration() time.Duration       { return time.Duration(t) * time.Minute }
func (t TimeOfDay) Add(d time.Duration) TimeOfDay { return t + TimeOfDay(d/time.Minute) }

// Valid reports whether t falls on the same day, 00:00 through 24:00.
func (t TimeOfDay) Valid() bool { return t >= 0 && t <= minutesPerDay }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Slot is the half-open interval [Start, End).
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (s Slot) Duration() time.Duration { return (s.End - s.Start).Duration() }

// Overlaps treats touching endpoints as free: 09:00-10:00 and 10:00-11:00 do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}
