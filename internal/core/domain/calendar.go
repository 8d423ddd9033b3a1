package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDayKey        = errors.New("invalid day key (must be YYYY-MM-DD)")
	ErrInvalidReferenceHour = errors.New("reference hour must be between 1 and 22")
)

const (
	DayKeyLayout         = "2006-01-02"
	DefaultReferenceHour = 12
)

// DayKey identifies one local calendar day. Keys sort chronologically as strings.
type DayKey string

// ParseDayKey validates a user supplied key. Everything past ingestion assumes
// keys are well formed.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(DayKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	return DayKey(t.Format(DayKeyLayout)), nil
}

func (k DayKey) String() string {
	return string(k)
}

// date is the key as a UTC midnight. Calendar arithmetic on keys never
// touches a real time zone, so DST cannot shift a day.
const secondsPerDay = 24 * 60 * 60

func (k DayKey) date() time.Time {
	t, _ := time.Parse(DayKeyLayout, string(k))
	return t
}

func (k DayKey) AddDays(n int) DayKey {
	return DayKey(k.date().AddDate(0, 0, n).Format(DayKeyLayout))
}

// DaysUntil returns the signed number of days from k to other.
func (k DayKey) DaysUntil(other DayKey) int {
	return int((other.date().Unix() - k.date().Unix()) / secondsPerDay)
}

func (k DayKey) Before(other DayKey) bool {
	return k < other
}

func (k DayKey) After(other DayKey) bool {
	return k > other
}

// Time returns the key's reference instant (noon) in loc.
func (k DayKey) Time(loc *time.Location) time.Time {
	d := k.date()
	return time.Date(d.Year(), d.Month(), d.Day(), DefaultReferenceHour, 0, 0, 0, loc)
}

// Calendar normalizes instants to day keys in a single time zone.
type Calendar struct {
	loc           *time.Location
	referenceHour int
}

func NewCalendar(loc *time.Location, referenceHour int) (Calendar, error) {
	if loc == nil {
		loc = time.Local
	}
	if referenceHour < 1 || referenceHour > 22 {
		return Calendar{}, fmt.Errorf("%w: %d", ErrInvalidReferenceHour, referenceHour)
	}
	return Calendar{loc: loc, referenceHour: referenceHour}, nil
}

// MustCalendar is NewCalendar for callers with a known good location, such as tests.
func MustCalendar(loc *time.Location) Calendar {
	cal, err := NewCalendar(loc, DefaultReferenceHour)
	if err != nil {
		panic(err)
	}
	return cal
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Normalize maps t to its local calendar date at the reference hour, away from
// midnight so DST skips and repeats cannot move it to a neighbouring day.
func (c Calendar) Normalize(t time.Time) time.Time {
	loc := c.Location()
	hour := c.referenceHour
	if hour == 0 {
		hour = DefaultReferenceHour
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
}

func (c Calendar) Key(t time.Time) DayKey {
	return DayKey(c.Normalize(t).Format(DayKeyLayout))
}

// Instant returns the normalized instant of a key in this calendar.
func (c Calendar) Instant(k DayKey) time.Time {
	return c.Normalize(k.Time(c.Location()))
}
