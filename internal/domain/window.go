package domain

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for contest day identifiers: a calendar date
// with no time component.
const DayFormat = "2006-01-02"

// Window is the half-open interval [Start, End) during which reports count
// toward a contest day. Derived per request, never persisted.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowResolver turns contest day identifiers into scoring windows anchored
// at a fixed daily deadline hour in the contest's fixed UTC offset.
type WindowResolver struct {
	deadlineHour int
	loc          *time.Location
}

// NewWindowResolver builds a resolver for the given deadline hour and fixed
// UTC offset in hours (e.g. -3 for the contest's UTC-3).
func NewWindowResolver(deadlineHour, utcOffsetHours int) WindowResolver {
	name := fmt.Sprintf("UTC%+03d", utcOffsetHours)
	return WindowResolver{
		deadlineHour: deadlineHour,
		loc:          time.FixedZone(name, utcOffsetHours*3600),
	}
}

// Resolve returns the scoring window for a contest day:
// [day@deadline, day+1@deadline) in the contest offset. The day string is
// parsed as a bare calendar date and the offset attached exactly once, so a
// window is always 24 hours and resolving twice yields identical bounds.
func (r WindowResolver) Resolve(day string) (Window, error) {
	d, err := time.Parse(DayFormat, day)
	if err != nil {
		return Window{}, fmt.Errorf("resolve window: invalid day %q: %w", day, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), r.deadlineHour, 0, 0, 0, r.loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

// CalendarDay returns the plain calendar-day interval [day@00:00, day+1@00:00)
// in the contest offset. Report listings use this; scoring uses Resolve.
func (r WindowResolver) CalendarDay(day string) (Window, error) {
	d, err := time.Parse(DayFormat, day)
	if err != nil {
		return Window{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

// At returns the instant for a clock time on a contest day in the contest
// offset.
func (r WindowResolver) At(day string, hour, minute int) (time.Time, error) {
	d, err := time.Parse(DayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, r.loc), nil
}

// IsPastDeadline reports whether now's local hour has reached the deadline.
// Once true, the current scoring period is [today@deadline, tomorrow@deadline).
func (r WindowResolver) IsPastDeadline(now time.Time) bool {
	return now.In(r.loc).Hour() >= r.deadlineHour
}

// Today returns now's contest day identifier in the contest offset.
func (r WindowResolver) Today(now time.Time) string {
	return now.In(r.loc).Format(DayFormat)
}
