// Package workinghours implements weekly schedules for the entity
// hierarchy: validation, parent containment, conflict detection against
// booked appointments, and the reconciliation pipeline that applies a
// schedule change.
package workinghours

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shifa-health/shifa/internal/domain/directory"
)

// Weekday is a schedule day. The working week starts on Saturday.
type Weekday string

const (
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// WeekDays lists the seven days in week order, Saturday first.
var WeekDays = []Weekday{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

var weekOrder = map[Weekday]int{
	Saturday: 0, Sunday: 1, Monday: 2, Tuesday: 3, Wednesday: 4, Thursday: 5, Friday: 6,
}

// Valid reports whether d is one of the seven days.
func (d Weekday) Valid() bool {
	_, ok := weekOrder[d]
	return ok
}

// Order returns the day's position in the week, Saturday being 0.
func (d Weekday) Order() int {
	return weekOrder[d]
}

// WeekdayOfTime maps a calendar date to its schedule day.
func WeekdayOfTime(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	default:
		return Friday
	}
}

// ScheduleEntry is one day of an entity's weekly schedule. Time fields
// use zero-padded 24h HH:MM and are nil on non-working days.
type ScheduleEntry struct {
	DayOfWeek      Weekday `json:"day_of_week"`
	IsWorkingDay   bool    `json:"is_working_day"`
	OpeningTime    *string `json:"opening_time,omitempty"`
	ClosingTime    *string `json:"closing_time,omitempty"`
	BreakStartTime *string `json:"break_start_time,omitempty"`
	BreakEndTime   *string `json:"break_end_time,omitempty"`
}

// StoredEntry is a persisted schedule row.
type StoredEntry struct {
	ID         uuid.UUID            `json:"id"`
	EntityType directory.EntityType `json:"entity_type"`
	EntityID   uuid.UUID            `json:"entity_id"`
	ScheduleEntry
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeRange is a pair of HH:MM bounds, used for containment fix
// suggestions.
type TimeRange struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// minutesOf converts a zero-padded HH:MM string to minutes since
// midnight. It rejects anything time.Parse would be lenient about.
func minutesOf(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// mustMinutes is for entries already validated; it panics on bad input.
func mustMinutes(s string) int {
	m, err := minutesOf(s)
	if err != nil {
		panic(err)
	}
	return m
}
