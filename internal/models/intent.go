package models

import (
	"fmt"
	"time"
)

type TripShape int

const (
	// ShapeExactRange carries explicit departure and return dates.
	ShapeExactRange TripShape = iota
	// ShapeDurationRange carries a departure month and a flexible
	// trip length in days.
	ShapeDurationRange
)

func (s TripShape) String() string {
	if s == ShapeDurationRange {
		return "duration_range"
	}
	return "exact_range"
}

// YearMonth is a calendar month without a day component.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Days reports the number of calendar days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date builds the given day of the month as a UTC calendar date.
func (ym YearMonth) Date(day int) time.Time {
	return time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, time.UTC)
}

// TravelIntent is one parsed travel request. Exactly one of the two
// date groups is populated, selected by Shape: DepartDate/ReturnDate
// for ShapeExactRange, DepartMonth/MinDays/MaxDays for
// ShapeDurationRange. A zero ReturnDate on an exact-range intent means
// a single departure date with no return.
type TravelIntent struct {
	OriginCity      string
	DestinationCity string

	Shape       TripShape
	DepartDate  time.Time
	ReturnDate  time.Time
	DepartMonth YearMonth
	MinDays     int
	MaxDays     int

	DirectOnly bool
	OneWay     bool

	// Origin and Destination stay zero until the intent has been
	// through place resolution.
	Origin      Place
	Destination Place
}

// Resolved reports whether both cities have been resolved to places.
func (i TravelIntent) Resolved() bool {
	return i.Origin.Code != "" && i.Destination.Code != ""
}
