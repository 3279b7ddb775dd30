package models

import "time"

// FareOption is one priced itinerary. ReturnDate is nil for one-way
// legs and for grouped results that did not report one; in that case
// the presentation layer derives it from DepartDate plus TripLength.
// All options in one result list share currency and market.
type FareOption struct {
	DepartDate time.Time
	ReturnDate *time.Time
	TripLength *int
	Price      int
	Stops      int
}

type CorrectionKind string

const (
	CorrectionMonth    CorrectionKind = "month"
	CorrectionCity     CorrectionKind = "city"
	CorrectionDuration CorrectionKind = "duration"
)

// Correction records a soft correction: a substitution applied to the
// user's input without confirmation, reported for visibility only.
type Correction struct {
	Kind CorrectionKind `json:"kind"`
	From string         `json:"from"`
	To   string         `json:"to"`
}
