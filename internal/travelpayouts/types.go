package travelpayouts

import (
	"fmt"
	"time"

	"github.com/stufently/avia-search-bot/internal/models"
)

// PlaceSuggestion is one autocomplete candidate. Name carries the
// primary name optionally followed by a comma-separated qualifier,
// for example "Париж, Франция".
type PlaceSuggestion struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	CountryCode string `json:"country_code"`
}

// Ticket is one itinerary from the exact-date fare endpoint.
// Timestamps arrive as RFC 3339 in the origin's local zone.
type Ticket struct {
	DepartureAt string `json:"departure_at"`
	ReturnAt    string `json:"return_at"`
	Price       int    `json:"price"`
	Transfers   int    `json:"transfers"`
	Link        string `json:"link"`
}

// DepartDay returns the calendar date part of DepartureAt.
func (t Ticket) DepartDay() (time.Time, error) {
	return parseDay(t.DepartureAt)
}

// ReturnDay returns the calendar date part of ReturnAt. ok is false
// when the ticket has no return leg.
func (t Ticket) ReturnDay() (day time.Time, ok bool, err error) {
	if t.ReturnAt == "" {
		return time.Time{}, false, nil
	}
	day, err = parseDay(t.ReturnAt)
	return day, err == nil, err
}

// GroupedFare is the cheapest fare for one departure date from the
// month-grouped endpoint.
type GroupedFare struct {
	Date      time.Time `json:"-"` // response map key
	ReturnAt  string    `json:"return_at"`
	Price     int       `json:"price"`
	Transfers int       `json:"transfers"`
}

// ReturnDay returns the calendar date part of ReturnAt. ok is false
// when the grouped entry carries no return date.
func (f GroupedFare) ReturnDay() (day time.Time, ok bool, err error) {
	if f.ReturnAt == "" {
		return time.Time{}, false, nil
	}
	day, err = parseDay(f.ReturnAt)
	return day, err == nil, err
}

// DatesQuery holds the parameters of one exact-date fare search.
type DatesQuery struct {
	Origin      string
	Destination string
	DepartDate  time.Time
	ReturnDate  time.Time // zero for a single outbound date
	OneWay      bool
	Direct      bool
	Market      string
}

// GroupedQuery holds the parameters of one month-grouped fare search.
type GroupedQuery struct {
	Origin       string
	Destination  string
	Month        models.YearMonth
	TripDuration int // 0 searches all lengths
	Direct       bool
	Market       string
}

type fareResponse struct {
	Success bool     `json:"success"`
	Data    []Ticket `json:"data"`
	Error   string   `json:"error"`
}

type groupedResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]GroupedFare `json:"data"`
	Error   string                 `json:"error"`
}

func parseDay(s string) (time.Time, error) {
	if len(s) < 10 {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	return time.Parse("2006-01-02", s[:10])
}
