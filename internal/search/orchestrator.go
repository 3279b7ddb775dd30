// Package search maps resolved travel intents onto Aviasales query
// strategies and aggregates the results into one price-sorted list.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/travelpayouts"
)

// FareClient is the slice of the Travelpayouts client the
// orchestrator needs.
type FareClient interface {
	SearchDates(ctx context.Context, q travelpayouts.DatesQuery) ([]travelpayouts.Ticket, error)
	SearchGrouped(ctx context.Context, q travelpayouts.GroupedQuery) ([]travelpayouts.GroupedFare, error)
}

type Config struct {
	MaxConcurrent int
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 4,
	}
}

type Orchestrator struct {
	client FareClient
	config Config
}

// Result is one orchestrator invocation's outcome. Queries counts the
// upstream calls issued.
type Result struct {
	Fares   []models.FareOption
	Queries int
}

func NewOrchestrator(client FareClient, config Config) *Orchestrator {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Orchestrator{
		client: client,
		config: config,
	}
}

// Search executes the query strategy selected by the intent's trip
// direction and date mode, and returns every fare found sorted by
// price ascending, ties in call-issue order. An empty result is not
// an error; any failed upstream call aborts the whole invocation with
// no partial results.
func (o *Orchestrator) Search(ctx context.Context, intent models.TravelIntent) (*Result, error) {
	if !intent.Resolved() {
		return nil, models.ErrUnresolvedIntent
	}

	var (
		fares   []models.FareOption
		queries int
		err     error
	)
	switch {
	case intent.OneWay && intent.Shape == models.ShapeExactRange && !intent.ReturnDate.IsZero():
		fares, queries, err = o.oneWayPerDay(ctx, intent)
	case intent.OneWay && intent.Shape == models.ShapeExactRange:
		fares, queries, err = o.oneWaySingle(ctx, intent)
	case intent.OneWay:
		fares, queries, err = o.oneWayMonth(ctx, intent)
	case intent.Shape == models.ShapeExactRange:
		fares, queries, err = o.roundTripExact(ctx, intent)
	default:
		fares, queries, err = o.roundTripDurations(ctx, intent)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(fares, func(i, j int) bool { return fares[i].Price < fares[j].Price })
	return &Result{Fares: fares, Queries: queries}, nil
}

// oneWayPerDay issues one exact one-way query per calendar day from
// the depart date to the return date inclusive.
func (o *Orchestrator) oneWayPerDay(ctx context.Context, intent models.TravelIntent) ([]models.FareOption, int, error) {
	days := daysBetween(intent.DepartDate, intent.ReturnDate)
	results := make([][]models.FareOption, len(days))

	err := fanOut(ctx, o.config.MaxConcurrent, len(days), func(ctx context.Context, i int) error {
		tickets, err := o.client.SearchDates(ctx, datesQuery(intent, days[i], time.Time{}))
		if err != nil {
			return err
		}
		fares, err := oneWayFares(tickets)
		if err != nil {
			return err
		}
		results[i] = fares
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return concat(results), len(days), nil
}

// oneWaySingle issues one exact one-way query for a lone depart date.
func (o *Orchestrator) oneWaySingle(ctx context.Context, intent models.TravelIntent) ([]models.FareOption, int, error) {
	tickets, err := o.client.SearchDates(ctx, datesQuery(intent, intent.DepartDate, time.Time{}))
	if err != nil {
		return nil, 0, err
	}
	fares, err := oneWayFares(tickets)
	if err != nil {
		return nil, 0, err
	}
	return fares, 1, nil
}

// oneWayMonth scans a whole month with one grouped query, returning
// the best fare per departure date.
func (o *Orchestrator) oneWayMonth(ctx context.Context, intent models.TravelIntent) ([]models.FareOption, int, error) {
	entries, err := o.client.SearchGrouped(ctx, groupedQuery(intent, 0))
	if err != nil {
		return nil, 0, err
	}
	fares := make([]models.FareOption, 0, len(entries))
	for _, e := range entries {
		fares = append(fares, models.FareOption{
			DepartDate: e.Date,
			Price:      e.Price,
			Stops:      e.Transfers,
		})
	}
	return fares, 1, nil
}

// roundTripExact issues one round-trip query for the exact date pair
// and derives each fare's trip length from its own dates.
func (o *Orchestrator) roundTripExact(ctx context.Context, intent models.TravelIntent) ([]models.FareOption, int, error) {
	tickets, err := o.client.SearchDates(ctx, datesQuery(intent, intent.DepartDate, intent.ReturnDate))
	if err != nil {
		return nil, 0, err
	}
	fares, err := roundTripFares(tickets)
	if err != nil {
		return nil, 0, err
	}
	return fares, 1, nil
}

// roundTripDurations tries one grouped query per trip length, then
// retries length values the grouped endpoint had nothing for with one
// exact round-trip query per departure day of the target month.
func (o *Orchestrator) roundTripDurations(ctx context.Context, intent models.TravelIntent) ([]models.FareOption, int, error) {
	lengths := make([]int, 0, intent.MaxDays-intent.MinDays+1)
	for n := intent.MinDays; n <= intent.MaxDays; n++ {
		lengths = append(lengths, n)
	}

	grouped := make([][]models.FareOption, len(lengths))
	err := fanOut(ctx, o.config.MaxConcurrent, len(lengths), func(ctx context.Context, i int) error {
		entries, err := o.client.SearchGrouped(ctx, groupedQuery(intent, lengths[i]))
		if err != nil {
			return err
		}
		fares, err := groupedFares(entries, lengths[i])
		if err != nil {
			return err
		}
		grouped[i] = fares
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	queries := len(lengths)

	type dayQuery struct {
		lengthIdx int
		length    int
		day       time.Time
	}
	var retries []dayQuery
	fallback := make([][][]models.FareOption, len(lengths))
	for i, length := range lengths {
		if len(grouped[i]) > 0 {
			continue
		}
		total := intent.DepartMonth.Days()
		fallback[i] = make([][]models.FareOption, total)
		for d := 1; d <= total; d++ {
			retries = append(retries, dayQuery{lengthIdx: i, length: length, day: intent.DepartMonth.Date(d)})
		}
	}

	err = fanOut(ctx, o.config.MaxConcurrent, len(retries), func(ctx context.Context, i int) error {
		q := retries[i]
		tickets, err := o.client.SearchDates(ctx, datesQuery(intent, q.day, q.day.AddDate(0, 0, q.length)))
		if err != nil {
			return err
		}
		fares, err := roundTripFares(tickets)
		if err != nil {
			return err
		}
		fallback[q.lengthIdx][q.day.Day()-1] = fares
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	queries += len(retries)

	out := make([]models.FareOption, 0)
	for i := range lengths {
		if len(grouped[i]) > 0 {
			out = append(out, grouped[i]...)
			continue
		}
		for _, fares := range fallback[i] {
			out = append(out, fares...)
		}
	}
	return out, queries, nil
}

func datesQuery(intent models.TravelIntent, depart, ret time.Time) travelpayouts.DatesQuery {
	return travelpayouts.DatesQuery{
		Origin:      intent.Origin.Code,
		Destination: intent.Destination.Code,
		DepartDate:  depart,
		ReturnDate:  ret,
		OneWay:      intent.OneWay,
		Direct:      intent.DirectOnly,
		Market:      intent.Origin.CountryCode,
	}
}

func groupedQuery(intent models.TravelIntent, duration int) travelpayouts.GroupedQuery {
	return travelpayouts.GroupedQuery{
		Origin:       intent.Origin.Code,
		Destination:  intent.Destination.Code,
		Month:        intent.DepartMonth,
		TripDuration: duration,
		Direct:       intent.DirectOnly,
		Market:       intent.Origin.CountryCode,
	}
}

func oneWayFares(tickets []travelpayouts.Ticket) ([]models.FareOption, error) {
	fares := make([]models.FareOption, 0, len(tickets))
	for _, t := range tickets {
		dep, err := t.DepartDay()
		if err != nil {
			return nil, mappingErr(travelpayouts.EndpointPrices, err)
		}
		fares = append(fares, models.FareOption{
			DepartDate: dep,
			Price:      t.Price,
			Stops:      t.Transfers,
		})
	}
	return fares, nil
}

func roundTripFares(tickets []travelpayouts.Ticket) ([]models.FareOption, error) {
	fares := make([]models.FareOption, 0, len(tickets))
	for _, t := range tickets {
		dep, err := t.DepartDay()
		if err != nil {
			return nil, mappingErr(travelpayouts.EndpointPrices, err)
		}
		ret, ok, err := t.ReturnDay()
		if err != nil {
			return nil, mappingErr(travelpayouts.EndpointPrices, err)
		}
		if !ok {
			return nil, mappingErr(travelpayouts.EndpointPrices, fmt.Errorf("round-trip ticket missing return_at"))
		}
		length := int(ret.Sub(dep).Hours() / 24)
		fares = append(fares, models.FareOption{
			DepartDate: dep,
			ReturnDate: &ret,
			TripLength: &length,
			Price:      t.Price,
			Stops:      t.Transfers,
		})
	}
	return fares, nil
}

func groupedFares(entries []travelpayouts.GroupedFare, length int) ([]models.FareOption, error) {
	fares := make([]models.FareOption, 0, len(entries))
	for _, e := range entries {
		ret, ok, err := e.ReturnDay()
		if err != nil {
			return nil, mappingErr(travelpayouts.EndpointGrouped, err)
		}
		fare := models.FareOption{
			DepartDate: e.Date,
			TripLength: &length,
			Price:      e.Price,
			Stops:      e.Transfers,
		}
		if ok {
			fare.ReturnDate = &ret
		}
		fares = append(fares, fare)
	}
	return fares, nil
}

func mappingErr(endpoint string, err error) error {
	return &models.UpstreamError{Endpoint: endpoint, Err: err}
}

func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func concat(groups [][]models.FareOption) []models.FareOption {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]models.FareOption, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
