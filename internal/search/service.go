package search

import (
	"context"
	"time"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/parser"
)

// Resolver resolves a free-text city name to a place record.
type Resolver interface {
	Resolve(ctx context.Context, city string) (models.Place, *models.Correction, error)
}

// Service is the single entry point transports call: raw user text in,
// ranked fares and the intent they were computed for out.
type Service struct {
	resolver Resolver
	orch     *Orchestrator
	now      func() time.Time
}

func NewService(resolver Resolver, orch *Orchestrator) *Service {
	return &Service{
		resolver: resolver,
		orch:     orch,
		now:      time.Now,
	}
}

// Outcome carries everything a transport needs to render one reply.
type Outcome struct {
	Intent        models.TravelIntent
	Fares         []models.FareOption
	Corrections   []models.Correction
	Queries       int
	DirectRelaxed bool
}

// Search parses text, resolves both cities and runs the fare search.
// A direct-only request that finds nothing is retried exactly once
// with the direct filter cleared; a second empty result is final.
func (s *Service) Search(ctx context.Context, text string) (*Outcome, error) {
	intent, corrections, err := parser.ParseQuery(text, s.now())
	if err != nil {
		return nil, err
	}

	origin, corr, err := s.resolver.Resolve(ctx, intent.OriginCity)
	if err != nil {
		return nil, err
	}
	if corr != nil {
		corrections = append(corrections, *corr)
	}
	destination, corr, err := s.resolver.Resolve(ctx, intent.DestinationCity)
	if err != nil {
		return nil, err
	}
	if corr != nil {
		corrections = append(corrections, *corr)
	}
	intent.Origin = origin
	intent.Destination = destination

	result, err := s.orch.Search(ctx, *intent)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Intent:      *intent,
		Fares:       result.Fares,
		Corrections: corrections,
		Queries:     result.Queries,
	}
	if intent.DirectOnly && len(result.Fares) == 0 {
		relaxed := *intent
		relaxed.DirectOnly = false
		retry, err := s.orch.Search(ctx, relaxed)
		if err != nil {
			return nil, err
		}
		outcome.Intent = relaxed
		outcome.Fares = retry.Fares
		outcome.Queries += retry.Queries
		outcome.DirectRelaxed = true
	}
	return outcome, nil
}
