// Package places resolves free-text city names to canonical place
// records via the Travelpayouts autocomplete service.
package places

import (
	"context"
	"strings"
	"unicode"

	"github.com/stufently/avia-search-bot/internal/cache"
	"github.com/stufently/avia-search-bot/internal/fuzzy"
	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/travelpayouts"
)

// cityAliases maps colloquial city names to the formal names the
// autocomplete service indexes. Keys are capitalized city tokens.
var cityAliases = map[string]string{
	"Питер": "Санкт-Петербург",
}

// Suggester is the slice of the Travelpayouts client the resolver
// needs.
type Suggester interface {
	SuggestPlaces(ctx context.Context, term string) ([]travelpayouts.PlaceSuggestion, error)
}

type Resolver struct {
	suggester Suggester
	cache     cache.Cache
}

func NewResolver(suggester Suggester, c cache.Cache) *Resolver {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Resolver{
		suggester: suggester,
		cache:     c,
	}
}

// Resolve maps a free-text city name to a place record. Zero upstream
// candidates fail with PlaceNotFoundError naming the search term; from
// one or more, the candidate whose primary name is most similar to the
// term wins, ties keeping the earliest. A winner whose name differs
// from the term is reported as a correction.
func (r *Resolver) Resolve(ctx context.Context, city string) (models.Place, *models.Correction, error) {
	term := capitalizeCity(city)
	if alias, ok := cityAliases[term]; ok {
		term = alias
	}

	if place, ok := r.cache.Get(ctx, term); ok {
		return place, cityCorrection(term, place), nil
	}

	suggestions, err := r.suggester.SuggestPlaces(ctx, term)
	if err != nil {
		return models.Place{}, nil, err
	}
	if len(suggestions) == 0 {
		return models.Place{}, nil, &models.PlaceNotFoundError{Term: term}
	}

	best := bestSuggestion(term, suggestions)
	place := models.Place{
		DisplayName: primaryName(best.Name),
		Code:        strings.ToUpper(best.Code),
		CountryCode: strings.ToLower(best.CountryCode),
	}
	_ = r.cache.Set(ctx, term, place)

	return place, cityCorrection(term, place), nil
}

// bestSuggestion scores every candidate's primary display name against
// the term. There is no acceptance threshold: the upstream service has
// already filtered by relevance, so the best of whatever came back is
// always used.
func bestSuggestion(term string, suggestions []travelpayouts.PlaceSuggestion) travelpayouts.PlaceSuggestion {
	termLower := strings.ToLower(term)
	best, bestScore := suggestions[0], 0.0
	for _, s := range suggestions {
		plain := strings.ToLower(primaryName(s.Name))
		if r := fuzzy.Ratio(termLower, plain); r > bestScore {
			best, bestScore = s, r
		}
	}
	return best
}

func cityCorrection(term string, place models.Place) *models.Correction {
	if strings.EqualFold(place.DisplayName, term) {
		return nil
	}
	return &models.Correction{
		Kind: models.CorrectionCity,
		From: term,
		To:   place.DisplayName,
	}
}

// primaryName strips the comma-separated region qualifier from a
// display name like "Париж, Франция".
func primaryName(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		return name[:i]
	}
	return name
}

func capitalizeCity(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
