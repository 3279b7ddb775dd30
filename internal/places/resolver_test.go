package places_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/places"
	"github.com/stufently/avia-search-bot/internal/travelpayouts"
)

type fakeSuggester struct {
	calls       []string
	suggestions []travelpayouts.PlaceSuggestion
	err         error
}

func (f *fakeSuggester) SuggestPlaces(_ context.Context, term string) ([]travelpayouts.PlaceSuggestion, error) {
	f.calls = append(f.calls, term)
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

type memoryCache struct {
	entries map[string]models.Place
	sets    int
}

func (c *memoryCache) Get(_ context.Context, term string) (models.Place, bool) {
	place, ok := c.entries[term]
	return place, ok
}

func (c *memoryCache) Set(_ context.Context, term string, place models.Place) error {
	if c.entries == nil {
		c.entries = make(map[string]models.Place)
	}
	c.entries[term] = place
	c.sets++
	return nil
}

func (c *memoryCache) Close() error { return nil }

// TestResolve_basic verifies a city resolves to its normalized place
// record and the lookup term is capitalized on the way out.
func TestResolve_basic(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Москва, Россия", Code: "MOW", CountryCode: "RU"},
	}}
	resolver := places.NewResolver(suggester, nil)

	place, corr, err := resolver.Resolve(context.Background(), "москва")

	require.NoError(t, err)
	require.Nil(t, corr)
	require.Equal(t, models.Place{DisplayName: "Москва", Code: "MOW", CountryCode: "ru"}, place)
	require.Equal(t, []string{"Москва"}, suggester.calls)
}

// TestResolve_alias verifies colloquial names are swapped for their
// formal spelling before the lookup, without a correction event.
func TestResolve_alias(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Санкт-Петербург, Россия", Code: "LED", CountryCode: "RU"},
	}}
	resolver := places.NewResolver(suggester, nil)

	place, corr, err := resolver.Resolve(context.Background(), "питер")

	require.NoError(t, err)
	require.Nil(t, corr)
	require.Equal(t, "LED", place.Code)
	require.Equal(t, []string{"Санкт-Петербург"}, suggester.calls)
}

// TestResolve_correction verifies that winning a lookup under a
// different name is reported as a correction from term to display name.
func TestResolve_correction(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Париж, Франция", Code: "PAR", CountryCode: "FR"},
	}}
	resolver := places.NewResolver(suggester, nil)

	place, corr, err := resolver.Resolve(context.Background(), "Парж")

	require.NoError(t, err)
	require.Equal(t, "Париж", place.DisplayName)
	require.Equal(t, &models.Correction{
		Kind: models.CorrectionCity,
		From: "Парж",
		To:   "Париж",
	}, corr)
}

// TestResolve_picksMostSimilar verifies the candidate list is scored
// against the term instead of blindly taking the first entry.
func TestResolve_picksMostSimilar(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Берлин, Германия", Code: "BER", CountryCode: "DE"},
		{Name: "Париж, Франция", Code: "PAR", CountryCode: "FR"},
	}}
	resolver := places.NewResolver(suggester, nil)

	place, _, err := resolver.Resolve(context.Background(), "Париж")

	require.NoError(t, err)
	require.Equal(t, "PAR", place.Code)
}

// TestResolve_tieKeepsFirst verifies equally scored candidates resolve
// to the one the service listed first.
func TestResolve_tieKeepsFirst(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Аб", Code: "AAA", CountryCode: "XX"},
		{Name: "Ба", Code: "BBB", CountryCode: "YY"},
	}}
	resolver := places.NewResolver(suggester, nil)

	place, _, err := resolver.Resolve(context.Background(), "Аа")

	require.NoError(t, err)
	require.Equal(t, "AAA", place.Code)
}

// TestResolve_notFound verifies zero candidates fail with an error
// naming the exact term that was searched.
func TestResolve_notFound(t *testing.T) {
	suggester := &fakeSuggester{}
	resolver := places.NewResolver(suggester, nil)

	_, _, err := resolver.Resolve(context.Background(), "навернотак")

	var notFound *models.PlaceNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Навернотак", notFound.Term)
	require.True(t, models.IsUserError(err))
}

// TestResolve_suggesterError verifies upstream failures pass through
// unchanged.
func TestResolve_suggesterError(t *testing.T) {
	suggester := &fakeSuggester{err: errors.New("autocomplete down")}
	resolver := places.NewResolver(suggester, nil)

	_, _, err := resolver.Resolve(context.Background(), "Москва")

	require.ErrorContains(t, err, "autocomplete down")
}

// TestResolve_cacheHit verifies a cached place skips the autocomplete
// call entirely and still reports corrections.
func TestResolve_cacheHit(t *testing.T) {
	cached := models.Place{DisplayName: "Париж", Code: "PAR", CountryCode: "fr"}
	c := &memoryCache{entries: map[string]models.Place{"Парж": cached}}
	suggester := &fakeSuggester{}
	resolver := places.NewResolver(suggester, c)

	place, corr, err := resolver.Resolve(context.Background(), "парж")

	require.NoError(t, err)
	require.Equal(t, cached, place)
	require.NotNil(t, corr)
	require.Equal(t, "Париж", corr.To)
	require.Empty(t, suggester.calls)
}

// TestResolve_cacheWrite verifies a fresh resolution is stored under
// the lookup term.
func TestResolve_cacheWrite(t *testing.T) {
	c := &memoryCache{}
	suggester := &fakeSuggester{suggestions: []travelpayouts.PlaceSuggestion{
		{Name: "Москва, Россия", Code: "mow", CountryCode: "RU"},
	}}
	resolver := places.NewResolver(suggester, c)

	place, _, err := resolver.Resolve(context.Background(), "Москва")

	require.NoError(t, err)
	require.Equal(t, "MOW", place.Code) // code upper-cased on the way in
	require.Equal(t, 1, c.sets)
	require.Equal(t, place, c.entries["Москва"])
}
