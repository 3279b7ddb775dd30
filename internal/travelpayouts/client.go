// Package travelpayouts calls the Travelpayouts data APIs: Aviasales
// v3 fare search and the places2 autocomplete.
package travelpayouts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/ratelimit"
)

const (
	defaultPricesURL       = "https://api.travelpayouts.com/aviasales/v3/prices_for_dates"
	defaultGroupedURL      = "https://api.travelpayouts.com/aviasales/v3/grouped_prices"
	defaultAutocompleteURL = "https://autocomplete.travelpayouts.com/places2"
)

// Endpoint names used in rate-limit buckets and upstream errors.
const (
	EndpointPrices       = "prices_for_dates"
	EndpointGrouped      = "grouped_prices"
	EndpointAutocomplete = "places"
)

type Config struct {
	Token           string
	PricesURL       string
	GroupedURL      string
	AutocompleteURL string
	Currency        string
	Locale          string
	Timeout         time.Duration
	Limiter         *ratelimit.EndpointLimiter
	HTTPClient      *http.Client
}

func DefaultConfig() Config {
	return Config{
		PricesURL:       defaultPricesURL,
		GroupedURL:      defaultGroupedURL,
		AutocompleteURL: defaultAutocompleteURL,
		Currency:        "rub",
		Locale:          "ru",
		Timeout:         20 * time.Second,
	}
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.PricesURL == "" {
		cfg.PricesURL = def.PricesURL
	}
	if cfg.GroupedURL == "" {
		cfg.GroupedURL = def.GroupedURL
	}
	if cfg.AutocompleteURL == "" {
		cfg.AutocompleteURL = def.AutocompleteURL
	}
	if cfg.Currency == "" {
		cfg.Currency = def.Currency
	}
	if cfg.Locale == "" {
		cfg.Locale = def.Locale
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// SearchDates queries the exact-date fare endpoint for one departure
// date, or a departure and return pair.
func (c *Client) SearchDates(ctx context.Context, q DatesQuery) ([]Ticket, error) {
	v := url.Values{}
	v.Set("origin", q.Origin)
	v.Set("destination", q.Destination)
	v.Set("departure_at", q.DepartDate.Format("2006-01-02"))
	if !q.ReturnDate.IsZero() {
		v.Set("return_at", q.ReturnDate.Format("2006-01-02"))
	}
	v.Set("currency", c.cfg.Currency)
	v.Set("market", q.Market)
	v.Set("one_way", strconv.FormatBool(q.OneWay))
	v.Set("direct", strconv.FormatBool(q.Direct))
	setEnvelope(v)

	var payload fareResponse
	if err := c.getJSON(ctx, EndpointPrices, c.cfg.PricesURL, v, true, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, upstreamErr(EndpointPrices, v, fmt.Errorf("upstream rejected request: %s", payload.Error))
	}
	return payload.Data, nil
}

// SearchGrouped queries the month-grouped fare endpoint and returns
// one entry per departure date, ordered by date.
func (c *Client) SearchGrouped(ctx context.Context, q GroupedQuery) ([]GroupedFare, error) {
	v := url.Values{}
	v.Set("origin", q.Origin)
	v.Set("destination", q.Destination)
	v.Set("departure_at", q.Month.String())
	v.Set("group_by", "departure_at")
	if q.TripDuration > 0 {
		v.Set("trip_duration", strconv.Itoa(q.TripDuration))
	}
	v.Set("currency", c.cfg.Currency)
	v.Set("market", q.Market)
	v.Set("direct", strconv.FormatBool(q.Direct))
	setEnvelope(v)

	var payload groupedResponse
	if err := c.getJSON(ctx, EndpointGrouped, c.cfg.GroupedURL, v, true, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, upstreamErr(EndpointGrouped, v, fmt.Errorf("upstream rejected request: %s", payload.Error))
	}

	fares := make([]GroupedFare, 0, len(payload.Data))
	for day, entry := range payload.Data {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, upstreamErr(EndpointGrouped, v, fmt.Errorf("malformed date key %q", day))
		}
		entry.Date = date
		fares = append(fares, entry)
	}
	sort.Slice(fares, func(i, j int) bool { return fares[i].Date.Before(fares[j].Date) })
	return fares, nil
}

// SuggestPlaces queries the autocomplete service for city candidates
// matching term. An empty result is a valid answer, not an error.
func (c *Client) SuggestPlaces(ctx context.Context, term string) ([]PlaceSuggestion, error) {
	v := url.Values{}
	v.Set("term", term)
	v.Set("locale", c.cfg.Locale)
	v.Set("types[]", "city")

	var payload []PlaceSuggestion
	if err := c.getJSON(ctx, EndpointAutocomplete, c.cfg.AutocompleteURL, v, false, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, params url.Values, authed bool, out any) error {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx, endpoint); err != nil {
			return upstreamErr(endpoint, params, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return upstreamErr(endpoint, params, err)
	}
	if authed {
		req.Header.Set("X-Access-Token", c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstreamErr(endpoint, params, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return upstreamErr(endpoint, params, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return upstreamErr(endpoint, params, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func upstreamErr(endpoint string, params url.Values, err error) error {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	return &models.UpstreamError{Endpoint: endpoint, Params: flat, Err: err}
}

// setEnvelope applies the fixed paging parameters every fare query
// carries.
func setEnvelope(v url.Values) {
	v.Set("sorting", "price")
	v.Set("limit", "1000")
	v.Set("page", "1")
}
