package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/stufently/avia-search-bot/internal/handler"
	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/search"
)

type fakeSearcher struct {
	outcome  *search.Outcome
	err      error
	gotQuery string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (*search.Outcome, error) {
	f.gotQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

var _ handler.Searcher = (*fakeSearcher)(nil)

func newRouter(svc handler.Searcher) *echo.Echo {
	e := echo.New()
	e.POST("/api/v1/search", handler.NewSearchHandler(svc).Search)
	e.GET("/health", handler.HealthHandler)
	return e
}

func postSearch(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

var (
	moscow = models.Place{DisplayName: "Москва", Code: "MOW", CountryCode: "ru"}
	paris  = models.Place{DisplayName: "Париж", Code: "PAR", CountryCode: "fr"}
)

// TestSearch_exactRange verifies the full response document for a
// resolved round-trip outcome: criteria, metadata, formatted fares and
// corrections.
func TestSearch_exactRange(t *testing.T) {
	depart := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC)
	length := 5

	svc := &fakeSearcher{outcome: &search.Outcome{
		Intent: models.TravelIntent{
			Shape:       models.ShapeExactRange,
			DepartDate:  depart,
			ReturnDate:  ret,
			Origin:      moscow,
			Destination: paris,
		},
		Fares: []models.FareOption{
			{DepartDate: depart, ReturnDate: &ret, TripLength: &length, Price: 12345, Stops: 1},
			{DepartDate: depart, Price: 15000, Stops: 0},
		},
		Corrections: []models.Correction{
			{Kind: models.CorrectionCity, From: "Парж", To: "Париж"},
		},
		Queries: 1,
	}}

	rec := postSearch(newRouter(svc), `{"query":"Москва Парж с 10 по 15 мая"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Москва Парж с 10 по 15 мая", svc.gotQuery)

	var body handler.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.Equal(t, moscow, body.SearchCriteria.Origin)
	require.Equal(t, paris, body.SearchCriteria.Destination)
	require.Equal(t, "exact_range", body.SearchCriteria.TripShape)
	require.Equal(t, "2026-05-10", body.SearchCriteria.DepartDate)
	require.Equal(t, "2026-05-15", body.SearchCriteria.ReturnDate)
	require.Empty(t, body.SearchCriteria.DepartMonth)
	require.False(t, body.SearchCriteria.OneWay)
	require.False(t, body.SearchCriteria.DirectOnly)

	require.Equal(t, 2, body.Metadata.TotalResults)
	require.Equal(t, 1, body.Metadata.QueriesIssued)
	require.False(t, body.Metadata.DirectRelaxed)

	require.Len(t, body.Fares, 2)
	require.Equal(t, "2026-05-10", body.Fares[0].DepartDate)
	require.Equal(t, "2026-05-15", body.Fares[0].ReturnDate)
	require.NotNil(t, body.Fares[0].TripLengthDays)
	require.Equal(t, 5, *body.Fares[0].TripLengthDays)
	require.Equal(t, 12345, body.Fares[0].Price)
	require.Equal(t, "12 345 ₽", body.Fares[0].PriceFormatted)
	require.Equal(t, 1, body.Fares[0].Stops)
	require.Empty(t, body.Fares[1].ReturnDate)
	require.Nil(t, body.Fares[1].TripLengthDays)

	require.Equal(t, []models.Correction{
		{Kind: models.CorrectionCity, From: "Парж", To: "Париж"},
	}, body.Corrections)
}

// TestSearch_durationCriteria verifies that a duration-shaped intent
// reports a month and a day span instead of exact dates.
func TestSearch_durationCriteria(t *testing.T) {
	svc := &fakeSearcher{outcome: &search.Outcome{
		Intent: models.TravelIntent{
			Shape:       models.ShapeDurationRange,
			DepartMonth: models.YearMonth{Year: 2026, Month: time.May},
			MinDays:     3,
			MaxDays:     5,
			OneWay:      false,
			DirectOnly:  true,
			Origin:      moscow,
			Destination: paris,
		},
		Queries: 3,
	}}

	rec := postSearch(newRouter(svc), `{"query":"Москва Париж на 3-5 дней в мае"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.Equal(t, "duration_range", body.SearchCriteria.TripShape)
	require.Equal(t, "2026-05", body.SearchCriteria.DepartMonth)
	require.Equal(t, 3, body.SearchCriteria.MinDays)
	require.Equal(t, 5, body.SearchCriteria.MaxDays)
	require.Empty(t, body.SearchCriteria.DepartDate)
	require.Empty(t, body.SearchCriteria.ReturnDate)
	require.True(t, body.SearchCriteria.DirectOnly)
	require.Empty(t, body.Fares)
	require.Equal(t, 3, body.Metadata.QueriesIssued)
}

// TestSearch_emptyQuery verifies that a blank query is rejected before
// reaching the service.
func TestSearch_emptyQuery(t *testing.T) {
	svc := &fakeSearcher{}

	rec := postSearch(newRouter(svc), `{"query":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "validation_error", body.Error)
	require.Equal(t, "query is required", body.Message)
	require.Equal(t, http.StatusBadRequest, body.Code)
	require.Empty(t, svc.gotQuery)
}

// TestSearch_malformedBody verifies that unparseable JSON maps to
// invalid_request.
func TestSearch_malformedBody(t *testing.T) {
	rec := postSearch(newRouter(&fakeSearcher{}), `{`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "invalid_request", body.Error)
}

// TestSearch_errorMapping verifies the status and code each service
// error translates to, and that user errors keep their own text while
// operational errors get a generic message.
func TestSearch_errorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "malformed query",
			err:         &models.MalformedQueryError{Text: "ерунда"},
			wantStatus:  http.StatusBadRequest,
			wantError:   "malformed_query",
			wantMessage: `cannot parse travel query "ерунда"`,
		},
		{
			name:        "unrecognized month",
			err:         &models.UnrecognizedMonthError{Token: "мартобря"},
			wantStatus:  http.StatusBadRequest,
			wantError:   "unrecognized_month",
			wantMessage: `unrecognized month "мартобря"`,
		},
		{
			name:        "place not found",
			err:         &models.PlaceNotFoundError{Term: "Тьмутаракань"},
			wantStatus:  http.StatusBadRequest,
			wantError:   "place_not_found",
			wantMessage: `no place found for "Тьмутаракань"`,
		},
		{
			name: "upstream failure",
			err: &models.UpstreamError{
				Endpoint: "prices_for_dates",
				Params:   map[string]string{"origin": "MOW"},
				Err:      errors.New("status 500"),
			},
			wantStatus:  http.StatusBadGateway,
			wantError:   "upstream_error",
			wantMessage: "Fare search is temporarily unavailable, try again later",
		},
		{
			name:        "unknown error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSearch(newRouter(&fakeSearcher{err: tt.err}), `{"query":"Москва Париж с 10 по 15 мая"}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			require.Equal(t, tt.wantError, body.Error)
			require.Equal(t, tt.wantMessage, body.Message)
			require.Equal(t, tt.wantStatus, body.Code)
		})
	}
}

// TestHealthHandler verifies that GET /health returns HTTP 200 and a
// JSON body of {"status":"ok"}.
func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newRouter(&fakeSearcher{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, map[string]string{"status": "ok"}, body)
}
