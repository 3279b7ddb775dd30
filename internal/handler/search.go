package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/search"
	"github.com/stufently/avia-search-bot/pkg/currency"
)

// Searcher is implemented by search.Service.
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Outcome, error)
}

type SearchHandler struct {
	service Searcher
}

func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria      `json:"search_criteria"`
	Metadata       SearchMetadata      `json:"metadata"`
	Fares          []Fare              `json:"fares"`
	Corrections    []models.Correction `json:"corrections,omitempty"`
}

type SearchCriteria struct {
	Origin      models.Place `json:"origin"`
	Destination models.Place `json:"destination"`
	TripShape   string       `json:"trip_shape"`
	DepartDate  string       `json:"depart_date,omitempty"`
	ReturnDate  string       `json:"return_date,omitempty"`
	DepartMonth string       `json:"depart_month,omitempty"`
	MinDays     int          `json:"min_days,omitempty"`
	MaxDays     int          `json:"max_days,omitempty"`
	OneWay      bool         `json:"one_way"`
	DirectOnly  bool         `json:"direct_only"`
}

type SearchMetadata struct {
	TotalResults  int   `json:"total_results"`
	QueriesIssued int   `json:"queries_issued"`
	DirectRelaxed bool  `json:"direct_relaxed"`
	SearchTimeMs  int64 `json:"search_time_ms"`
}

type Fare struct {
	DepartDate     string `json:"depart_date"`
	ReturnDate     string `json:"return_date,omitempty"`
	TripLengthDays *int   `json:"trip_length_days,omitempty"`
	Price          int    `json:"price"`
	PriceFormatted string `json:"price_formatted"`
	Stops          int    `json:"stops"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "query is required",
			Code:    http.StatusBadRequest,
		})
	}

	outcome, err := h.service.Search(ctx, req.Query)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SearchResponse{
		SearchCriteria: buildSearchCriteria(outcome.Intent),
		Metadata: SearchMetadata{
			TotalResults:  len(outcome.Fares),
			QueriesIssued: outcome.Queries,
			DirectRelaxed: outcome.DirectRelaxed,
			SearchTimeMs:  time.Since(startTime).Milliseconds(),
		},
		Fares:       buildFares(outcome.Fares),
		Corrections: outcome.Corrections,
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Input errors
// surface their own text; upstream failures are logged with their call
// parameters and answered with a generic message.
func writeError(c echo.Context, err error) error {
	var malformed *models.MalformedQueryError
	var month *models.UnrecognizedMonthError
	var place *models.PlaceNotFoundError
	var upstream *models.UpstreamError

	switch {
	case errors.As(err, &malformed):
		return badRequest(c, "malformed_query", err.Error())
	case errors.As(err, &month):
		return badRequest(c, "unrecognized_month", err.Error())
	case errors.As(err, &place):
		return badRequest(c, "place_not_found", err.Error())
	case errors.As(err, &upstream):
		log.Printf("Upstream call failed: %v", upstream)
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "upstream_error",
			Message: "Fare search is temporarily unavailable, try again later",
			Code:    http.StatusBadGateway,
		})
	default:
		log.Printf("Search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal error",
			Code:    http.StatusInternalServerError,
		})
	}
}

func badRequest(c echo.Context, kind, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func buildSearchCriteria(intent models.TravelIntent) SearchCriteria {
	criteria := SearchCriteria{
		Origin:      intent.Origin,
		Destination: intent.Destination,
		TripShape:   intent.Shape.String(),
		OneWay:      intent.OneWay,
		DirectOnly:  intent.DirectOnly,
	}
	switch intent.Shape {
	case models.ShapeExactRange:
		criteria.DepartDate = intent.DepartDate.Format("2006-01-02")
		if !intent.ReturnDate.IsZero() {
			criteria.ReturnDate = intent.ReturnDate.Format("2006-01-02")
		}
	case models.ShapeDurationRange:
		criteria.DepartMonth = intent.DepartMonth.String()
		criteria.MinDays = intent.MinDays
		criteria.MaxDays = intent.MaxDays
	}
	return criteria
}

func buildFares(fares []models.FareOption) []Fare {
	out := make([]Fare, 0, len(fares))
	for _, f := range fares {
		dto := Fare{
			DepartDate:     f.DepartDate.Format("2006-01-02"),
			Price:          f.Price,
			PriceFormatted: currency.FormatRUB(f.Price),
			Stops:          f.Stops,
		}
		if f.ReturnDate != nil {
			dto.ReturnDate = f.ReturnDate.Format("2006-01-02")
		}
		if f.TripLength != nil {
			dto.TripLengthDays = f.TripLength
		}
		out = append(out, dto)
	}
	return out
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
