package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnresolvedIntent is returned when a search is attempted on an
// intent whose cities have not been resolved yet.
var ErrUnresolvedIntent = errors.New("travel intent has unresolved places")

// MalformedQueryError means the input text matched no query pattern,
// or matched one but named an impossible calendar date. It carries the
// offending text verbatim so callers can echo it back.
type MalformedQueryError struct {
	Text string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("cannot parse travel query %q", e.Text)
}

// UnrecognizedMonthError means a month word matched no canonical form
// and no fuzzy candidate cleared the acceptance threshold.
type UnrecognizedMonthError struct {
	Token string
}

func (e *UnrecognizedMonthError) Error() string {
	return fmt.Sprintf("unrecognized month %q", e.Token)
}

// PlaceNotFoundError means the autocomplete lookup returned zero
// candidates for a city term. It names the exact term searched.
type PlaceNotFoundError struct {
	Term string
}

func (e *PlaceNotFoundError) Error() string {
	return fmt.Sprintf("no place found for %q", e.Term)
}

// UpstreamError is a transport failure or non-success response from an
// external service. Params holds the failing call's query parameters
// for logging; credentials are never included.
type UpstreamError struct {
	Endpoint string
	Params   map[string]string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v (params: %s)", e.Endpoint, e.Err, formatParams(e.Params))
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err is a user-correctable input error
// (malformed query, unknown month, unknown place) rather than an
// operational failure.
func IsUserError(err error) bool {
	var mq *MalformedQueryError
	var um *UnrecognizedMonthError
	var pn *PlaceNotFoundError
	return errors.As(err, &mq) || errors.As(err, &um) || errors.As(err, &pn)
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return "{" + strings.Join(pairs, " ") + "}"
}
