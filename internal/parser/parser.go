// Package parser turns free-form Russian flight queries such as
// "Москва Париж с 10 по 15 мая" into structured travel intents.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/stufently/avia-search-bot/internal/models"
)

// charReplacer rewrites arrow separators, non-breaking spaces and
// exotic dash variants into their plain equivalents.
var charReplacer = strings.NewReplacer(
	"→", " ",
	" ", " ", // non-breaking space
	"‑", "-", // non-breaking hyphen
	"—", "-",
	"–", "-",
)

var (
	oneWayRe     = regexp.MustCompile(`(?i)(^|\s)в\s+одну\s+сторону($|\s)`)
	hyphenPairRe = regexp.MustCompile(`^([\p{L}\p{N}_-]+)\s*-\s*([\p{L}\p{N}_-]+)`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// cityPair captures origin and destination as the two tokens that
// precede the date expression.
const cityPair = `(?P<from>[\p{L}\p{N}_-]+)\s+(?P<to>[\p{L}\p{N}_-]+)`

var (
	crossMonthRangeRe = regexp.MustCompile(`(?i)` + cityPair +
		`\s+с\s+(?P<start>\d{1,2})\s+(?P<startMonth>\p{L}+)\s+по\s+(?P<end>\d{1,2})\s+(?P<endMonth>\p{L}+)(?:\s+(?P<direct>прям\p{L}*))?`)
	sameMonthRangeRe = regexp.MustCompile(`(?i)` + cityPair +
		`\s+с\s+(?P<start>\d{1,2})\s+по\s+(?P<end>\d{1,2})\s+(?P<month>\p{L}+)(?:\s+(?P<direct>прям\p{L}*))?`)
	bareDayRangeRe = regexp.MustCompile(`(?i)` + cityPair +
		`\s+с\s+(?P<start>\d{1,2})\s+по\s+(?P<end>\d{1,2})(?:\s+(?P<direct>прям\p{L}*))?`)
	durationRe = regexp.MustCompile(`(?i)` + cityPair +
		`\s+на\s+(?:(?P<month>\p{L}+)\s+)?(?P<min>\d+)-(?P<max>\d+)\s*дн\p{L}*(?:\s+(?P<direct>прям\p{L}*))?`)
)

// match wraps a successful regexp match and exposes its named groups.
type match struct {
	re     *regexp.Regexp
	groups []string
}

func (m match) group(name string) string {
	i := m.re.SubexpIndex(name)
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// builder turns a pattern match into a travel intent. raw is the
// original user text for error reporting; today anchors year inference
// for dates given without one.
type builder func(m match, raw string, today time.Time) (*models.TravelIntent, []models.Correction, error)

// patterns are attempted in order and the first regexp that matches
// decides the interpretation, even if a later one would match too.
var patterns = []struct {
	re    *regexp.Regexp
	build builder
}{
	{crossMonthRangeRe, buildCrossMonthRange},
	{sameMonthRangeRe, buildSameMonthRange},
	{bareDayRangeRe, buildBareDayRange},
	{durationRe, buildDuration},
}

// Preprocess normalizes separators and whitespace in a raw query,
// splits a leading "CityA-CityB" shorthand into two tokens, and strips
// the one-way qualifier, reporting whether it was present.
func Preprocess(text string) (string, bool) {
	s := charReplacer.Replace(text)
	oneWay := oneWayRe.MatchString(s)
	if oneWay {
		s = strings.TrimSpace(oneWayRe.ReplaceAllString(s, " "))
	}
	s = hyphenPairRe.ReplaceAllString(s, "$1 $2")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s), oneWay
}

// ParseQuery parses raw user text into a travel intent. today anchors
// year inference. Soft corrections applied along the way, misspelled
// months and swapped durations, are returned for the caller to
// surface; they never fail the parse.
func ParseQuery(text string, today time.Time) (*models.TravelIntent, []models.Correction, error) {
	clean, oneWay := Preprocess(text)
	for _, p := range patterns {
		groups := p.re.FindStringSubmatch(clean)
		if groups == nil {
			continue
		}
		intent, corrections, err := p.build(match{re: p.re, groups: groups}, text, today)
		if err != nil {
			return nil, nil, err
		}
		intent.OneWay = oneWay
		return intent, corrections, nil
	}
	return nil, nil, &models.MalformedQueryError{Text: text}
}

func buildCrossMonthRange(m match, raw string, today time.Time) (*models.TravelIntent, []models.Correction, error) {
	var corrections []models.Correction
	startMonth, corr, err := NormalizeMonth(m.group("startMonth"))
	if err != nil {
		return nil, nil, err
	}
	if corr != nil {
		corrections = append(corrections, *corr)
	}
	endMonth, corr, err := NormalizeMonth(m.group("endMonth"))
	if err != nil {
		return nil, nil, err
	}
	if corr != nil {
		corrections = append(corrections, *corr)
	}

	startDay, endDay := dayNum(m.group("start")), dayNum(m.group("end"))
	startYear := yearFor(startMonth, startDay, today)
	endYear := startYear
	if endMonth < startMonth {
		endYear++ // wraparound like "с 30 декабря по 3 января"
	}
	depart, ok := dateFor(startYear, startMonth, startDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	ret, ok := dateFor(endYear, endMonth, endDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	return &models.TravelIntent{
		OriginCity:      capitalizeCity(m.group("from")),
		DestinationCity: capitalizeCity(m.group("to")),
		Shape:           models.ShapeExactRange,
		DepartDate:      depart,
		ReturnDate:      ret,
		DirectOnly:      m.group("direct") != "",
	}, corrections, nil
}

func buildSameMonthRange(m match, raw string, today time.Time) (*models.TravelIntent, []models.Correction, error) {
	var corrections []models.Correction
	month, corr, err := NormalizeMonth(m.group("month"))
	if err != nil {
		return nil, nil, err
	}
	if corr != nil {
		corrections = append(corrections, *corr)
	}

	startDay, endDay := dayNum(m.group("start")), dayNum(m.group("end"))
	year := yearFor(month, startDay, today)
	depart, ok := dateFor(year, month, startDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	ret, ok := dateFor(year, month, endDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	return &models.TravelIntent{
		OriginCity:      capitalizeCity(m.group("from")),
		DestinationCity: capitalizeCity(m.group("to")),
		Shape:           models.ShapeExactRange,
		DepartDate:      depart,
		ReturnDate:      ret,
		DirectOnly:      m.group("direct") != "",
	}, corrections, nil
}

func buildBareDayRange(m match, raw string, today time.Time) (*models.TravelIntent, []models.Correction, error) {
	startDay, endDay := dayNum(m.group("start")), dayNum(m.group("end"))
	depart, ok := dateFor(today.Year(), today.Month(), startDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	ret, ok := dateFor(today.Year(), today.Month(), endDay)
	if !ok {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	return &models.TravelIntent{
		OriginCity:      capitalizeCity(m.group("from")),
		DestinationCity: capitalizeCity(m.group("to")),
		Shape:           models.ShapeExactRange,
		DepartDate:      depart,
		ReturnDate:      ret,
		DirectOnly:      m.group("direct") != "",
	}, nil, nil
}

func buildDuration(m match, raw string, today time.Time) (*models.TravelIntent, []models.Correction, error) {
	var corrections []models.Correction
	minDays, err1 := strconv.Atoi(m.group("min"))
	maxDays, err2 := strconv.Atoi(m.group("max"))
	if err1 != nil || err2 != nil {
		return nil, nil, &models.MalformedQueryError{Text: raw}
	}
	if minDays > maxDays {
		corrections = append(corrections, models.Correction{
			Kind: models.CorrectionDuration,
			From: fmt.Sprintf("%d-%d", minDays, maxDays),
			To:   fmt.Sprintf("%d-%d", maxDays, minDays),
		})
		minDays, maxDays = maxDays, minDays
	}

	departMonth := models.YearMonth{Year: today.Year(), Month: today.Month()}
	if word := m.group("month"); word != "" {
		month, corr, err := NormalizeMonth(word)
		if err != nil {
			return nil, nil, err
		}
		if corr != nil {
			corrections = append(corrections, *corr)
		}
		departMonth = models.YearMonth{Year: yearForMonth(month, today), Month: month}
	}
	return &models.TravelIntent{
		OriginCity:      capitalizeCity(m.group("from")),
		DestinationCity: capitalizeCity(m.group("to")),
		Shape:           models.ShapeDurationRange,
		DepartMonth:     departMonth,
		MinDays:         minDays,
		MaxDays:         maxDays,
		DirectOnly:      m.group("direct") != "",
	}, corrections, nil
}

// yearFor picks the year for a month and day stated without one: the
// current year, or the next if that month and day have already passed.
func yearFor(month time.Month, day int, today time.Time) int {
	if month < today.Month() || (month == today.Month() && day < today.Day()) {
		return today.Year() + 1
	}
	return today.Year()
}

// yearForMonth is yearFor at month granularity, for matches that carry
// no day number.
func yearForMonth(month time.Month, today time.Time) int {
	if month < today.Month() {
		return today.Year() + 1
	}
	return today.Year()
}

// dateFor builds a UTC date and rejects impossible combinations such
// as February 30, which time.Date would silently normalize.
func dateFor(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// dayNum converts a \d{1,2} capture, which cannot fail to parse.
func dayNum(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// capitalizeCity renders a city token with an initial capital and the
// rest lowered, the casing the alias table and autocomplete expect.
func capitalizeCity(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
