package parser

import (
	"strings"
	"time"

	"github.com/stufently/avia-search-bot/internal/fuzzy"
	"github.com/stufently/avia-search-bot/internal/models"
)

// monthThreshold is the minimum similarity a fuzzy month match must
// score to be accepted.
const monthThreshold = 0.4

// nominativeMonths holds the dictionary forms, indexed by month-1.
var nominativeMonths = [12]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

// genitiveMonths holds the declined forms that follow a day number
// ("10 мая"), indexed by month-1.
var genitiveMonths = [12]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var (
	monthByForm = make(map[string]time.Month, 24)

	// monthCandidates lists every known form in a fixed order,
	// nominative before genitive, so fuzzy ties resolve the same
	// way on every run.
	monthCandidates = make([]string, 0, 24)
)

func init() {
	for i, name := range nominativeMonths {
		monthByForm[name] = time.Month(i + 1)
		monthCandidates = append(monthCandidates, name)
	}
	for i, name := range genitiveMonths {
		monthByForm[name] = time.Month(i + 1)
		monthCandidates = append(monthCandidates, name)
	}
}

// NormalizeMonth maps a Russian month word, nominative or genitive, to
// its month. A word with no exact match is scored against every known
// form; the best candidate wins if it reaches monthThreshold and the
// substitution is reported as a correction. Anything below the
// threshold fails with UnrecognizedMonthError rather than guessing.
func NormalizeMonth(word string) (time.Month, *models.Correction, error) {
	key := strings.ToLower(word)
	if m, ok := monthByForm[key]; ok {
		return m, nil, nil
	}
	candidate, score := fuzzy.Best(key, monthCandidates)
	if score < monthThreshold {
		return 0, nil, &models.UnrecognizedMonthError{Token: word}
	}
	m := monthByForm[candidate]
	return m, &models.Correction{
		Kind: models.CorrectionMonth,
		From: word,
		To:   nominativeMonths[m-1],
	}, nil
}
