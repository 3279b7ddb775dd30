package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/stufently/avia-search-bot/internal/models"
	"github.com/stufently/avia-search-bot/internal/search"
	"github.com/stufently/avia-search-bot/pkg/currency"
)

// maxShown caps the number of fare lines in one reply; Telegram
// messages top out at 4096 characters.
const maxShown = 20

const dayFormat = "2006-01-02"

// FormatReply renders one search outcome as a Telegram message:
// corrections first, then the search parameters header, then up to
// maxShown fare lines cheapest first.
func FormatReply(outcome *search.Outcome) string {
	var b strings.Builder

	for _, corr := range outcome.Corrections {
		b.WriteString(correctionLine(corr))
		b.WriteByte('\n')
	}
	if len(outcome.Corrections) > 0 {
		b.WriteByte('\n')
	}

	intent := outcome.Intent
	b.WriteString("=== 🛫 Параметры поиска ===\n")
	fmt.Fprintf(&b, "📍 Откуда: %s (%s)\n", intent.Origin.DisplayName, intent.Origin.Code)
	fmt.Fprintf(&b, "📍 Куда: %s (%s)\n", intent.Destination.DisplayName, intent.Destination.Code)
	if intent.OneWay {
		b.WriteString("✈️ Тип поездки: Туда\n")
	} else {
		b.WriteString("✈️ Тип поездки: Туда и обратно\n")
	}
	switch intent.Shape {
	case models.ShapeDurationRange:
		fmt.Fprintf(&b, "📅 Месяц: %s, поездка %d-%d дн.\n", intent.DepartMonth, intent.MinDays, intent.MaxDays)
	default:
		if intent.ReturnDate.IsZero() {
			fmt.Fprintf(&b, "📅 Дата: %s\n", intent.DepartDate.Format(dayFormat))
		} else {
			fmt.Fprintf(&b, "📅 Даты: %s → %s\n", intent.DepartDate.Format(dayFormat), intent.ReturnDate.Format(dayFormat))
		}
	}
	if intent.DirectOnly {
		b.WriteString("🛂 Только прямые: Да\n")
	} else {
		b.WriteString("🛂 Только прямые: Нет\n")
	}
	b.WriteString("========================\n\n")

	if outcome.DirectRelaxed {
		b.WriteString("ℹ️ Прямых рейсов не нашлось, показаны варианты с пересадками.\n\n")
	}

	fmt.Fprintf(&b, "Найдено %d вариантов (по цене).\n", len(outcome.Fares))
	if len(outcome.Fares) > maxShown {
		fmt.Fprintf(&b, "Показаны первые %d.\n", maxShown)
	}
	b.WriteByte('\n')

	if intent.Shape == models.ShapeExactRange {
		fmt.Fprintf(&b, "🔗 Поиск всех вариантов: %s\n\n", searchURL(intent))
	}

	shown := outcome.Fares
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	lines := make([]string, 0, len(shown))
	for i, fare := range shown {
		lines = append(lines, fareLine(i+1, fare, intent.OneWay))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func correctionLine(c models.Correction) string {
	switch c.Kind {
	case models.CorrectionMonth:
		return fmt.Sprintf("ℹ️ Исправили месяц «%s» → «%s»", c.From, c.To)
	case models.CorrectionCity:
		return fmt.Sprintf("ℹ️ Исправили город «%s» → «%s»", c.From, c.To)
	case models.CorrectionDuration:
		return fmt.Sprintf("ℹ️ Исправили длительности: %s → %s", c.From, c.To)
	default:
		return fmt.Sprintf("ℹ️ Исправили «%s» → «%s»", c.From, c.To)
	}
}

func fareLine(n int, fare models.FareOption, oneWay bool) string {
	if oneWay {
		return fmt.Sprintf("%d. %s • %s • пересадок: %d",
			n, fare.DepartDate.Format(dayFormat), currency.FormatRUB(fare.Price), fare.Stops)
	}
	line := fmt.Sprintf("%d. %s → %s", n, fare.DepartDate.Format(dayFormat), returnDay(fare).Format(dayFormat))
	if fare.TripLength != nil {
		line += fmt.Sprintf(" • %d дн.", *fare.TripLength)
	}
	return line + fmt.Sprintf(" • %s • пересадок: %d", currency.FormatRUB(fare.Price), fare.Stops)
}

// returnDay falls back to departure plus trip length when the fare
// carries no return date of its own.
func returnDay(fare models.FareOption) time.Time {
	if fare.ReturnDate != nil {
		return *fare.ReturnDate
	}
	length := 0
	if fare.TripLength != nil {
		length = *fare.TripLength
	}
	return fare.DepartDate.AddDate(0, 0, length)
}

// searchURL builds an aviasales.ru deeplink for an exact-range intent.
// The path packs origin, DDMM departure, destination, DDMM return for
// round trips and a single adult passenger.
func searchURL(intent models.TravelIntent) string {
	var b strings.Builder
	b.WriteString("https://www.aviasales.ru/search/")
	b.WriteString(intent.Origin.Code)
	b.WriteString(intent.DepartDate.Format("0201"))
	b.WriteString(intent.Destination.Code)
	if !intent.OneWay && !intent.ReturnDate.IsZero() {
		b.WriteString(intent.ReturnDate.Format("0201"))
	}
	b.WriteString("1?filter_baggage=false&filter_stops=")
	if intent.DirectOnly {
		b.WriteString("false")
	} else {
		b.WriteString("true")
	}
	return b.String()
}
