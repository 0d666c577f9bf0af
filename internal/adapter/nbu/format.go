package nbu

import (
	"fmt"
	"strings"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

// DefaultFormatLimit caps how many currencies FormatForModel lists.
const DefaultFormatLimit = 30

// FormatForModel renders quotes as text for the model. A single quote
// becomes one sentence; multiple quotes become one line each up to limit,
// with an "and N more" suffix when truncated.
func FormatForModel(quotes []domain.CurrencyQuote, limit int) string {
	if len(quotes) == 0 {
		return "No currency data available."
	}

	if len(quotes) == 1 {
		q := quotes[0]
		return fmt.Sprintf("Currency rate from National Bank of Ukraine as of %s:\n%s (%s): %g UAH",
			q.ExchangeDate, q.Txt, q.CC, q.Rate)
	}

	n := len(quotes)
	shown := quotes
	if n > limit {
		shown = quotes[:limit]
	}
	lines := make([]string, 0, len(shown))
	for _, q := range shown {
		lines = append(lines, fmt.Sprintf("%s (%s): %g UAH", q.Txt, q.CC, q.Rate))
	}
	body := strings.Join(lines, "\n")
	if n > limit {
		body += fmt.Sprintf("\n... and %d more currencies", n-limit)
	}
	return fmt.Sprintf("Currency rates from National Bank of Ukraine as of %s:\n%s",
		quotes[0].ExchangeDate, body)
}
