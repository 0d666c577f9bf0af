package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmytrop/nbu-agent/internal/adapter/llm"
	"github.com/dmytrop/nbu-agent/internal/adapter/nbu"
	"github.com/dmytrop/nbu-agent/internal/domain"
)

// CurrencyToolName is the function name the model calls for exchange rates.
const CurrencyToolName = "get_currency_rates"

const dateLayout = "20060102"

const noDataMessage = "No currency data available for the specified parameters."

// maxRangeDays caps how many days a start_date/end_date range may span.
const maxRangeDays = 31

// CurrencyToolDefinition describes the exchange-rate tool for the model.
func CurrencyToolDefinition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name: CurrencyToolName,
			Description: "Get official currency exchange rates from the National Bank of Ukraine. " +
				"Returns the rate of the given currency against UAH. " +
				"Omit valcode to get rates for all currencies.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"valcode": map[string]interface{}{
						"type":        "string",
						"description": "ISO 4217 currency code, e.g. USD, EUR, GBP. Omit for all currencies.",
					},
					"date": map[string]interface{}{
						"type":        "string",
						"description": "Date in YYYYMMDD format. Omit for the latest rates.",
					},
					"start_date": map[string]interface{}{
						"type":        "string",
						"description": "Range start in YYYYMMDD format. Use together with end_date.",
					},
					"end_date": map[string]interface{}{
						"type":        "string",
						"description": "Range end in YYYYMMDD format. Use together with start_date.",
					},
				},
				"required": []string{},
			},
		},
	}
}

type currencyArgs struct {
	Valcode   string `json:"valcode"`
	Date      string `json:"date"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RatesFetcher is the slice of the NBU client the currency tool needs.
type RatesFetcher interface {
	Fetch(ctx context.Context, valcode, date string) ([]domain.CurrencyQuote, error)
}

// NewCurrencyExecutor builds the executor for the exchange-rate tool.
// Upstream failures are reported to the model as text rather than errors,
// so the conversation can recover.
func NewCurrencyExecutor(fetcher RatesFetcher) Executor {
	return func(ctx context.Context, rawArgs json.RawMessage) (string, error) {
		var args currencyArgs
		if len(rawArgs) > 0 {
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return "", fmt.Errorf("invalid tool arguments: %w", err)
			}
		}

		if args.StartDate != "" || args.EndDate != "" {
			if args.Date != "" {
				return "Specify either date or start_date/end_date, not both.", nil
			}
			return fetchRange(ctx, fetcher, args)
		}

		quotes, err := fetcher.Fetch(ctx, args.Valcode, args.Date)
		if err != nil {
			var fe *nbu.FetchError
			if errors.As(err, &fe) {
				return fmt.Sprintf("NBU API error: %v", fe), nil
			}
			return "", err
		}
		if len(quotes) == 0 {
			return noDataMessage, nil
		}
		return nbu.FormatForModel(quotes, nbu.DefaultFormatLimit), nil
	}
}

func fetchRange(ctx context.Context, fetcher RatesFetcher, args currencyArgs) (string, error) {
	if args.StartDate == "" || args.EndDate == "" {
		return "Both start_date and end_date are required for a date range.", nil
	}
	start, err := time.Parse(dateLayout, args.StartDate)
	if err != nil {
		return fmt.Sprintf("Invalid start_date %q, expected YYYYMMDD.", args.StartDate), nil
	}
	end, err := time.Parse(dateLayout, args.EndDate)
	if err != nil {
		return fmt.Sprintf("Invalid end_date %q, expected YYYYMMDD.", args.EndDate), nil
	}
	if end.Before(start) {
		return "end_date must not be before start_date.", nil
	}
	if int(end.Sub(start).Hours()/24) >= maxRangeDays {
		return fmt.Sprintf("Date range too large, maximum is %d days.", maxRangeDays), nil
	}

	var parts []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		quotes, err := fetcher.Fetch(ctx, args.Valcode, day.Format(dateLayout))
		if err != nil {
			var fe *nbu.FetchError
			if errors.As(err, &fe) {
				return fmt.Sprintf("NBU API error: %v", fe), nil
			}
			return "", err
		}
		if len(quotes) == 0 {
			parts = append(parts, noDataMessage)
			continue
		}
		parts = append(parts, nbu.FormatForModel(quotes, nbu.DefaultFormatLimit))
	}
	return strings.Join(parts, "\n\n"), nil
}
