// Package nbu provides a client for the National Bank of Ukraine
// exchange-rate API.
//
// API reference: https://bank.gov.ua/ua/open-data/api-dev
package nbu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

const exchangePath = "/NBUStatService/v1/statdirectory/exchange"

// FetchError is returned when the NBU API cannot produce usable rates:
// transport failure, non-2xx status, or a payload that is not the expected
// JSON array.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("NBU API %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("NBU API %s", e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches exchange rates from the NBU API.
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient creates a new NBU client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    client,
	}
}

// Fetch retrieves exchange rates. An empty valcode returns all currencies
// for the date; an empty date means the latest available rates. date is in
// YYYYMMDD form.
func (c *Client) Fetch(ctx context.Context, valcode, date string) ([]domain.CurrencyQuote, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("json", "")
	if valcode != "" {
		req.SetQueryParam("valcode", strings.ToUpper(valcode))
	}
	if date != "" {
		req.SetQueryParam("date", date)
	}

	resp, err := req.Get(c.baseURL + exchangePath)
	if err != nil {
		return nil, &FetchError{Reason: "request failed", Err: err}
	}
	if resp.IsError() {
		return nil, &FetchError{Reason: fmt.Sprintf("HTTP error: %d - %s", resp.StatusCode(), resp.String())}
	}

	// The API answers errors with a JSON object; rates always arrive as an
	// array.
	var quotes []domain.CurrencyQuote
	if err := json.Unmarshal(resp.Body(), &quotes); err != nil {
		return nil, &FetchError{Reason: "unexpected response format", Err: err}
	}
	return quotes, nil
}
