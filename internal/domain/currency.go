package domain

// CurrencyQuote is one exchange-rate record as returned by the NBU API.
// Field names mirror the upstream JSON: rate is UAH per unit, exchangedate
// is in DD.MM.YYYY form.
type CurrencyQuote struct {
	R030         int     `json:"r030"`
	Txt          string  `json:"txt"`
	Rate         float64 `json:"rate"`
	CC           string  `json:"cc"`
	ExchangeDate string  `json:"exchangedate"`
}

// CurrencyRatesResponse is the reply of GET /currency-rates.
type CurrencyRatesResponse struct {
	Rates  []CurrencyQuote `json:"rates"`
	Date   string          `json:"date"`
	Source string          `json:"source"`
}

// CurrencySource is the fixed attribution string for rate responses.
const CurrencySource = "National Bank of Ukraine"
