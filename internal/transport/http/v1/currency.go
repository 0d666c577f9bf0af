package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmytrop/nbu-agent/internal/adapter/nbu"
)

// GetCurrencyRates fetches exchange rates directly from the NBU API.
// GET /currency-rates?valcode=EUR&date=20250804
//
// Without a valcode query key the endpoint defaults to USD; an explicitly
// empty valcode requests all currencies.
func (h *Handler) GetCurrencyRates(c echo.Context) error {
	valcode := "USD"
	if values, ok := c.QueryParams()["valcode"]; ok && len(values) > 0 {
		valcode = values[0]
	}
	date := c.QueryParam("date")

	resp, err := h.service.Rates(c.Request().Context(), valcode, date)
	if err != nil {
		var fe *nbu.FetchError
		if errors.As(err, &fe) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": fe.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// TestTool runs the exchange-rate tool directly, returning the text the
// model would receive.
// POST /test-tool?valcode=USD
func (h *Handler) TestTool(c echo.Context) error {
	valcode := c.QueryParam("valcode")
	if valcode == "" {
		valcode = "USD"
	}

	result, err := h.service.TestTool(c.Request().Context(), valcode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"tool":   "get_currency_rates",
		"result": result,
	})
}
