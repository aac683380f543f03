package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/no-ctrl/CSP/internal/domain"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetchPrimary asks the simple-price endpoint for one symbol:
// GET {base}?ids={id}&vs_currencies=usd -> {"bitcoin":{"usd":97123.45}}
func (o *Oracle) fetchPrimary(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	id, ok := externalIDs[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("no external id for %s", currency)
	}

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.PrimaryAPI+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("primary source status %d", resp.StatusCode)
	}

	// json.Number keeps the exact decimal representation.
	var doc map[string]map[string]json.Number
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("decode primary response: %w", err)
	}

	raw, ok := doc[id]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("primary response missing %s.usd", id)
	}
	return validatePrice(raw.String())
}

// coinbaseRates is the fallback's USD rate table envelope.
type coinbaseRates struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

// fetchFallback pulls the whole USD rate table and extracts the symbol.
func (o *Oracle) fetchFallback(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.FallbackAPI+"?currency=USD", nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fallback source status %d", resp.StatusCode)
	}

	var doc coinbaseRates
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("decode fallback response: %w", err)
	}

	raw, ok := doc.Data.Rates[currency.String()]
	if !ok {
		return decimal.Zero, fmt.Errorf("fallback table missing %s", currency)
	}
	return validatePrice(raw)
}

// validatePrice enforces the shape contract: a quote that is not a positive
// finite decimal must never replace a previously good one.
func validatePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("non-numeric price %q", raw)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price %q", raw)
	}
	return price, nil
}
