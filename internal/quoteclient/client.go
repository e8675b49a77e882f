// Package quoteclient fetches spot exchange rates from the Coinbase price API.
package quoteclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/domain"
)

// DefaultBaseURL is the Coinbase prices endpoint.
const DefaultBaseURL = "https://api.coinbase.com/v2/prices"

// Client is a Coinbase spot price client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type spotResponse struct {
	Data struct {
		Base     string `json:"base"`
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
	} `json:"data"`
}

// GetQuote returns how many units of quote one unit of base buys.
// Every failure is reported as domain.ErrQuoteUnavailable.
func (c *Client) GetQuote(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	url := fmt.Sprintf("%s/%s-%s/spot", c.baseURL, strings.ToUpper(base), strings.ToUpper(quote))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Decimal{}, fmt.Errorf("%w: status %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}

	var body spotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}

	rate, err := decimal.NewFromString(body.Data.Amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q", domain.ErrQuoteUnavailable, body.Data.Amount)
	}

	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %s", domain.ErrQuoteUnavailable, rate)
	}

	l.Debug().Str("pair", base+"-"+quote).Str("rate", rate.String()).Msg("quote fetched")

	return rate, nil
}
