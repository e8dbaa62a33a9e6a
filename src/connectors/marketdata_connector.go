package connectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

// Quote is the provider's answer for one ticker. Any field may be absent;
// a quote with no price is a valid response, not an error.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}

// MarketDataClient is a REST client for the quote provider.
type MarketDataClient struct {
	http *resty.Client
}

func NewMarketDataClient(baseURL, apiKey string, timeout time.Duration) *MarketDataClient {
	if strings.TrimSpace(baseURL) == "" {
		cfg := GetConfig()
		baseURL = cfg.BaseURL
		logger.Warnf("No market data base URL provided, using default: %s", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	if apiKey != "" {
		httpClient.SetHeader("X-API-Key", apiKey)
	}

	return &MarketDataClient{http: httpClient}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

// FetchQuote returns the current quote for one ticker symbol.
func (c *MarketDataClient) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&quote).
		Get("/api/v1/quote")
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("quote provider returned status %d for %s", resp.StatusCode(), symbol)
	}

	return &quote, nil
}
