package enrich

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/discord7/stocky/src/connectors"
	"github.com/discord7/stocky/src/model"
)

// QuoteFetcher is the market data capability the enricher needs. Absence of
// any quote field is a valid response, not an error.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*connectors.Quote, error)
}

// Enricher fills current prices and quote metrics into a batch of positions.
// Fetches run concurrently, one per distinct ticker, bounded by maxInFlight;
// the batch does not move forward until every fetch has returned or failed.
type Enricher struct {
	fetcher      QuoteFetcher
	maxInFlight  int
	fetchTimeout time.Duration
}

func NewEnricher(fetcher QuoteFetcher) *Enricher {
	cfg := GetConfig()
	return NewEnricherWithLimits(fetcher, cfg.MaxInFlight, cfg.FetchTimeout)
}

func NewEnricherWithLimits(fetcher QuoteFetcher, maxInFlight int, fetchTimeout time.Duration) *Enricher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Enricher{
		fetcher:      fetcher,
		maxInFlight:  maxInFlight,
		fetchTimeout: fetchTimeout,
	}
}

// Enrich sets CurrentPrice, PERatio and DividendYield on every position in the
// batch. Per-ticker failures fall back to the position's average price and are
// never escalated; cash positions bypass the network entirely.
func (e *Enricher) Enrich(ctx context.Context, positions []*model.Position) {
	quotes := e.fetchAll(ctx, distinctTickers(positions))

	for _, p := range positions {
		if p.IsCash() {
			zero := 0.0
			p.CurrentPrice = 1
			p.DividendYield = &zero
			p.PERatio = nil
			continue
		}

		if q, ok := quotes[p.Ticker]; ok && q.Price != nil {
			p.CurrentPrice = *q.Price
			p.PERatio = q.PERatio
			p.DividendYield = q.DividendYield
			continue
		}

		// No usable quote for this ticker: value it at cost.
		p.CurrentPrice = p.AvgPrice
		p.PERatio = nil
		p.DividendYield = nil
	}
}

func (e *Enricher) fetchAll(ctx context.Context, tickers []string) map[string]*connectors.Quote {
	sem := make(chan struct{}, e.maxInFlight)
	var wg sync.WaitGroup
	var mu sync.Mutex
	quotes := make(map[string]*connectors.Quote, len(tickers))

	for _, ticker := range tickers {
		sem <- struct{}{}
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()

			quote, err := e.fetcher.FetchQuote(fetchCtx, ticker)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"component": "Enricher",
					"ticker":    ticker,
				}).WithError(err).Warn("Quote fetch failed, position will fall back to avg price")
				return
			}

			mu.Lock()
			quotes[ticker] = quote
			mu.Unlock()
		}(ticker)
	}

	// Barrier: every fetch has either returned or definitively failed.
	wg.Wait()

	return quotes
}

func distinctTickers(positions []*model.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		if p.IsCash() {
			continue
		}
		if _, ok := seen[p.Ticker]; ok {
			continue
		}
		seen[p.Ticker] = struct{}{}
		tickers = append(tickers, p.Ticker)
	}
	return tickers
}
