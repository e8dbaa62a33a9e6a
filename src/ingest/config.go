package ingest

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Ticker prefixes identifying cash-sweep / money-market rows. Brokers vary
	// their naming, so this is configuration rather than a constant.
	CashTickerPrefixes []string `envconfig:"CASH_TICKER_PREFIXES" default:"CORE,FCASH"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
