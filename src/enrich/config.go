package enrich

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Upper bound on in-flight quote fetches per batch, to avoid overwhelming
	// the market data provider.
	MaxInFlight  int           `envconfig:"QUOTE_MAX_IN_FLIGHT" default:"8"`
	FetchTimeout time.Duration `envconfig:"QUOTE_FETCH_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
