package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL string        `envconfig:"MARKETDATA_BASE_URL" default:"http://localhost:4100"`
	APIKey  string        `envconfig:"MARKETDATA_API_KEY" default:""`
	Timeout time.Duration `envconfig:"MARKETDATA_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
