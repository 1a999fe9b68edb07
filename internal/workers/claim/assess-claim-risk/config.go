// internal/workers/claim/assess-claim-risk/config.go
package assessclaimrisk

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 2 * time.Second,
	}
}
