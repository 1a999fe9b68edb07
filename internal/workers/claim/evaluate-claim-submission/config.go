// internal/workers/claim/evaluate-claim-submission/config.go
package evaluateclaimsubmission

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
