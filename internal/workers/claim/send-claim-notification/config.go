// internal/workers/claim/send-claim-notification/config.go
package sendclaimnotification

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout    time.Duration
	SMSEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		SMSEnabled: true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
