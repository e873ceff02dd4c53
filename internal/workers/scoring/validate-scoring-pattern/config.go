// internal/workers/scoring/validate-scoring-pattern/config.go
package validatescoringpattern

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
