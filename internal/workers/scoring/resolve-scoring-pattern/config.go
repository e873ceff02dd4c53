// internal/workers/scoring/resolve-scoring-pattern/config.go
package resolvescoringpattern

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
