// internal/workers/scoring/manage-scoring-pattern/config.go
package managescoringpattern

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
