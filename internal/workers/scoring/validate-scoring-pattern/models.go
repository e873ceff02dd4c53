// internal/workers/scoring/validate-scoring-pattern/models.go
package validatescoringpattern

import (
	"encoding/json"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

type Input struct {
	Type          models.PatternType `json:"type"`
	Configuration json.RawMessage    `json:"configuration"`
}

type Output struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}
