// internal/workers/scoring/resolve-scoring-pattern/models.go
package resolvescoringpattern

import (
	"encoding/json"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

// Input either names a stored pattern or carries an unsaved one.
type Input struct {
	PatternID      string                 `json:"patternId,omitempty"`
	Type           models.PatternType     `json:"type,omitempty"`
	Configuration  json.RawMessage        `json:"configuration,omitempty"`
	Scores         models.ComponentScores `json:"scores"`
	AggregateScore *float64               `json:"aggregateScore"`
	BoundCodes     []string               `json:"boundCodes"`
}

type Output struct {
	ResultCode    string                    `json:"resultCode"`
	FinalScore    float64                   `json:"finalScore"`
	PatternActive bool                      `json:"patternActive"`
	Outcome       *models.ResolutionOutcome `json:"outcome"`
}
