// internal/workers/scoring/assign-test-result/models.go
package assigntestresult

import "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

type Input struct {
	TestAttemptID  string                 `json:"testAttemptId"`
	TestID         string                 `json:"testId"`
	UserID         string                 `json:"userId"`
	PatternID      string                 `json:"patternId"`
	Scores         models.ComponentScores `json:"scores"`
	AggregateScore *float64               `json:"aggregateScore"`
	BoundCodes     []string               `json:"boundCodes"`
}

type Output struct {
	UserTestResultID    string                  `json:"userTestResultId"`
	ResultID            *string                 `json:"resultId"`
	PatternID           string                  `json:"patternId"`
	GeneratedResultCode string                  `json:"generatedResultCode"`
	Title               string                  `json:"title"`
	Description         string                  `json:"description"`
	FinalScore          float64                 `json:"finalScore"`
	GenerationMethod    models.GenerationMethod `json:"generationMethod"`
	CreatedAt           string                  `json:"createdAt"` // ISO 8601
}
