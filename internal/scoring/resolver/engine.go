// Package resolver applies a scoring pattern to a test-taker's scores.
package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/validator"
)

const maxSnippetBytes = 512

// Input is everything resolution needs besides the pattern.
type Input struct {
	// Scores drives flag-based patterns. Its order is the tie-break order
	// when priority rules are off.
	Scores models.ComponentScores `json:"scores,omitempty"`
	// AggregateScore drives range-based patterns.
	AggregateScore *float64 `json:"aggregateScore,omitempty"`
	// BoundCodes are the flag codes that participate for the test. Bound
	// codes missing from Scores rank with score 0; score codes outside the
	// bound set are ignored. When empty, every score code participates.
	BoundCodes []string `json:"boundCodes,omitempty"`
}

// Engine resolves patterns. It is safe for concurrent use.
type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "resolver"}),
	}
}

// Resolve validates the pattern's stored configuration and applies it.
// A configuration that no longer validates yields STALE_CONFIGURATION; a
// range pattern whose ranges miss the aggregate yields UNRESOLVABLE_SCORE.
func (e *Engine) Resolve(pattern *models.ScoringPattern, in Input) (*models.ResolutionOutcome, error) {
	cfg, err := e.parse(pattern)
	if err != nil {
		return nil, err
	}

	switch c := cfg.(type) {
	case *models.FlagConfiguration:
		flags := RankFlags(c, in.Scores, in.BoundCodes)
		metrics.ScoringResolutions.WithLabelValues(string(models.CategoryFlagBased), "matched").Inc()
		e.logger.Debug("flag pattern resolved", map[string]interface{}{
			"patternId": pattern.ID,
			"flags":     flags,
		})
		return &models.ResolutionOutcome{
			PatternID:      pattern.ID,
			Category:       models.CategoryFlagBased,
			Flags:          flags,
			Matched:        true,
			AggregateScore: in.AggregateScore,
		}, nil

	case *models.RangeConfiguration:
		if in.AggregateScore == nil {
			return nil, errors.NewInvalidInputError(
				fmt.Sprintf("aggregate score is required for range-based pattern %s", pattern.ID))
		}
		return e.resolveRange(pattern, c, *in.AggregateScore)
	}

	return nil, errors.NewStaleConfigurationError(pattern.ID, snippet(pattern.Configuration),
		[]string{fmt.Sprintf("unsupported configuration %T", cfg)})
}

func (e *Engine) parse(pattern *models.ScoringPattern) (models.Configuration, error) {
	cfg, res := validator.Parse(pattern.Type, pattern.Configuration)
	violations := res.Errors
	if res.IsValid {
		if want, _ := pattern.Type.Category(); pattern.Category != "" && pattern.Category != want {
			violations = []string{fmt.Sprintf("category %q does not match type %q", pattern.Category, pattern.Type)}
		}
	}
	if len(violations) == 0 {
		return cfg, nil
	}

	metrics.ScoringResolutions.WithLabelValues(string(pattern.Category), "stale").Inc()
	e.logger.Error("stored pattern configuration failed validation", map[string]interface{}{
		"patternId":     pattern.ID,
		"type":          pattern.Type,
		"errors":        violations,
		"configuration": snippet(pattern.Configuration),
	})
	return nil, errors.NewStaleConfigurationError(pattern.ID, snippet(pattern.Configuration), violations)
}

func (e *Engine) resolveRange(pattern *models.ScoringPattern, cfg *models.RangeConfiguration, score float64) (*models.ResolutionOutcome, error) {
	matched, count := MatchRange(cfg.Ranges, score)
	if count == 0 {
		metrics.ScoringResolutions.WithLabelValues(string(models.CategoryRangeBased), "unmatched").Inc()
		e.logger.Info("score outside all ranges", map[string]interface{}{
			"patternId": pattern.ID,
			"score":     score,
		})
		return nil, errors.NewUnresolvableScoreError(pattern.ID, score)
	}

	if count > 1 {
		metrics.ScoringRangeOverlapEvents.Inc()
		e.logger.Error("data integrity: score matched multiple ranges, using first declared", map[string]interface{}{
			"patternId":     pattern.ID,
			"score":         score,
			"matches":       count,
			"selected":      matched.Label,
			"configuration": snippet(pattern.Configuration),
		})
	}

	metrics.ScoringResolutions.WithLabelValues(string(models.CategoryRangeBased), "matched").Inc()
	agg := score
	return &models.ResolutionOutcome{
		PatternID:      pattern.ID,
		Category:       models.CategoryRangeBased,
		Range:          matched,
		Filter:         cfg.Filter,
		Matched:        true,
		AggregateScore: &agg,
	}, nil
}

func snippet(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	if buf.Len() > maxSnippetBytes {
		return buf.String()[:maxSnippetBytes] + "..."
	}
	return buf.String()
}
