// Package assignment turns a completed test attempt into a final result.
package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/observability"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/patterns"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/resolver"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/results"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const fallbackUnresolvable = "unresolvable_score"

// Request identifies the attempt and carries its scores. PatternID may be
// empty when a PatternLocator is configured.
type Request struct {
	TestAttemptID  string                 `json:"testAttemptId"`
	TestID         string                 `json:"testId"`
	UserID         string                 `json:"userId"`
	PatternID      string                 `json:"patternId,omitempty"`
	Scores         models.ComponentScores `json:"scores,omitempty"`
	AggregateScore *float64               `json:"aggregateScore,omitempty"`
	BoundCodes     []string               `json:"boundCodes,omitempty"`
}

// PatternLocator finds the pattern bound to a test.
type PatternLocator interface {
	ActivePatternForTest(ctx context.Context, testID string) (string, error)
}

type Config struct {
	NoMatchResultCode         string
	UsageRetryAttempts        int
	UsageRetryInitialInterval time.Duration
}

// Dependencies of the service. Indexer, Locator and Observability are optional.
type Dependencies struct {
	Patterns      patterns.Store
	Results       results.Store
	Catalog       results.Catalog
	Engine        *resolver.Engine
	Indexer       results.Indexer
	Locator       PatternLocator
	Observability *observability.Observability
}

type Service struct {
	deps   Dependencies
	config Config
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(deps Dependencies, cfg Config, log logger.Logger) *Service {
	if cfg.NoMatchResultCode == "" {
		cfg.NoMatchResultCode = "NO_MATCH"
	}
	if cfg.UsageRetryAttempts < 1 {
		cfg.UsageRetryAttempts = 3
	}
	if cfg.UsageRetryInitialInterval <= 0 {
		cfg.UsageRetryInitialInterval = 100 * time.Millisecond
	}
	return &Service{
		deps:   deps,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "assignment"}),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

type patternSnapshot struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          models.PatternType `json:"type"`
	Configuration json.RawMessage    `json:"configuration"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type calculationDetails struct {
	Pattern        patternSnapshot           `json:"pattern"`
	Scores         models.ComponentScores    `json:"scores"`
	AggregateScore *float64                  `json:"aggregateScore,omitempty"`
	BoundCodes     []string                  `json:"boundCodes,omitempty"`
	Outcome        *models.ResolutionOutcome `json:"outcome,omitempty"`
	LookupKeys     []string                  `json:"lookupKeys"`
	MatchedKey     string                    `json:"matchedKey,omitempty"`
	FallbackReason string                    `json:"fallbackReason,omitempty"`
}

// Assign resolves the attempt's scores and persists exactly one final result
// per attempt. Calling it again for the same attempt returns the stored
// result without re-resolving.
func (s *Service) Assign(ctx context.Context, req Request) (*models.UserTestResult, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.deps.Results.GetByAttempt(ctx, req.TestAttemptID)
	if err == nil {
		s.logger.Info("result already assigned", map[string]interface{}{
			"testAttemptId": req.TestAttemptID,
			"resultId":      existing.ID,
		})
		return existing, nil
	}
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	pattern, err := s.loadPattern(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.build(ctx, req, pattern)
	if err != nil {
		return nil, err
	}

	stored, created, err := s.deps.Results.Create(ctx, result)
	if err != nil {
		return nil, err
	}
	if !created {
		return stored, nil
	}

	s.incrementUsage(ctx, pattern.ID)

	metrics.ScoringAssignments.WithLabelValues(string(stored.GenerationMethod)).Inc()
	s.deps.Observability.RecordAssignment(ctx, string(stored.GenerationMethod), time.Since(start))
	s.index(ctx, stored)

	s.logger.Info("result assigned", map[string]interface{}{
		"testAttemptId":    stored.TestAttemptID,
		"resultId":         stored.ID,
		"patternId":        stored.PatternID,
		"resultCode":       stored.GeneratedResultCode,
		"generationMethod": stored.GenerationMethod,
	})
	return stored, nil
}

func validateRequest(req Request) error {
	var missing []string
	if strings.TrimSpace(req.TestAttemptID) == "" {
		missing = append(missing, "testAttemptId")
	}
	if strings.TrimSpace(req.TestID) == "" {
		missing = append(missing, "testId")
	}
	if strings.TrimSpace(req.UserID) == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return errors.NewInvalidInputError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) loadPattern(ctx context.Context, req Request) (*models.ScoringPattern, error) {
	patternID := req.PatternID
	if patternID == "" {
		if s.deps.Locator == nil {
			return nil, errors.NewInvalidInputError("patternId is required")
		}
		id, err := s.deps.Locator.ActivePatternForTest(ctx, req.TestID)
		if err != nil {
			return nil, err
		}
		patternID = id
	}

	pattern, err := s.deps.Patterns.GetByID(ctx, patternID)
	if err != nil {
		return nil, err
	}
	if !pattern.IsActive {
		return nil, errors.NewPatternInactiveError(pattern.ID)
	}
	return pattern, nil
}

func (s *Service) build(ctx context.Context, req Request, pattern *models.ScoringPattern) (*models.UserTestResult, error) {
	details := calculationDetails{
		Pattern: patternSnapshot{
			ID:            pattern.ID,
			Name:          pattern.Name,
			Type:          pattern.Type,
			Configuration: pattern.Configuration,
			UpdatedAt:     pattern.UpdatedAt,
		},
		Scores:         req.Scores,
		AggregateScore: req.AggregateScore,
		BoundCodes:     req.BoundCodes,
	}
	if details.Scores == nil {
		details.Scores = models.ComponentScores{}
	}

	outcome, err := s.deps.Engine.Resolve(pattern, resolver.Input{
		Scores:         req.Scores,
		AggregateScore: req.AggregateScore,
		BoundCodes:     req.BoundCodes,
	})

	var (
		code       string
		codes      []string
		finalScore float64
		method     models.GenerationMethod
		flags      = []models.RankedFlag{}
	)
	switch {
	case errors.HasCode(err, errors.ErrCodeUnresolvableScore):
		s.logger.Warn("score outside every range, using no-match result", map[string]interface{}{
			"patternId":      pattern.ID,
			"aggregateScore": req.AggregateScore,
		})
		code = s.config.NoMatchResultCode
		codes = []string{code}
		details.LookupKeys = []string{code}
		details.FallbackReason = fallbackUnresolvable
		finalScore = *req.AggregateScore
		method = models.GenerationRangeBased
	case err != nil:
		return nil, err
	case outcome.Category == models.CategoryFlagBased:
		details.Outcome = outcome
		codes = outcome.FlagCodes()
		code = outcome.ResultCode()
		finalScore = outcome.FinalScore()
		flags = outcome.Flags
		details.LookupKeys = []string{code}
		method = models.GenerationFlagBased
	default:
		details.Outcome = outcome
		code = outcome.ResultCode()
		codes = []string{code}
		details.LookupKeys = []string{code}
		if outcome.Filter != "" {
			details.LookupKeys = append(details.LookupKeys, outcome.Filter+"-"+code)
		}
		finalScore = outcome.FinalScore()
		method = models.GenerationRangeBased
	}

	result := &models.UserTestResult{
		ID:                  s.newID(),
		TestAttemptID:       req.TestAttemptID,
		TestID:              req.TestID,
		UserID:              req.UserID,
		PatternID:           pattern.ID,
		GeneratedResultCode: code,
		FinalScore:          finalScore,
		GenerationMethod:    method,
		IsFinal:             true,
		CreatedAt:           s.now(),
	}

	entry, key := s.lookup(ctx, req.TestID, details.LookupKeys)
	if entry != nil {
		id := entry.ID
		result.ResultID = &id
		result.Title = entry.Title
		result.Description = entry.Description
		details.MatchedKey = key
	} else {
		result.GenerationMethod = models.GenerationHybrid
		result.Title = code
		result.Description = s.describe(ctx, req.TestID, codes)
	}

	combination, err := json.Marshal(flags)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("encode component combination: %v", err))
	}
	result.ComponentCombination = combination

	raw, err := json.Marshal(details)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("encode calculation details: %v", err))
	}
	result.CalculationDetails = raw
	return result, nil
}

// lookup tries keys in order against the catalog. Catalog failures are
// treated as a miss so the attempt still gets a result.
func (s *Service) lookup(ctx context.Context, testID string, keys []string) (*models.TestResult, string) {
	for _, key := range keys {
		entry, err := s.deps.Catalog.FindByCode(ctx, testID, key)
		if err == nil {
			return entry, key
		}
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			s.logger.Warn("result catalog lookup failed", map[string]interface{}{
				"testId": testID,
				"key":    key,
				"error":  err.Error(),
			})
			return nil, ""
		}
	}
	return nil, ""
}

func (s *Service) describe(ctx context.Context, testID string, codes []string) string {
	components, err := s.deps.Catalog.ComponentsByCodes(ctx, testID, codes)
	if err != nil {
		s.logger.Warn("component lookup failed", map[string]interface{}{
			"testId": testID,
			"error":  err.Error(),
		})
	}
	if len(components) == 0 {
		return strings.Join(codes, ", ")
	}
	titles := make([]string, len(components))
	for i, c := range components {
		titles[i] = c.Title
	}
	return strings.Join(titles, ", ")
}

// incrementUsage retries transient failures with exponential backoff. A
// counter that still cannot be written is logged and counted, never
// surfaced to the caller.
func (s *Service) incrementUsage(ctx context.Context, patternID string) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.UsageRetryInitialInterval
	retries := backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(s.config.UsageRetryAttempts-1)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := s.deps.Patterns.IncrementUsage(ctx, patternID, s.now())
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, retries)
	if err != nil {
		metrics.ScoringUsageIncrementFailures.Inc()
		s.logger.Error("pattern usage increment dropped", map[string]interface{}{
			"patternId": patternID,
			"attempts":  attempts,
			"error":     err.Error(),
		})
	}
}

func (s *Service) index(ctx context.Context, r *models.UserTestResult) {
	if s.deps.Indexer == nil {
		return
	}
	if err := s.deps.Indexer.Index(ctx, r); err != nil {
		s.logger.Warn("result indexing failed", map[string]interface{}{
			"resultId": r.ID,
			"error":    err.Error(),
		})
	}
}

// RecordView counts one view of a stored result.
func (s *Service) RecordView(ctx context.Context, resultID string) (*results.AccessCounts, error) {
	return s.deps.Results.RecordView(ctx, resultID)
}

// RecordDownload counts one download of a stored result.
func (s *Service) RecordDownload(ctx context.Context, resultID string) (*results.AccessCounts, error) {
	return s.deps.Results.RecordDownload(ctx, resultID)
}
