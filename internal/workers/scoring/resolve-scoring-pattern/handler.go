// internal/workers/scoring/resolve-scoring-pattern/handler.go
package resolvescoringpattern

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/resolver"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/validator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "resolve-scoring-pattern"
)

type PatternReader interface {
	GetByID(ctx context.Context, id string) (*models.ScoringPattern, error)
}

// Handler previews what a pattern produces for a set of scores. Nothing is
// persisted and usage counters are left alone.
type Handler struct {
	config   *Config
	patterns PatternReader
	engine   *resolver.Engine
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, patterns PatternReader, engine *resolver.Engine, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		patterns: patterns,
		engine:   engine,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	pattern, err := h.pattern(ctx, input)
	if err != nil {
		return nil, err
	}

	outcome, err := h.engine.Resolve(pattern, resolver.Input{
		Scores:         input.Scores,
		AggregateScore: input.AggregateScore,
		BoundCodes:     input.BoundCodes,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		ResultCode:    outcome.ResultCode(),
		FinalScore:    outcome.FinalScore(),
		PatternActive: pattern.IsActive,
		Outcome:       outcome,
	}, nil
}

// pattern loads the stored pattern, or builds a transient one from an inline
// type and configuration after validating it.
func (h *Handler) pattern(ctx context.Context, input *Input) (*models.ScoringPattern, error) {
	if input.PatternID != "" {
		return h.patterns.GetByID(ctx, input.PatternID)
	}
	if input.Type == "" || len(input.Configuration) == 0 {
		return nil, errors.NewInvalidInputError("either patternId or type and configuration are required")
	}

	category, ok := input.Type.Category()
	if !ok {
		return nil, errors.NewInvalidConfigurationError(string(input.Type),
			[]string{fmt.Sprintf("unknown pattern type %q", input.Type)})
	}
	if res := validator.Validate(input.Type, input.Configuration); !res.IsValid {
		return nil, errors.NewInvalidConfigurationError(string(input.Type), res.Errors)
	}

	now := time.Now().UTC()
	return &models.ScoringPattern{
		ID:            "preview",
		Name:          "preview",
		Category:      category,
		Type:          input.Type,
		Configuration: input.Configuration,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":     job.Key,
		"resultCode": output.ResultCode,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
