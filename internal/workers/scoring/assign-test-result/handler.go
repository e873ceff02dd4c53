// internal/workers/scoring/assign-test-result/handler.go
package assigntestresult

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/assignment"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assign-test-result"
)

// Assigner is satisfied by *assignment.Service.
type Assigner interface {
	Assign(ctx context.Context, req assignment.Request) (*models.UserTestResult, error)
}

type Handler struct {
	config   *Config
	assigner Assigner
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, assigner Assigner, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		assigner: assigner,
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
	result, err := h.assigner.Assign(ctx, assignment.Request{
		TestAttemptID:  input.TestAttemptID,
		TestID:         input.TestID,
		UserID:         input.UserID,
		PatternID:      input.PatternID,
		Scores:         input.Scores,
		AggregateScore: input.AggregateScore,
		BoundCodes:     input.BoundCodes,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		UserTestResultID:    result.ID,
		ResultID:            result.ResultID,
		PatternID:           result.PatternID,
		GeneratedResultCode: result.GeneratedResultCode,
		Title:               result.Title,
		Description:         result.Description,
		FinalScore:          result.FinalScore,
		GenerationMethod:    result.GenerationMethod,
		CreatedAt:           result.CreatedAt.UTC().Format(time.RFC3339),
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":           job.Key,
		"resultCode":       output.GeneratedResultCode,
		"generationMethod": output.GenerationMethod,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
