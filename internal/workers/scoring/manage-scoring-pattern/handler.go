// internal/workers/scoring/manage-scoring-pattern/handler.go
package managescoringpattern

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/patterns"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "manage-scoring-pattern"
)

type Handler struct {
	config  *Config
	service *patterns.Service
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service *patterns.Service, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
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
	out := &Output{Operation: input.Operation}
	if input.Operation != OpCreate && input.Operation != OpList && input.PatternID == "" {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("patternId is required for %q", input.Operation))
	}

	var err error
	switch input.Operation {
	case OpCreate:
		if input.Pattern == nil {
			return nil, errors.NewInvalidInputError("pattern is required for create")
		}
		out.Pattern, err = h.service.Create(ctx, *input.Pattern)
	case OpGet:
		out.Pattern, err = h.service.Get(ctx, input.PatternID)
	case OpList:
		out.Patterns, err = h.service.List(ctx, input.Category)
	case OpUpdate:
		if input.Update == nil {
			return nil, errors.NewInvalidInputError("update is required for update")
		}
		out.Pattern, err = h.service.Update(ctx, input.PatternID, *input.Update)
	case OpToggleActive:
		out.Pattern, err = h.service.ToggleActive(ctx, input.PatternID)
	case OpDelete:
		err = h.service.Delete(ctx, input.PatternID)
		out.Deleted = err == nil
	case OpDuplicate:
		out.Pattern, err = h.service.Duplicate(ctx, input.PatternID, input.NewName)
	case OpRecordUsage:
		if err = h.service.RecordUsage(ctx, input.PatternID); err == nil {
			out.Pattern, err = h.service.Get(ctx, input.PatternID)
		}
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown operation %q", input.Operation))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
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
		"jobKey":    job.Key,
		"operation": output.Operation,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
