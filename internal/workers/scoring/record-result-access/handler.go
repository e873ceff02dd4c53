// internal/workers/scoring/record-result-access/handler.go
package recordresultaccess

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/results"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-result-access"
)

type AccessRecorder interface {
	RecordView(ctx context.Context, resultID string) (*results.AccessCounts, error)
	RecordDownload(ctx context.Context, resultID string) (*results.AccessCounts, error)
}

type Handler struct {
	config   *Config
	recorder AccessRecorder
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, recorder AccessRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		recorder: recorder,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
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
	if input.UserTestResultID == "" {
		return nil, errors.NewInvalidInputError("userTestResultId is required")
	}

	var (
		counts *results.AccessCounts
		err    error
	)
	switch input.Kind {
	case KindView:
		counts, err = h.recorder.RecordView(ctx, input.UserTestResultID)
	case KindDownload:
		counts, err = h.recorder.RecordDownload(ctx, input.UserTestResultID)
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("kind must be %q or %q", KindView, KindDownload))
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		UserTestResultID: input.UserTestResultID,
		ViewCount:        counts.ViewCount,
		DownloadCount:    counts.DownloadCount,
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
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
