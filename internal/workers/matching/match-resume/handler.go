package matchresume

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/metrics"
	"resume-matcher/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = config.MatchResumeWorker

// Matcher runs one resume through the matching pipeline.
type Matcher interface {
	Match(ctx context.Context, upload pipeline.Upload, opts pipeline.Options) (*pipeline.Result, error)
}

type Handler struct {
	config  *Config
	matcher Matcher
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Matcher      Matcher
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Matcher == nil {
		return nil, fmt.Errorf("%s: matcher is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json", "stdout")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:  workerConfig,
		matcher: opts.Matcher,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}, nil
}

func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})
	log.Info("Processing resume match job", nil)
	ctx = logger.WithContext(ctx, log)

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return err
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	log.Info("Resume match job completed", map[string]interface{}{
		"matchCount":       len(output.Matches),
		"extractionStage":  output.ExtractionStage,
		"thresholdRelaxed": output.ThresholdRelaxed,
		"durationMs":       time.Since(start).Milliseconds(),
	})
	return nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("parse job variables: %v", err))
	}

	result, err := inputSchema.ValidateInput(variables)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidRequestError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("decode job variables: %v", err))
	}
	return &input, nil
}

// Execute decodes the resume and runs it through the pipeline.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	data, err := decodeResume(input.ResumeBase64)
	if err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("resumeBase64: %v", err))
	}
	if len(data) == 0 {
		return nil, errors.NewMissingFileError()
	}
	if h.config.MaxUploadBytes > 0 && int64(len(data)) > h.config.MaxUploadBytes {
		return nil, errors.NewFileTooLargeError(h.config.MaxUploadBytes)
	}

	opts := pipeline.Options{Debug: input.Debug}
	if input.Limit != nil {
		opts.Limit = max(*input.Limit, 1)
	}
	if input.MinScore != nil {
		opts.MinScore = *input.MinScore
	}

	res, err := h.matcher.Match(ctx, pipeline.Upload{
		Data:        data,
		FileName:    input.FileName,
		ContentType: input.ContentType,
	}, opts)
	if err != nil {
		return nil, err
	}

	return &Output{
		Matches: res.Matches,
		Candidate: Candidate{
			Skills:          res.Candidate.Skills,
			YearsExperience: res.Candidate.YearsExperience,
		},
		ExtractionStage:  res.Candidate.ExtractionStage,
		ThresholdRelaxed: res.ThresholdRelaxed,
	}, nil
}

// decodeResume accepts standard or unpadded base64, optionally behind a
// data URL prefix.
func decodeResume(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	encoded = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, encoded)

	if data, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		h.failJob(ctx, client, job, errors.NewInternalError(err))
		return err
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := errors.AsStandardError(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
