// Package extraction turns an uploaded resume into plain text.
package extraction

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/metrics"
	"resume-matcher/internal/common/observability"
)

type Result struct {
	Text string
	Kind Kind
	// Stage names the strategy whose output was kept; empty when nothing was read.
	Stage string
}

type Extractor struct {
	minTextLength int
	stages        []Strategy
	ocr           Strategy
	logger        logger.Logger
	obs           *observability.Observability
}

// New builds the production cascade. ocrStage may be nil to disable OCR.
func New(cfg config.ExtractionConfig, ocrStage Strategy, log logger.Logger, obs *observability.Observability) *Extractor {
	stages := []Strategy{
		&Pdftotext{
			Path:    cfg.PdftotextPath,
			Timeout: time.Duration(cfg.PdftotextTimeout) * time.Millisecond,
			TempDir: cfg.TempDir,
		},
		PlainText{},
		PageText{},
	}
	return NewWithStrategies(cfg.MinTextLength, stages, ocrStage, log, obs)
}

func NewWithStrategies(minTextLength int, stages []Strategy, ocrStage Strategy, log logger.Logger, obs *observability.Observability) *Extractor {
	return &Extractor{
		minTextLength: minTextLength,
		stages:        stages,
		ocr:           ocrStage,
		logger:        log.WithFields(map[string]interface{}{"component": "extraction"}),
		obs:           obs,
	}
}

// Extract fails only for unsupported uploads, unrecoverable DOCX conversion
// and cancellation. Poor PDF text degrades to short or empty Result.Text.
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName, contentType string) (*Result, error) {
	kind, err := Sniff(data, fileName, contentType)
	if err != nil {
		return nil, err
	}

	if kind == KindDOCX {
		start := time.Now()
		text, err := docxText(data)
		if err != nil {
			e.record(ctx, StageDOCX, metrics.StageError, start)
			return nil, errors.NewExtractionFailedError(err)
		}
		e.record(ctx, StageDOCX, outcomeOf(text, 1), start)
		return &Result{Text: text, Kind: kind, Stage: StageDOCX}, nil
	}

	return e.extractPDF(ctx, data)
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*Result, error) {
	best := &Result{Kind: KindPDF}
	bestLen := 0

	for _, stage := range e.stages {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewExtractionFailedError(err)
		}

		text := e.run(ctx, stage, data, e.minTextLength)
		n := textLength(text)
		if n >= e.minTextLength {
			return &Result{Text: text, Kind: KindPDF, Stage: stage.Name()}, nil
		}
		if n > bestLen {
			best.Text, best.Stage, bestLen = text, stage.Name(), n
		}
	}

	if e.ocr == nil {
		metrics.ExtractionStages.WithLabelValues(StageOCR, metrics.StageSkipped).Inc()
		return best, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewExtractionFailedError(err)
	}

	if text := e.run(ctx, e.ocr, data, 1); textLength(text) > 0 {
		return &Result{Text: text, Kind: KindPDF, Stage: e.ocr.Name()}, nil
	}
	return best, nil
}

// run executes one stage. Its errors stay here: logged, counted, and reported
// as empty output.
func (e *Extractor) run(ctx context.Context, stage Strategy, data []byte, threshold int) string {
	ctx, span := e.obs.StartSpan(ctx, "extraction."+stage.Name(), attribute.Int("bytes", len(data)))
	defer span.End()

	start := time.Now()
	text, err := stage.Extract(ctx, data)
	if err != nil {
		span.RecordError(err)
		e.record(ctx, stage.Name(), metrics.StageError, start)
		e.logger.Warn("extraction stage failed", map[string]interface{}{
			"stage": stage.Name(),
			"error": err.Error(),
		})
		return ""
	}

	outcome := outcomeOf(text, threshold)
	e.record(ctx, stage.Name(), outcome, start)
	span.SetAttributes(attribute.Int("textLength", textLength(text)), attribute.String("outcome", outcome))
	e.logger.Debug("extraction stage finished", map[string]interface{}{
		"stage":      stage.Name(),
		"outcome":    outcome,
		"textLength": textLength(text),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return text
}

func (e *Extractor) record(ctx context.Context, stage, outcome string, start time.Time) {
	metrics.ExtractionStages.WithLabelValues(stage, outcome).Inc()
	e.obs.RecordStageDuration(ctx, stage, outcome, time.Since(start))
}

func outcomeOf(text string, threshold int) string {
	n := textLength(text)
	switch {
	case n == 0:
		return metrics.StageEmpty
	case n < threshold:
		return metrics.StageShort
	}
	return metrics.StageAccepted
}

func textLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
