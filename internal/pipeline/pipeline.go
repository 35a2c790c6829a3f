// Package pipeline runs an uploaded resume through extraction, skill
// detection and scoring against the job catalog.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"resume-matcher/internal/catalog"
	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/metrics"
	"resume-matcher/internal/common/observability"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/models"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/skills"
)

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileName, contentType string) (*extraction.Result, error)
}

type Upload struct {
	Data        []byte
	FileName    string
	ContentType string
}

// Options of a single match. A zero Limit means the configured default.
type Options struct {
	Limit    int
	MinScore int
	Debug    bool
}

type Result struct {
	Matches []models.MatchResult
	// ThresholdRelaxed is set when nothing met MinScore and the top results
	// were returned anyway.
	ThresholdRelaxed bool
	Candidate        models.CandidateSummary
}

type Pipeline struct {
	extractor TextExtractor
	skills    *skills.Extractor
	scorer    *scoring.Scorer
	catalog   *catalog.Catalog
	cfg       config.MatchingConfig
	logger    logger.Logger
	obs       *observability.Observability
}

func New(extractor TextExtractor, cat *catalog.Catalog, scorer *scoring.Scorer, cfg config.MatchingConfig, log logger.Logger, obs *observability.Observability) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		skills:    skills.New(cat.Tags()...),
		scorer:    scorer,
		catalog:   cat,
		cfg:       cfg,
		logger:    log,
		obs:       obs,
	}
}

// ClampOptions applies defaults and bounds: limit in [1, max_limit], minScore in [0, 100].
func (p *Pipeline) ClampOptions(opts Options) Options {
	if opts.Limit <= 0 {
		opts.Limit = p.cfg.DefaultLimit
	}
	if opts.Limit > p.cfg.MaxLimit {
		opts.Limit = p.cfg.MaxLimit
	}
	if opts.Limit < 1 {
		opts.Limit = 1
	}
	if opts.MinScore < 0 {
		opts.MinScore = 0
	}
	if opts.MinScore > 100 {
		opts.MinScore = 100
	}
	return opts
}

func (p *Pipeline) Match(ctx context.Context, upload Upload, opts Options) (*Result, error) {
	start := time.Now()
	res, err := p.match(ctx, upload, p.ClampOptions(opts))

	outcome := "matched"
	switch {
	case err != nil:
		outcome = strings.ToLower(string(errors.AsStandardError(err).Code))
	case res.ThresholdRelaxed:
		outcome = "relaxed"
	}
	metrics.MatchRequests.WithLabelValues(outcome).Inc()
	p.obs.RecordMatchDuration(ctx, time.Since(start), outcome)
	return res, err
}

func (p *Pipeline) match(ctx context.Context, upload Upload, opts Options) (*Result, error) {
	log := logger.FromContext(ctx, p.logger)

	if len(upload.Data) == 0 {
		return nil, errors.NewMissingFileError()
	}

	extracted, err := p.extractor.Extract(ctx, upload.Data, upload.FileName, upload.ContentType)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		if stdErr.Code == errors.ErrCodeInternal {
			stdErr = errors.NewExtractionFailedError(err)
		}
		return nil, stdErr.WithMetadata("fileName", upload.FileName)
	}

	text := strings.TrimSpace(extracted.Text)
	if text == "" {
		return nil, errors.NewExtractionYieldedNothingError(fmt.Sprintf("no text found in %s upload", extracted.Kind)).
			WithMetadata("fileName", upload.FileName).
			WithMetadata("extractionStage", extracted.Stage)
	}

	profile := models.CandidateProfile{
		RawText:         text,
		Skills:          p.skills.Extract(text),
		YearsExperience: skills.ExtractYears(text),
	}
	summary := models.CandidateSummary{
		Skills:          profile.Skills,
		YearsExperience: profile.YearsExperience,
		ExtractionStage: extracted.Stage,
		TextLength:      utf8.RuneCountInString(text),
	}

	all := p.scoreAll(ctx, profile, opts.Debug)
	matches, relaxed := p.selectMatches(all, opts)

	fields := map[string]interface{}{
		"extractionStage": extracted.Stage,
		"textLength":      summary.TextLength,
		"skillCount":      len(profile.Skills),
		"matchCount":      len(matches),
		"limit":           opts.Limit,
		"minScore":        opts.MinScore,
	}
	if profile.YearsExperience != nil {
		fields["yearsExperience"] = *profile.YearsExperience
	}
	if relaxed {
		fields["thresholdRelaxed"] = true
	}
	log.Info("Resume matched", fields)

	return &Result{Matches: matches, ThresholdRelaxed: relaxed, Candidate: summary}, nil
}

// scoreAll scores every catalog job and sorts descending by percent, keeping
// catalog order between equal scores.
func (p *Pipeline) scoreAll(ctx context.Context, profile models.CandidateProfile, debug bool) []models.MatchResult {
	_, span := p.obs.StartSpan(ctx, "scoring", attribute.Int("jobs", p.catalog.Len()))
	defer span.End()

	candidate := scoring.NewCandidate(profile)
	jobs := p.catalog.Jobs()
	results := make([]models.MatchResult, 0, len(jobs))
	for _, job := range jobs {
		pct, breakdown := p.scorer.Score(candidate, job)
		r := models.MatchResult{Job: job, MatchPercent: pct}
		if debug {
			b := breakdown
			r.Debug = &b
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercent > results[j].MatchPercent
	})
	return results
}

// selectMatches applies minScore and limit to sorted results. When that
// leaves nothing, the top min(limit, fallback_limit) are returned instead.
func (p *Pipeline) selectMatches(sorted []models.MatchResult, opts Options) ([]models.MatchResult, bool) {
	matches := make([]models.MatchResult, 0, opts.Limit)
	for _, r := range sorted {
		if len(matches) == opts.Limit {
			break
		}
		if r.MatchPercent >= opts.MinScore {
			matches = append(matches, r)
		}
	}
	if len(matches) > 0 || len(sorted) == 0 || !p.cfg.FallbackOnEmpty {
		return matches, false
	}

	n := min(opts.Limit, p.cfg.FallbackLimit, len(sorted))
	if n <= 0 {
		return matches, false
	}
	return append(matches, sorted[:n]...), true
}
