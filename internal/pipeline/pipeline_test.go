package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"resume-matcher/internal/catalog"
	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/extraction/extractiontest"
	"resume-matcher/internal/models"
	"resume-matcher/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var matchingConfig = config.MatchingConfig{
	DefaultLimit:    20,
	MaxLimit:        100,
	FallbackLimit:   10,
	FallbackOnEmpty: true,
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, fileName, contentType string) (*extraction.Result, error) {
	args := m.Called(ctx, data, fileName, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Result), args.Error(1)
}

func newPipeline(t *testing.T, ex TextExtractor, cfg config.MatchingConfig) *Pipeline {
	t.Helper()
	cat, err := catalog.Default(time.Unix(1700000000, 0))
	require.NoError(t, err)
	scorer, err := scoring.New(scoring.SchemeBlended, nil)
	require.NoError(t, err)
	return New(ex, cat, scorer, cfg, logger.NewTestLogger(t), nil)
}

// realExtractor runs the in-process pdf stages only, so tests never depend on
// pdftotext or tesseract being installed.
func realExtractor(t *testing.T) *extraction.Extractor {
	return extraction.NewWithStrategies(140, []extraction.Strategy{extraction.PlainText{}, extraction.PageText{}}, nil, logger.NewTestLogger(t), nil)
}

func textResult(text string) *MockExtractor {
	m := new(MockExtractor)
	m.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&extraction.Result{Text: text, Kind: extraction.KindPDF, Stage: "fake"}, nil)
	return m
}

func upload() Upload {
	return Upload{Data: []byte("%PDF-1.4"), FileName: "cv.pdf", ContentType: "application/pdf"}
}

func assertSorted(t *testing.T, matches []models.MatchResult) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].MatchPercent, matches[i].MatchPercent)
	}
}

func TestMatch_DOCXSkillsAndCoverage(t *testing.T) {
	p := newPipeline(t, realExtractor(t), matchingConfig)
	data := extractiontest.DOCX("Jane Doe", "Full stack developer", "Skills: React, Node.js, SQL")

	res, err := p.Match(context.Background(), Upload{Data: data, FileName: "jane.docx"}, Options{Limit: 100, Debug: true})
	require.NoError(t, err)

	assert.Subset(t, res.Candidate.Skills, []string{"react", "node.js", "sql", "mysql", "postgres"})
	assert.Nil(t, res.Candidate.YearsExperience)
	assert.Equal(t, extraction.StageDOCX, res.Candidate.ExtractionStage)
	require.Len(t, res.Matches, 35)

	// React and Node.js match directly, Postgres through the sql synonym; Docker is missing
	var found bool
	for _, m := range res.Matches {
		if m.Job.ID != "25" {
			continue
		}
		found = true
		require.Equal(t, []string{"React", "Node.js", "Postgres", "Docker"}, m.Job.Tags)
		require.NotNil(t, m.Debug)
		require.NotNil(t, m.Debug.SkillCoverage)
		assert.Equal(t, 0.75, *m.Debug.SkillCoverage)
		assert.Equal(t, []string{"react", "node.js", "postgres"}, m.Debug.MatchedSkills)
	}
	assert.True(t, found)
}

func TestMatch_PDFExperience(t *testing.T) {
	p := newPipeline(t, realExtractor(t), matchingConfig)
	data := extractiontest.PDF([]string{
		"John Smith",
		"Backend engineer with 5+ years of experience building web platforms",
		"Skills: Python, Django, AWS",
		"Designed REST services, data pipelines and deployment automation for several teams",
	})

	res, err := p.Match(context.Background(), Upload{Data: data, FileName: "john.pdf", ContentType: "application/pdf"}, Options{Limit: 100, Debug: true})
	require.NoError(t, err)

	require.NotNil(t, res.Candidate.YearsExperience)
	assert.Equal(t, 5, *res.Candidate.YearsExperience)
	assert.Subset(t, res.Candidate.Skills, []string{"python", "django", "aws"})
	assert.Equal(t, extraction.StagePlainText, res.Candidate.ExtractionStage)

	for _, m := range res.Matches {
		require.NotNil(t, m.Debug)
		if m.Job.Title == "Senior Backend Engineer" {
			assert.Equal(t, 4, m.Debug.RequiredYears)
			assert.Equal(t, 1.0, m.Debug.Experience)
		}
		if m.Job.Title == "Junior Full Stack Developer" {
			assert.Equal(t, 0, m.Debug.RequiredYears)
		}
	}
}

func TestMatch_ScanWithoutOCR(t *testing.T) {
	p := newPipeline(t, realExtractor(t), matchingConfig)

	_, err := p.Match(context.Background(), Upload{Data: extractiontest.PDF(nil), FileName: "scan.pdf"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionYieldedNothing))
	assert.Equal(t, 422, errors.HTTPStatus(err))
	assert.Equal(t, "scan.pdf", errors.AsStandardError(err).Metadata["fileName"])
	assert.Contains(t, errors.AsStandardError(err).Metadata, "extractionStage")
}

func TestMatch_UnsupportedType(t *testing.T) {
	p := newPipeline(t, realExtractor(t), matchingConfig)

	_, err := p.Match(context.Background(), Upload{Data: []byte("plain text resume"), FileName: "cv.pdf", ContentType: "application/pdf"}, Options{})
	require.Error(t, err)
	assert.Equal(t, 415, errors.HTTPStatus(err))
}

func TestMatch_MissingFile(t *testing.T) {
	ex := textResult("unused")
	p := newPipeline(t, ex, matchingConfig)

	_, err := p.Match(context.Background(), Upload{FileName: "cv.pdf"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingFile))
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatch_ExtractorFault(t *testing.T) {
	ex := new(MockExtractor)
	ex.On("Extract", mock.Anything, []byte("%PDF-1.4"), "cv.pdf", "application/pdf").
		Return(nil, stderrors.New("disk on fire")).Once()
	p := newPipeline(t, ex, matchingConfig)

	_, err := p.Match(context.Background(), upload(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
	assert.Contains(t, errors.AsStandardError(err).Details, "disk on fire")
	assert.Equal(t, "cv.pdf", errors.AsStandardError(err).Metadata["fileName"])
	ex.AssertExpectations(t)
}

func TestMatch_FallbackOnEmpty(t *testing.T) {
	p := newPipeline(t, textResult("Skills: Python"), matchingConfig)

	res, err := p.Match(context.Background(), upload(), Options{MinScore: 90})
	require.NoError(t, err)
	assert.True(t, res.ThresholdRelaxed)
	assert.Len(t, res.Matches, 10)
	assertSorted(t, res.Matches)

	res, err = p.Match(context.Background(), upload(), Options{Limit: 3, MinScore: 100})
	require.NoError(t, err)
	assert.True(t, res.ThresholdRelaxed)
	assert.Len(t, res.Matches, 3)
}

func TestMatch_FallbackDisabled(t *testing.T) {
	cfg := matchingConfig
	cfg.FallbackOnEmpty = false
	p := newPipeline(t, textResult("Skills: Python"), cfg)

	res, err := p.Match(context.Background(), upload(), Options{MinScore: 90})
	require.NoError(t, err)
	assert.False(t, res.ThresholdRelaxed)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
}

func TestMatch_FilterAndLimit(t *testing.T) {
	p := newPipeline(t, textResult("Senior React developer, 6 years. Skills: React, TypeScript, CSS, Node.js"), matchingConfig)

	res, err := p.Match(context.Background(), upload(), Options{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 5)
	assertSorted(t, res.Matches)
	assert.False(t, res.ThresholdRelaxed)
	for _, m := range res.Matches {
		assert.Nil(t, m.Debug)
	}

	all, err := p.Match(context.Background(), upload(), Options{Limit: 100})
	require.NoError(t, err)
	require.Len(t, all.Matches, 35)
	assertSorted(t, all.Matches)

	threshold := all.Matches[3].MatchPercent
	res, err = p.Match(context.Background(), upload(), Options{Limit: 100, MinScore: threshold})
	require.NoError(t, err)
	for _, m := range res.Matches {
		assert.GreaterOrEqual(t, m.MatchPercent, threshold)
	}
	assert.GreaterOrEqual(t, len(res.Matches), 4)
}

func TestMatch_TiesKeepCatalogOrder(t *testing.T) {
	p := newPipeline(t, textResult("zzzz qqqq"), matchingConfig)

	res, err := p.Match(context.Background(), upload(), Options{Limit: 100})
	require.NoError(t, err)

	ids := map[int][]string{}
	for _, m := range res.Matches {
		ids[m.MatchPercent] = append(ids[m.MatchPercent], m.Job.ID)
	}

	order := map[string]int{}
	for i, job := range p.catalog.Jobs() {
		order[job.ID] = i
	}
	for pct, group := range ids {
		for i := 1; i < len(group); i++ {
			assert.Less(t, order[group[i-1]], order[group[i]], "tie at %d%%", pct)
		}
	}
}

func TestMatch_Deterministic(t *testing.T) {
	p := newPipeline(t, realExtractor(t), matchingConfig)
	data := extractiontest.DOCX("Data scientist, 3 years", "Skills: Python, SQL, Machine Learning, Tableau")

	run := func() []byte {
		res, err := p.Match(context.Background(), Upload{Data: data, FileName: "cv.docx"}, Options{Debug: true})
		require.NoError(t, err)
		b, err := json.Marshal(res.Matches)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, run(), run())
}

func TestClampOptions(t *testing.T) {
	p := newPipeline(t, textResult(""), matchingConfig)

	tests := []struct {
		in   Options
		want Options
	}{
		{Options{}, Options{Limit: 20}},
		{Options{Limit: 500, MinScore: 120}, Options{Limit: 100, MinScore: 100}},
		{Options{Limit: -3, MinScore: -5}, Options{Limit: 20, MinScore: 0}},
		{Options{Limit: 1, MinScore: 50, Debug: true}, Options{Limit: 1, MinScore: 50, Debug: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ClampOptions(tt.in))
	}
}
