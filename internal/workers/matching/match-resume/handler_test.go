package matchresume

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"resume-matcher/internal/catalog"
	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/extraction/extractiontest"
	"resume-matcher/internal/models"
	"resume-matcher/internal/pipeline"
	"resume-matcher/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Matcher Implementation
// ==========================

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(ctx context.Context, upload pipeline.Upload, opts pipeline.Options) (*pipeline.Result, error) {
	args := m.Called(ctx, upload, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func newTestHandler(t *testing.T, m Matcher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Matcher:      m,
		CustomConfig: DefaultConfig(),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func jobWithVariables(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: TaskType, Variables: vars, Retries: 3}}
}

func intPtr(i int) *int { return &i }

func TestNewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger()})
	assert.Error(t, err, "matcher is required")

	bad := DefaultConfig()
	bad.Timeout = 0
	_, err = NewHandler(HandlerOptions{Matcher: new(MockMatcher), CustomConfig: bad})
	assert.Error(t, err)

	appCfg := &config.Config{
		Server: config.ServerConfig{MaxUploadBytes: 2 << 20},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, MaxJobsActive: 2, Timeout: 15000},
		},
	}
	h, err := NewHandler(HandlerOptions{AppConfig: appCfg, Matcher: new(MockMatcher), Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Config().MaxJobsActive)
	assert.Equal(t, 15*time.Second, h.Config().Timeout)
	assert.Equal(t, int64(2<<20), h.Config().MaxUploadBytes)
}

func TestParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockMatcher))

	tests := []struct {
		name    string
		vars    string
		want    *Input
		wantErr bool
	}{
		{
			name: "full",
			vars: `{"resumeBase64":"JVBERi0=","fileName":"cv.pdf","contentType":"application/pdf","limit":5,"minScore":30,"debug":true,"applicantId":"a-1"}`,
			want: &Input{ResumeBase64: "JVBERi0=", FileName: "cv.pdf", ContentType: "application/pdf", Limit: intPtr(5), MinScore: intPtr(30), Debug: true},
		},
		{
			name: "required only",
			vars: `{"resumeBase64":"JVBERi0=","fileName":"cv.pdf"}`,
			want: &Input{ResumeBase64: "JVBERi0=", FileName: "cv.pdf"},
		},
		{name: "missing resume", vars: `{"fileName":"cv.pdf"}`, wantErr: true},
		{name: "empty resume", vars: `{"resumeBase64":"","fileName":"cv.pdf"}`, wantErr: true},
		{name: "limit not integer", vars: `{"resumeBase64":"JVBERi0=","fileName":"cv.pdf","limit":2.5}`, wantErr: true},
		{name: "debug not boolean", vars: `{"resumeBase64":"JVBERi0=","fileName":"cv.pdf","debug":"yes"}`, wantErr: true},
		{name: "not json", vars: `resume`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.parseInput(jobWithVariables(tt.vars))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute(t *testing.T) {
	years := 4
	m := new(MockMatcher)
	m.On("Match", mock.Anything, pipeline.Upload{
		Data:        []byte("%PDF-1.4 resume"),
		FileName:    "cv.pdf",
		ContentType: "application/pdf",
	}, pipeline.Options{Limit: 1, MinScore: 60}).Return(&pipeline.Result{
		Matches:          []models.MatchResult{{Job: models.JobRecord{ID: "3"}, MatchPercent: 77}},
		ThresholdRelaxed: true,
		Candidate: models.CandidateSummary{
			Skills:          []string{"go", "kubernetes"},
			YearsExperience: &years,
			ExtractionStage: extraction.StagePdftotext,
			TextLength:      900,
		},
	}, nil).Once()
	h := newTestHandler(t, m)

	out, err := h.Execute(context.Background(), &Input{
		ResumeBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 resume")),
		FileName:     "cv.pdf",
		ContentType:  "application/pdf",
		Limit:        intPtr(0),
		MinScore:     intPtr(60),
	})
	require.NoError(t, err)
	m.AssertExpectations(t)

	assert.Len(t, out.Matches, 1)
	assert.True(t, out.ThresholdRelaxed)
	assert.Equal(t, extraction.StagePdftotext, out.ExtractionStage)
	assert.Equal(t, []string{"go", "kubernetes"}, out.Candidate.Skills)
	assert.Equal(t, 4, *out.Candidate.YearsExperience)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"candidate":{"skills":["go","kubernetes"],"yearsExperience":4}`)
}

func TestExecute_Errors(t *testing.T) {
	tooBig := DefaultConfig()
	tooBig.MaxUploadBytes = 4

	tests := []struct {
		name   string
		cfg    *Config
		input  *Input
		merr   error
		code   errors.ErrorCode
		called bool
	}{
		{name: "bad base64", input: &Input{ResumeBase64: "%%%", FileName: "cv.pdf"}, code: errors.ErrCodeInvalidRequest},
		{name: "decodes to nothing", input: &Input{ResumeBase64: "   ", FileName: "cv.pdf"}, code: errors.ErrCodeMissingFile},
		{name: "too large", cfg: tooBig, input: &Input{ResumeBase64: base64.StdEncoding.EncodeToString([]byte("0123456789")), FileName: "cv.pdf"}, code: errors.ErrCodeFileTooLarge},
		{name: "pipeline error", input: &Input{ResumeBase64: "JVBERi0=", FileName: "cv.pdf"}, merr: errors.NewExtractionYieldedNothingError("scan"), code: errors.ErrCodeExtractionYieldedNothing, called: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockMatcher)
			if tt.called {
				m.On("Match", mock.Anything, mock.MatchedBy(func(u pipeline.Upload) bool {
					return u.FileName == tt.input.FileName && len(u.Data) > 0
				}), mock.Anything).Return(nil, tt.merr).Once()
			}
			h, err := NewHandler(HandlerOptions{Matcher: m, CustomConfig: tt.cfg, Logger: logger.NewTestLogger(t)})
			require.NoError(t, err)

			_, err = h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), err.Error())
			if tt.called {
				m.AssertExpectations(t)
			} else {
				m.AssertNotCalled(t, "Match", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDecodeResume(t *testing.T) {
	want := []byte("%PDF-1.7")
	std := base64.StdEncoding.EncodeToString(want)

	for _, in := range []string{
		std,
		base64.RawStdEncoding.EncodeToString(want),
		"data:application/pdf;base64," + std,
		std[:4] + "\n" + std[4:],
	} {
		got, err := decodeResume(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestExecute_RealPipeline(t *testing.T) {
	cat, err := catalog.Default(time.Unix(1700000000, 0))
	require.NoError(t, err)
	scorer, err := scoring.New(scoring.SchemeLegacy, nil)
	require.NoError(t, err)
	log := logger.NewTestLogger(t)
	ex := extraction.NewWithStrategies(140, []extraction.Strategy{extraction.PlainText{}, extraction.PageText{}}, nil, log, nil)
	p := pipeline.New(ex, cat, scorer, config.MatchingConfig{DefaultLimit: 20, MaxLimit: 100, FallbackLimit: 10, FallbackOnEmpty: true}, log, nil)
	h := newTestHandler(t, p)

	docx := extractiontest.DOCX("Data analyst with 3 years of experience", "Skills: Python, SQL, Tableau")
	out, err := h.Execute(context.Background(), &Input{
		ResumeBase64: base64.StdEncoding.EncodeToString(docx),
		FileName:     "analyst.docx",
		Limit:        intPtr(5),
	})
	require.NoError(t, err)

	assert.Len(t, out.Matches, 5)
	assert.Equal(t, extraction.StageDOCX, out.ExtractionStage)
	require.NotNil(t, out.Candidate.YearsExperience)
	assert.Equal(t, 3, *out.Candidate.YearsExperience)
	assert.Subset(t, out.Candidate.Skills, []string{"python", "sql", "tableau"})
}

func TestActivityDescriptor(t *testing.T) {
	a := Activity()
	assert.Equal(t, TaskType, a.TaskType)

	for code, bpmn := range errors.BPMNErrorMapping {
		assert.Contains(t, a.ErrorCodes, bpmn, "BPMN code for %s is not published", code)
	}
}
