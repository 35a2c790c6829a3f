package scoring

import (
	"testing"
	"time"

	"resume-matcher/internal/catalog"
	"resume-matcher/internal/models"
	"resume-matcher/internal/skills"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func years(v int) *int { return &v }

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		override *Weights
		want     Weights
		wantErr  bool
	}{
		{name: "default scheme", scheme: "", want: BlendedWeights},
		{name: "blended", scheme: SchemeBlended, want: BlendedWeights},
		{name: "legacy", scheme: SchemeLegacy, want: LegacyWeights},
		{name: "override", scheme: SchemeBlended, override: &Weights{Skills: 1}, want: Weights{Skills: 1}},
		{name: "unknown scheme", scheme: "cosine", wantErr: true},
		{name: "negative weight", scheme: SchemeBlended, override: &Weights{Lexical: -1, Skills: 2}, wantErr: true},
		{name: "all zero", scheme: SchemeLegacy, override: &Weights{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.scheme, tt.override)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Weights())
		})
	}
}

func TestScore_FullSkillCoverage(t *testing.T) {
	s, err := New(SchemeBlended, nil)
	require.NoError(t, err)

	text := "Jane Doe\nFull stack developer\nSkills: React, Node.js, SQL\n"
	profile := models.CandidateProfile{
		RawText:         text,
		Skills:          skills.New().Extract(text),
		YearsExperience: skills.ExtractYears(text),
	}
	job := models.JobRecord{ID: "j", Title: "Full Stack Developer", Company: "Acme", Tags: []string{"React", "Node.js"}}

	_, b := s.Score(NewCandidate(profile), job)

	require.NotNil(t, b.SkillCoverage)
	assert.Equal(t, 1.0, *b.SkillCoverage)
	assert.ElementsMatch(t, []string{"react", "node.js"}, b.MatchedSkills)
	assert.Equal(t, unknownExperienceScore, b.Experience)
}

func TestScore_ExperienceMeetsSeniority(t *testing.T) {
	s, err := New(SchemeBlended, nil)
	require.NoError(t, err)

	profile := models.CandidateProfile{
		RawText:         "5+ years of experience. Skills: Python, Django, AWS",
		Skills:          []string{"python", "django", "aws"},
		YearsExperience: years(5),
	}
	job := models.JobRecord{Title: "Senior Python Engineer", Company: "Snake Co", Tags: []string{"Python", "Django"}}

	_, b := s.Score(NewCandidate(profile), job)

	assert.Equal(t, 4, b.RequiredYears)
	assert.Equal(t, 1.0, b.Experience)
	// only "python" of the title appears in the resume
	assert.InDelta(t, 1.0/3.0, b.TitleMatch, 0.0001)
	assert.InDelta(t, maxTitleBoost/3.0, b.TitleBoost, 0.0001)
}

func TestScore_IdenticalDocument(t *testing.T) {
	s, err := New(SchemeBlended, nil)
	require.NoError(t, err)

	job := models.JobRecord{Title: "Go Developer", Company: "Acme", Category: "Engineering", Tags: []string{"Go"}, Location: "Remote"}
	profile := models.CandidateProfile{
		RawText:         "Go Developer Acme Engineering Go Remote",
		Skills:          []string{"go"},
		YearsExperience: years(3),
	}

	pct, b := s.Score(NewCandidate(profile), job)

	// every signal is maxed; the title term tops out at the boost cap
	assert.Equal(t, 96, pct)
	assert.Equal(t, 1.0, b.Semantic)
	assert.Equal(t, 1.0, b.TitleMatch)
	assert.Equal(t, maxTitleBoost, b.TitleBoost)
	assert.InDelta(t, 0.9625, b.Combined, 0.0001)
}

func TestScore_BlendedTitleWeightScalesBoost(t *testing.T) {
	s, err := New(SchemeBlended, &Weights{Skills: 0.95, Title: 0.05})
	require.NoError(t, err)

	c := NewCandidate(models.CandidateProfile{RawText: "writer"})
	pct, b := s.Score(c, models.JobRecord{Title: "Writer", Tags: []string{"SEO"}})

	require.NotNil(t, b.SkillCoverage)
	assert.Equal(t, 0.0, *b.SkillCoverage)
	assert.Equal(t, 1.0, b.TitleMatch)
	assert.Equal(t, 0.25, b.TitleBoost)
	assert.InDelta(t, 0.05*0.25, b.Combined, 0.0001)
	assert.Equal(t, 1, pct)

	_, miss := s.Score(c, models.JobRecord{Title: "Editor", Tags: []string{"SEO"}})
	assert.Equal(t, 0.0, miss.TitleBoost)
	assert.Equal(t, 0.0, miss.Combined)
}

func TestScore_EmptyCandidate(t *testing.T) {
	s, err := New(SchemeBlended, nil)
	require.NoError(t, err)

	job := models.JobRecord{Title: "Data Analyst", Company: "Numbers", Tags: []string{"SQL", "Tableau"}}
	pct, b := s.Score(NewCandidate(models.CandidateProfile{}), job)

	assert.Equal(t, 9, pct)
	assert.Equal(t, 0.0, b.Semantic)
	require.NotNil(t, b.SkillCoverage)
	assert.Equal(t, 0.0, *b.SkillCoverage)
	assert.Empty(t, b.MatchedSkills)
	assert.NotNil(t, b.MatchedSkills)
}

func TestScore_Legacy(t *testing.T) {
	s, err := New(SchemeLegacy, nil)
	require.NoError(t, err)

	c := NewCandidate(models.CandidateProfile{
		RawText:         "React TypeScript CSS",
		Skills:          []string{"react", "typescript", "css"},
		YearsExperience: years(5),
	})

	job := models.JobRecord{Title: "Senior Frontend Engineer", Company: "Pixel", Tags: []string{"React", "TypeScript", "CSS"}}
	pct, b := s.Score(c, job)
	assert.Equal(t, 90, pct)
	assert.Equal(t, 0.0, b.TitleMatch)
	assert.Equal(t, 0.0, b.Semantic)

	job.Company = "ReactCorp"
	pct, b = s.Score(c, job)
	assert.Equal(t, 100, pct)
	assert.Equal(t, 1.0, b.TitleMatch)

	// one of four years required by a senior title
	c = NewCandidate(models.CandidateProfile{Skills: []string{"go"}, YearsExperience: years(1)})
	pct, b = s.Score(c, models.JobRecord{Title: "Senior Writer", Tags: []string{"Writing", "SEO"}})
	assert.Equal(t, 0.25, b.Experience)
	assert.Equal(t, 5, pct)
}

func TestScore_TaglessJobNotPenalised(t *testing.T) {
	s, err := New(SchemeLegacy, nil)
	require.NoError(t, err)

	c := NewCandidate(models.CandidateProfile{Skills: []string{"python"}})

	tagless, b := s.Score(c, models.JobRecord{Title: "Writer", Company: "Acme"})
	assert.Nil(t, b.SkillCoverage)
	assert.Equal(t, 60, tagless)

	unmatched, b := s.Score(c, models.JobRecord{Title: "Writer", Company: "Acme", Tags: []string{"SEO"}})
	require.NotNil(t, b.SkillCoverage)
	assert.Equal(t, 18, unmatched)
	assert.Greater(t, tagless, unmatched)
}

func TestScore_SkillsOnlyWeightsOnTaglessJob(t *testing.T) {
	s, err := New(SchemeBlended, &Weights{Skills: 1})
	require.NoError(t, err)

	pct, b := s.Score(NewCandidate(models.CandidateProfile{Skills: []string{"go"}}), models.JobRecord{Title: "Go Developer"})
	assert.Equal(t, 0, pct)
	assert.Equal(t, 0.0, b.Combined)
}

func TestScore_BoundedAndDeterministicOverCatalog(t *testing.T) {
	cat, err := catalog.Default(time.Unix(1700000000, 0))
	require.NoError(t, err)

	text := "Senior engineer with 7 years building React and Node.js services on AWS.\nSkills: Python, SQL, Docker, Kubernetes"
	extractor := skills.New(cat.Tags()...)
	profile := models.CandidateProfile{RawText: text, Skills: extractor.Extract(text), YearsExperience: skills.ExtractYears(text)}

	for _, scheme := range []string{SchemeBlended, SchemeLegacy} {
		s, err := New(scheme, nil)
		require.NoError(t, err)

		for _, job := range cat.Jobs() {
			first, b1 := s.Score(NewCandidate(profile), job)
			second, b2 := s.Score(NewCandidate(profile), job)

			assert.GreaterOrEqual(t, first, 0, job.ID)
			assert.LessOrEqual(t, first, 100, job.ID)
			assert.Equal(t, first, second, job.ID)
			assert.Equal(t, b1, b2, job.ID)
		}
	}
}

func TestRequiredYears(t *testing.T) {
	tests := map[string]int{
		"Principal Engineer":       6,
		"Staff Software Engineer":  6,
		"Tech Lead":                6,
		"Senior Python Engineer":   4,
		"Sr. Data Scientist":       4,
		"Mid-level Backend Dev":    2,
		"Experienced Accountant":   2,
		"Junior Designer":          0,
		"Associate Product Owner":  0,
		"Entry Level Support":      0,
		"Marketing Intern":         0,
		"Backend Developer":        2,
		"":                         2,
		"Leader of Things":         2,
		"Seniority Review Analyst": 2,
	}
	for title, want := range tests {
		assert.Equal(t, want, RequiredYears(title), title)
	}
}

func TestExperienceFit(t *testing.T) {
	assert.Equal(t, 0.9, experienceFit(nil, 4))
	assert.Equal(t, 1.0, experienceFit(years(5), 4))
	assert.Equal(t, 1.0, experienceFit(years(0), 0))
	assert.Equal(t, 0.5, experienceFit(years(2), 4))
	assert.Equal(t, 0.0, experienceFit(years(0), 6))
}
