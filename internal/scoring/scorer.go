// Package scoring turns a candidate profile and a job record into a match percentage.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"resume-matcher/internal/models"
	"resume-matcher/internal/skills"
)

const (
	SchemeBlended = "blended"
	SchemeLegacy  = "legacy"

	unknownExperienceScore = 0.9
	defaultRequiredYears   = 2
	maxTitleBoost          = 0.25
)

// Weights of the four sub-scores. They need not sum to one; Score divides by
// the total of the weights in play.
type Weights struct {
	Lexical    float64
	Skills     float64
	Experience float64
	Title      float64
}

var (
	BlendedWeights = Weights{Lexical: 0.55, Skills: 0.30, Experience: 0.10, Title: 0.05}
	LegacyWeights  = Weights{Lexical: 0, Skills: 0.70, Experience: 0.20, Title: 0.10}
)

func (w Weights) total() float64 {
	return w.Lexical + w.Skills + w.Experience + w.Title
}

// Scorer is stateless after construction; Score is deterministic and safe for
// concurrent use.
type Scorer struct {
	scheme  string
	weights Weights
	dice    *metrics.SorensenDice
}

// New builds a Scorer for scheme. A non-nil override replaces the scheme's
// default weights.
func New(scheme string, override *Weights) (*Scorer, error) {
	var w Weights
	switch scheme {
	case "", SchemeBlended:
		scheme = SchemeBlended
		w = BlendedWeights
	case SchemeLegacy:
		w = LegacyWeights
	default:
		return nil, fmt.Errorf("unknown scoring scheme %q", scheme)
	}

	if override != nil {
		w = *override
	}
	if w.Lexical < 0 || w.Skills < 0 || w.Experience < 0 || w.Title < 0 {
		return nil, fmt.Errorf("scoring weights must not be negative: %+v", w)
	}
	if w.total() <= 0 {
		return nil, fmt.Errorf("scoring weights must not all be zero")
	}

	dice := metrics.NewSorensenDice()
	dice.CaseSensitive = false
	dice.NgramSize = 2

	return &Scorer{scheme: scheme, weights: w, dice: dice}, nil
}

func (s *Scorer) Scheme() string   { return s.scheme }
func (s *Scorer) Weights() Weights { return s.weights }

// Candidate is a CandidateProfile prepared once per request for scoring
// against every job.
type Candidate struct {
	Profile models.CandidateProfile

	text   string
	words  map[string]bool
	skills map[string]bool
}

func NewCandidate(profile models.CandidateProfile) *Candidate {
	c := &Candidate{
		Profile: profile,
		text:    skills.Normalize(profile.RawText),
		words:   make(map[string]bool),
		skills:  make(map[string]bool, len(profile.Skills)),
	}
	for _, w := range strings.Fields(c.text) {
		c.words[w] = true
	}
	for _, sk := range profile.Skills {
		if canon := skills.Canonicalize(sk); canon != "" {
			c.skills[canon] = true
		}
	}
	return c
}

// Score returns the match percentage in [0,100] and the breakdown behind it.
func (s *Scorer) Score(c *Candidate, job models.JobRecord) (int, models.ScoreBreakdown) {
	b := models.ScoreBreakdown{
		Scheme:        s.scheme,
		MatchedSkills: []string{},
	}

	coverage, matched := skillCoverage(c, job.Tags)
	b.SkillCoverage = coverage
	b.MatchedSkills = matched

	b.RequiredYears = RequiredYears(job.Title)
	b.Experience = experienceFit(c.Profile.YearsExperience, b.RequiredYears)

	w := s.weights
	var title float64
	switch s.scheme {
	case SchemeLegacy:
		b.TitleMatch = legacyTitleMatch(c, job)
		title = b.TitleMatch
	default:
		// the boost, not the raw overlap, is what the title weight scales
		b.TitleMatch = titleOverlap(c, job.Title)
		b.TitleBoost = round4(maxTitleBoost * b.TitleMatch)
		title = b.TitleBoost
	}
	if w.Lexical > 0 {
		b.Semantic = round4(s.lexical(c, job))
	}

	sum := w.Lexical*b.Semantic + w.Experience*b.Experience + w.Title*title
	total := w.total()
	if coverage != nil {
		sum += w.Skills * *coverage
	} else {
		total -= w.Skills
	}

	var combined float64
	if total > 0 {
		combined = clamp01(sum / total)
	}
	b.Combined = round4(combined)

	return int(math.Round(combined * 100)), b
}

func (s *Scorer) lexical(c *Candidate, job models.JobRecord) float64 {
	doc := skills.Normalize(strings.Join([]string{
		job.Title, job.Company, job.Category, strings.Join(job.Tags, " "), job.Description, job.Location,
	}, " "))
	if c.text == "" || doc == "" {
		return 0
	}
	return clamp01(strutil.Similarity(c.text, doc, s.dice))
}

// skillCoverage is nil for a job without tags, which carries no skill signal.
func skillCoverage(c *Candidate, tags []string) (*float64, []string) {
	seen := make(map[string]bool, len(tags))
	matched := []string{}
	for _, tag := range tags {
		canon := skills.Canonicalize(tag)
		if canon == "" || seen[canon] {
			continue
		}
		seen[canon] = true
		if c.skills[canon] {
			matched = append(matched, canon)
		}
	}
	if len(seen) == 0 {
		return nil, matched
	}
	v := round4(float64(len(matched)) / float64(len(seen)))
	return &v, matched
}

// RequiredYears infers the seniority a job title asks for.
func RequiredYears(title string) int {
	tokens := map[string]bool{}
	for _, f := range strings.Fields(skills.Normalize(title)) {
		for _, part := range strings.Split(f, "-") {
			tokens[strings.TrimSuffix(part, ".")] = true
		}
	}

	has := func(words ...string) bool {
		for _, w := range words {
			if tokens[w] {
				return true
			}
		}
		return false
	}

	switch {
	case has("principal", "staff", "lead"):
		return 6
	case has("senior", "sr"):
		return 4
	case has("mid", "experienced"):
		return 2
	case has("junior", "jr", "associate", "entry", "intern", "internship"):
		return 0
	}
	return defaultRequiredYears
}

func experienceFit(years *int, required int) float64 {
	if years == nil {
		return unknownExperienceScore
	}
	if *years >= required {
		return 1
	}
	return round4(math.Max(0, float64(*years)/float64(required)))
}

// titleOverlap is the fraction of meaningful job-title words present in the resume.
func titleOverlap(c *Candidate, title string) float64 {
	var total, hit int
	seen := map[string]bool{}
	for _, w := range strings.Fields(skills.Normalize(title)) {
		if seen[w] || utf8.RuneCountInString(w) < 2 || titleStopwords[w] {
			continue
		}
		seen[w] = true
		total++
		if c.words[w] {
			hit++
		}
	}
	if total == 0 {
		return 0
	}
	return round4(float64(hit) / float64(total))
}

// legacyTitleMatch is 1 when any candidate skill appears in the job title or company.
func legacyTitleMatch(c *Candidate, job models.JobRecord) float64 {
	title := strings.ToLower(job.Title)
	company := strings.ToLower(job.Company)
	for sk := range c.skills {
		if strings.Contains(title, sk) || strings.Contains(company, sk) {
			return 1
		}
	}
	return 0
}

var titleStopwords = map[string]bool{
	"and": true, "of": true, "the": true, "for": true, "in": true, "at": true, "to": true, "with": true,
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
