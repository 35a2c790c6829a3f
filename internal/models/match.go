// internal/models/match.go
package models

// CandidateProfile is built fresh for every match request and never stored.
type CandidateProfile struct {
	RawText         string   `json:"-"`
	Skills          []string `json:"skills"`
	YearsExperience *int     `json:"yearsExperience"`
}

type MatchResult struct {
	Job          JobRecord       `json:"job"`
	MatchPercent int             `json:"matchPercent"`
	Debug        *ScoreBreakdown `json:"debug,omitempty"`
}

// ScoreBreakdown exposes the sub-scores behind a MatchPercent.
type ScoreBreakdown struct {
	Scheme        string   `json:"scheme"`
	Semantic      float64  `json:"semanticScore"`
	SkillCoverage *float64 `json:"skillCoverage"` // nil when the job has no tags
	MatchedSkills []string `json:"matchedSkills"`
	Experience    float64  `json:"experienceScore"`
	RequiredYears int      `json:"requiredYears"`
	TitleMatch    float64  `json:"titleMatch"`
	TitleBoost    float64  `json:"titleBoost"`
	Combined      float64  `json:"combined"`
}

// CandidateSummary is the debug view of the candidate attached to a response.
type CandidateSummary struct {
	Skills          []string `json:"skills"`
	YearsExperience *int     `json:"yearsExperience"`
	ExtractionStage string   `json:"extractionStage"`
	TextLength      int      `json:"textLength"`
}
