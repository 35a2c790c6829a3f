package matchresume

import "resume-matcher/internal/models"

type Input struct {
	ResumeBase64 string `json:"resumeBase64"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType,omitempty"`
	Limit        *int   `json:"limit,omitempty"`
	MinScore     *int   `json:"minScore,omitempty"`
	Debug        bool   `json:"debug,omitempty"`
}

type Output struct {
	Matches          []models.MatchResult `json:"matches"`
	Candidate        Candidate            `json:"candidate"`
	ExtractionStage  string               `json:"extractionStage"`
	ThresholdRelaxed bool                 `json:"thresholdRelaxed"`
}

type Candidate struct {
	Skills          []string `json:"skills"`
	YearsExperience *int     `json:"yearsExperience"`
}
