// internal/models/job.go
package models

// JobRecord is one read-only catalog entry.
type JobRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	SalaryDisplay string   `json:"salary"`
	SalaryNumeric float64  `json:"salaryNum"`
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	Logo          string   `json:"logo,omitempty"`
	Category      string   `json:"category"`
	Description   string   `json:"description,omitempty"`
	PostedAt      int64    `json:"postedAt"` // unix seconds
}
