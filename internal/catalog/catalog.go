// Package catalog holds the fixed, read-only list of jobs scored by the matcher.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/validation"
	"resume-matcher/internal/models"
)

//go:embed jobs.json
var defaultJobs []byte

//go:embed schema.json
var schemaJSON []byte

var catalogSchema = validation.MustCompile("job-catalog", schemaJSON)

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	jobs []models.JobRecord
}

type entry struct {
	models.JobRecord
	PostedDaysAgo int `json:"postedDaysAgo"`
}

// Default loads the embedded catalog, stamping postedAt relative to now.
func Default(now time.Time) (*Catalog, error) {
	return Parse(defaultJobs, now)
}

// Parse validates data against the catalog schema and builds a Catalog.
func Parse(data []byte, now time.Time) (*Catalog, error) {
	result, err := catalogSchema.ValidateBytes(data)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewCatalogInvalidError(result.Error())
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}

	c := &Catalog{jobs: make([]models.JobRecord, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("duplicate job id %q", e.ID))
		}
		job := e.JobRecord
		if job.Tags == nil {
			job.Tags = []string{}
		}
		job.PostedAt = now.Add(-time.Duration(e.PostedDaysAgo) * 24 * time.Hour).Unix()

		seen[job.ID] = true
		c.jobs = append(c.jobs, job)
	}
	return c, nil
}

// Jobs returns a copy of the records in catalog order.
func (c *Catalog) Jobs() []models.JobRecord {
	out := make([]models.JobRecord, len(c.jobs))
	for i, job := range c.jobs {
		job.Tags = slices.Clone(job.Tags)
		out[i] = job
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.jobs)
}

// Tags returns every distinct tag in first-seen order.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, job := range c.jobs {
		for _, tag := range job.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
