package models

import "time"

// RunStats aggregates the outcome of one sourcing run.
type RunStats struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Total          int `json:"total"`
	New            int `json:"new"`
	Duplicates     int `json:"duplicates"`
	Enriched       int `json:"enriched"`
	Scored         int `json:"scored"`
	HighPriority   int `json:"high_priority"`
	StoreFailures  int `json:"store_failures"`
	SourceFailures int `json:"source_failures"`

	// PerSource counts collected candidates by scraper name.
	PerSource map[string]int `json:"per_source"`
}
