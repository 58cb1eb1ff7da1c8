package model

import "time"

// RunReport summarizes one completed (or interrupted) crawl run.
// It is what the report writers render and what the database stores
// per run.
type RunReport struct {
	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Stats holds the run counters.
	Stats CrawlStats `json:"stats"`

	// StorageDir is the run directory texts and images were written to.
	StorageDir string `json:"storage_dir"`

	// Interrupted is true when the run ended due to a user interrupt
	// rather than exhausting the frontier or hitting the page cap.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewRunReport creates a RunReport for the given seed with the start
// time set to now.
func NewRunReport(seedURL string) *RunReport {
	return &RunReport{
		SeedURL:   seedURL,
		StartedAt: time.Now(),
	}
}

// Finish records the elapsed time and final stats on the report.
func (r *RunReport) Finish(stats CrawlStats) {
	r.Elapsed = time.Since(r.StartedAt)
	r.Stats = stats
}
