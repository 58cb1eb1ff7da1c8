package model

import (
	"testing"
	"time"
)

// TestRunReport tests report lifecycle helpers.
func TestRunReport(t *testing.T) {
	t.Parallel()

	t.Run("NewRunReport sets seed and start time", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		r := NewRunReport("http://example.com")

		if r.SeedURL != "http://example.com" {
			t.Errorf("expected seed URL, got %q", r.SeedURL)
		}
		if r.StartedAt.Before(before) {
			t.Error("expected start time at or after creation")
		}
	})

	t.Run("Finish records elapsed time and stats", func(t *testing.T) {
		t.Parallel()

		r := NewRunReport("http://example.com")
		stats := CrawlStats{PagesCrawled: 3, TextsSaved: 3, ImagesDownloaded: 1}

		r.Finish(stats)

		if r.Elapsed < 0 {
			t.Errorf("expected non-negative elapsed, got %v", r.Elapsed)
		}
		if r.Stats != stats {
			t.Errorf("expected stats %+v, got %+v", stats, r.Stats)
		}
	})
}
