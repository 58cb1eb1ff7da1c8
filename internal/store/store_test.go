package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNew tests run directory creation.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates dated run directory with subdirectories", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		s, err := New(base)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		wantRoot := filepath.Join(base, DirPrefix+time.Now().Format("20060102"))
		if s.Root() != wantRoot {
			t.Errorf("expected root %q, got %q", wantRoot, s.Root())
		}

		for _, sub := range []string{"texts", "images"} {
			info, err := os.Stat(filepath.Join(s.Root(), sub))
			if err != nil {
				t.Fatalf("expected %s directory: %v", sub, err)
			}
			if !info.IsDir() {
				t.Errorf("expected %s to be a directory", sub)
			}
		}
	})

	t.Run("reuses an existing run directory", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		first, err := New(base)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		second, err := New(base)
		if err != nil {
			t.Fatalf("failed to reuse store: %v", err)
		}
		if first.Root() != second.Root() {
			t.Errorf("expected same root, got %q and %q", first.Root(), second.Root())
		}
	})

	t.Run("rejects empty base directory", func(t *testing.T) {
		t.Parallel()

		if _, err := New(""); err == nil {
			t.Error("expected error for empty base directory, got nil")
		}
	})
}

// TestSaveText tests text persistence with the metadata header.
func TestSaveText(t *testing.T) {
	t.Parallel()

	t.Run("writes header plus body and round-trips via StripHeader", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		body := "First line\nSecond line"

		p, err := s.SaveText("http://example.com/page", ts, body)
		if err != nil {
			t.Fatalf("failed to save text: %v", err)
		}

		raw, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}

		content := string(raw)
		if !strings.HasPrefix(content, "URL: http://example.com/page\n") {
			t.Errorf("expected URL header line, got %q", content)
		}
		if !strings.Contains(content, "Captured: 2026-08-30 12:00:00\n") {
			t.Errorf("expected capture timestamp, got %q", content)
		}
		if got := StripHeader(content); got != body {
			t.Errorf("StripHeader round-trip: got %q, want %q", got, body)
		}
	})

	t.Run("filename embeds URL fingerprint and timestamp", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		ts := time.Unix(1700000000, 0)
		p, err := s.SaveText("http://example.com", ts, "text")
		if err != nil {
			t.Fatalf("failed to save text: %v", err)
		}

		name := filepath.Base(p)
		if !strings.HasSuffix(name, "_1700000000.txt") {
			t.Errorf("expected timestamp suffix, got %q", name)
		}
		// MD5 hex fingerprint before the underscore.
		if len(strings.SplitN(name, "_", 2)[0]) != 32 {
			t.Errorf("expected 32-char fingerprint prefix, got %q", name)
		}
	})

	t.Run("saves empty text", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		p, err := s.SaveText("http://example.com/empty", time.Now(), "")
		if err != nil {
			t.Fatalf("failed to save empty text: %v", err)
		}

		raw, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if got := StripHeader(string(raw)); got != "" {
			t.Errorf("expected empty body, got %q", got)
		}
	})
}

// TestSaveImage tests image persistence.
func TestSaveImage(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	data := []byte{0x89, 0x50, 0x4e, 0x47}
	p, err := s.SaveImage("http://example.com/logo.png", time.Unix(1700000000, 0), data)
	if err != nil {
		t.Fatalf("failed to save image: %v", err)
	}

	if !strings.HasSuffix(p, "_1700000000.png") {
		t.Errorf("expected .png suffix with timestamp, got %q", p)
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("failed to read saved image: %v", err)
	}
	if string(raw) != string(data) {
		t.Errorf("saved bytes differ from input")
	}
}

// TestImageExt tests extension resolution from image URLs.
func TestImageExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"png", "http://example.com/a.png", ".png"},
		{"jpeg", "http://example.com/photo.JPEG", ".jpeg"},
		{"webp", "http://example.com/x.webp", ".webp"},
		{"query ignored", "http://example.com/a.gif?v=2", ".gif"},
		{"no extension", "http://example.com/image", DefaultImageExt},
		{"unknown extension", "http://example.com/file.svg", DefaultImageExt},
		{"unparseable", "http://exa mple.com/%zz", DefaultImageExt},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ImageExt(tt.url); got != tt.want {
				t.Errorf("ImageExt(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestStripHeader tests header removal edge cases.
func TestStripHeader(t *testing.T) {
	t.Parallel()

	t.Run("content without header is unchanged", func(t *testing.T) {
		t.Parallel()

		if got := StripHeader("plain content"); got != "plain content" {
			t.Errorf("expected unchanged content, got %q", got)
		}
	})
}
