package model

import (
	"strings"
	"testing"
)

// TestFingerprint tests content fingerprinting.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("identical content gives identical fingerprints", func(t *testing.T) {
		t.Parallel()

		a := Fingerprint([]byte("same bytes"))
		b := Fingerprint([]byte("same bytes"))
		if a != b {
			t.Errorf("expected identical fingerprints, got %q and %q", a, b)
		}
	})

	t.Run("different content gives different fingerprints", func(t *testing.T) {
		t.Parallel()

		if Fingerprint([]byte("one")) == Fingerprint([]byte("two")) {
			t.Error("expected different fingerprints for different content")
		}
	})

	t.Run("fingerprint is 32 hex characters", func(t *testing.T) {
		t.Parallel()

		fp := Fingerprint([]byte("anything"))
		if len(fp) != 32 {
			t.Errorf("expected 32-char fingerprint, got %d chars", len(fp))
		}
		if strings.ToLower(fp) != fp {
			t.Errorf("expected lowercase hex, got %q", fp)
		}
	})
}

// TestPage tests page helper methods.
func TestPage(t *testing.T) {
	t.Parallel()

	t.Run("OK reports 2xx statuses", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			status int
			want   bool
		}{
			{200, true},
			{201, true},
			{299, true},
			{199, false},
			{301, false},
			{404, false},
			{500, false},
		}

		for _, tt := range tests {
			p := &Page{StatusCode: tt.status}
			if p.OK() != tt.want {
				t.Errorf("OK() for status %d = %v, want %v", tt.status, p.OK(), tt.want)
			}
		}
	})

	t.Run("IsHTML recognizes html content types", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			contentType string
			want        bool
		}{
			{"text/html", true},
			{"application/xhtml+xml", true},
			{"text/plain", false},
			{"image/png", false},
			{"", false},
		}

		for _, tt := range tests {
			p := &Page{ContentType: tt.contentType}
			if p.IsHTML() != tt.want {
				t.Errorf("IsHTML() for %q = %v, want %v", tt.contentType, p.IsHTML(), tt.want)
			}
		}
	})

	t.Run("ComputeHash handles empty bodies", func(t *testing.T) {
		t.Parallel()

		p := &Page{}
		p.ComputeHash()
		if p.Hash != "" {
			t.Errorf("expected empty hash for empty body, got %q", p.Hash)
		}

		p.Raw = []byte("content")
		p.ComputeHash()
		if p.Hash == "" {
			t.Error("expected non-empty hash")
		}
	})

	t.Run("TruncateRaw caps the body", func(t *testing.T) {
		t.Parallel()

		p := &Page{Raw: make([]byte, MaxPageSize+100)}
		p.TruncateRaw()
		if len(p.Raw) != MaxPageSize {
			t.Errorf("expected raw capped at %d, got %d", MaxPageSize, len(p.Raw))
		}
	})

	t.Run("GetHeader returns the first value", func(t *testing.T) {
		t.Parallel()

		p := &Page{Headers: map[string][]string{
			"Content-Type": {"text/html", "ignored"},
		}}
		if got := p.GetHeader("Content-Type"); got != "text/html" {
			t.Errorf("expected first value, got %q", got)
		}
		if got := p.GetHeader("Missing"); got != "" {
			t.Errorf("expected empty for missing header, got %q", got)
		}
	})
}

// TestImage tests image helper methods.
func TestImage(t *testing.T) {
	t.Parallel()

	t.Run("IsImage checks the content type prefix", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			contentType string
			want        bool
		}{
			{"image/png", true},
			{"image/jpeg", true},
			{"image/webp", true},
			{"text/html", false},
			{"", false},
		}

		for _, tt := range tests {
			img := &Image{ContentType: tt.contentType}
			if img.IsImage() != tt.want {
				t.Errorf("IsImage() for %q = %v, want %v", tt.contentType, img.IsImage(), tt.want)
			}
		}
	})

	t.Run("identical bytes share a hash across URLs", func(t *testing.T) {
		t.Parallel()

		a := &Image{URL: "http://example.com/a.png", Data: []byte("same image")}
		b := &Image{URL: "http://example.com/b.png", Data: []byte("same image")}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash != b.Hash {
			t.Errorf("expected matching hashes, got %q and %q", a.Hash, b.Hash)
		}
	})
}
