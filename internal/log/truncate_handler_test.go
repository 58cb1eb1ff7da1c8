package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTruncateHandler tests attribute value capping.
func TestTruncateHandler(t *testing.T) {
	t.Parallel()

	t.Run("caps long string values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewTruncateHandler(slog.NewTextHandler(&buf, nil), 10))

		long := strings.Repeat("a", 100)
		logger.Info("msg", "value", long)

		out := buf.String()
		if strings.Contains(out, long) {
			t.Error("expected long value to be truncated")
		}
		if !strings.Contains(out, strings.Repeat("a", 10)+Ellipsis) {
			t.Errorf("expected capped value with ellipsis, got %q", out)
		}
	})

	t.Run("short values pass through unchanged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewTruncateHandler(slog.NewTextHandler(&buf, nil), 50))

		logger.Info("msg", "url", "http://example.com")

		if !strings.Contains(buf.String(), "http://example.com") {
			t.Errorf("expected value unchanged, got %q", buf.String())
		}
		if strings.Contains(buf.String(), Ellipsis) {
			t.Errorf("unexpected ellipsis in output: %q", buf.String())
		}
	})

	t.Run("does not split multibyte runes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewTruncateHandler(slog.NewTextHandler(&buf, nil), 4))

		// Each rune is 3 bytes; a 4-byte cut would land mid-rune.
		logger.Info("msg", "value", "日本語テキスト")

		if strings.Contains(buf.String(), "�") {
			t.Errorf("output contains replacement character: %q", buf.String())
		}
	})

	t.Run("recurses into groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewTruncateHandler(slog.NewTextHandler(&buf, nil), 10))

		logger.Info("msg", slog.Group("req", slog.String("body", strings.Repeat("b", 100))))

		if strings.Contains(buf.String(), strings.Repeat("b", 100)) {
			t.Error("expected grouped value to be truncated")
		}
	})

	t.Run("non-string values are untouched", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewTruncateHandler(slog.NewTextHandler(&buf, nil), 2))

		logger.Info("msg", "count", 123456)

		if !strings.Contains(buf.String(), "123456") {
			t.Errorf("expected integer preserved, got %q", buf.String())
		}
	})
}

// TestNewLogger tests level selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level hides debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("hidden")
		logger.Info("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug output should be suppressed by default")
		}
		if !strings.Contains(out, "shown") {
			t.Error("info output should be emitted")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("visible")

		if !strings.Contains(buf.String(), "visible") {
			t.Error("debug output should be emitted in verbose mode")
		}
	})
}
