package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger = WithComponent(logger, "scorer")
	logger.Info("candidate accepted", String("album", "After Hours"), Float64("score", 1.17))

	out := buf.String()
	if !strings.Contains(out, "INFO scorer: candidate accepted") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if !strings.Contains(out, `album="After Hours"`) {
		t.Fatalf("expected quoted album attr, got: %q", out)
	}
	if !strings.Contains(out, "score=1.17") {
		t.Fatalf("expected score attr, got: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got: %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "WARN") {
		t.Fatalf("expected warn record, got: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	for _, input := range []string{"", "info", "nonsense"} {
		if got := parseLevel(input); got != slog.LevelInfo {
			t.Fatalf("parseLevel(%q) = %v, want info", input, got)
		}
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("parseLevel(debug) = %v", got)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing happens", Error(nil))
}
