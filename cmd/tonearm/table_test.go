package main

import (
	"strings"
	"testing"
	"time"

	"tonearm/internal/catalog"
)

func TestRenderCounters(t *testing.T) {
	out := renderCounters([]string{"Scanned", "Placed"}, []int{12, 7})
	for _, want := range []string{"Scanned", "Placed", "12", "7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// One header row plus one counter row.
	if rows := strings.Count(out, "│") / 3; rows != 2 {
		t.Errorf("expected 2 table rows, got %d:\n%s", rows, out)
	}
}

func TestRenderCountersShortCounts(t *testing.T) {
	out := renderCounters([]string{"Scanned", "Placed"}, []int{3})
	if !strings.Contains(out, "0") {
		t.Errorf("missing counter should render as 0:\n%s", out)
	}
}

func TestRenderRunHistory(t *testing.T) {
	started := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	out := renderRunHistory([]catalog.Run{{
		Command:   "reconcile",
		StartedAt: started,
		Processed: 5,
		Resolved:  4,
	}})
	for _, want := range []string{"Started", "Command", "reconcile", started.Local().Format("2006-01-02 15:04:05")} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
