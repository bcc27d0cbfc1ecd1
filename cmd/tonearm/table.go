package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tonearm/internal/catalog"
)

// renderCounters renders a finished run's counters as a one-row table.
// Counter columns are right-aligned so repeated runs line up.
func renderCounters(headers []string, counts []int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	row := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		header[i] = h
		count := 0
		if i < len(counts) {
			count = counts[i]
		}
		row[i] = strconv.Itoa(count)
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.AppendRow(row)
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

var runHistoryHeaders = table.Row{
	"Started", "Command", "Processed", "Resolved",
	"Unresolved", "Duplicates", "Move failures", "Art attached",
}

// renderRunHistory lists past runs, newest first, timestamps in local time.
func renderRunHistory(runs []catalog.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(runHistoryHeaders)

	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Command,
			run.Processed,
			run.Resolved,
			run.Unresolved,
			run.Duplicates,
			run.MoveFailures,
			run.ArtAttached,
		})
	}

	configs := make([]table.ColumnConfig, len(runHistoryHeaders))
	for i := range runHistoryHeaders {
		align := text.AlignRight
		if i < 2 {
			// Timestamp and command read better left-aligned.
			align = text.AlignLeft
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
