package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"economist-podcast/internal/workflow"
)

// renderSummary formats the per-stage run results as a terminal table.
func renderSummary(results []workflow.StageResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"Stage", "Status", "Detail"})
	for _, result := range results {
		tw.AppendRow(table.Row{result.Stage, string(result.Status), result.Detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
