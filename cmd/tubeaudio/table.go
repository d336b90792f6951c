package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. A positive maxWidth caps the cell width
// and cuts longer values with an ellipsis.
type column struct {
	title    string
	right    bool
	maxWidth int
}

func col(title string) column { return column{title: title} }

func numCol(title string) column { return column{title: title, right: true} }

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.right {
			configs[i].Align = text.AlignRight
		}
		if c.maxWidth > 0 {
			configs[i].WidthMax = c.maxWidth
			configs[i].WidthMaxEnforcer = ellipsize
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// ellipsize cuts value to width runes, marking the cut with "…".
func ellipsize(value string, width int) string {
	if width <= 0 || text.RuneWidthWithoutEscSequences(value) <= width {
		return value
	}
	return text.Trim(value, width-1) + "…"
}
