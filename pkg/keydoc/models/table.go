// Package models defines the value types exchanged between the keyword
// engine and its consumers.
package models

import (
	"strconv"
	"strings"
)

// Table is a rectangular block of cell values produced by RANGE and COLUMN
// resolution. Rows are ordered top to bottom, cells left to right.
type Table struct {
	// Rows holds the cell values, row-major.
	Rows [][]string
	// HeaderRow marks the first row as a header when rendering.
	HeaderRow bool
}

// Columns returns the widest row length.
func (t *Table) Columns() int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Render formats the table as aligned plain text. Numeric cells are
// right-aligned, text cells left-aligned, and a dashed separator is placed
// under the header row when the table has more than one row.
func (t *Table) Render() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, t.Columns())
	for _, row := range t.Rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for rowIdx, row := range t.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if isNumericCell(cell) {
				cells[i] = pad(cell, widths[i], true)
			} else {
				cells[i] = pad(cell, widths[i], false)
			}
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')

		if rowIdx == 0 && t.HeaderRow && len(t.Rows) > 1 {
			seps := make([]string, len(widths))
			for i, w := range widths {
				seps[i] = strings.Repeat("-", w)
			}
			b.WriteString(strings.Join(seps, "-+-"))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func isNumericCell(s string) bool {
	cleaned := strings.NewReplacer(",", "", "$", "", "%", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

func pad(s string, width int, right bool) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(" ", width-len(s))
	if right {
		return fill + s
	}
	return s + fill
}
