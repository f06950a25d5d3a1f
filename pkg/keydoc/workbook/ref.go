// Package workbook is the spreadsheet access layer: it locates cells,
// totals, titled columns and ranges inside a loaded workbook.
package workbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidReference indicates a reference that does not parse as a
// column-letter+row-number address.
var ErrInvalidReference = errors.New("invalid cell reference")

// Ref is a normalized cell coordinate. Sheet is empty when the reference
// did not carry a sheet prefix; Row and Col are 1-based.
type Ref struct {
	Sheet string
	Row   int
	Col   int
}

// Name returns the A1-style address without the sheet prefix.
func (r Ref) Name() string {
	name, _ := excelize.CoordinatesToCellName(r.Col, r.Row)
	return name
}

func (r Ref) String() string {
	if r.Sheet != "" {
		return r.Sheet + "!" + r.Name()
	}
	return r.Name()
}

// ParseRef parses `A1` or `Sheet!A1` into a Ref. Malformed or out-of-range
// addresses fail with ErrInvalidReference; the same input always yields the
// same result.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	sheet := ""
	if i := strings.Index(s, "!"); i >= 0 {
		sheet = strings.Trim(strings.TrimSpace(s[:i]), "'")
		s = s[i+1:]
	}
	col, row, err := excelize.CellNameToCoordinates(strings.TrimSpace(s))
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return Ref{Sheet: sheet, Row: row, Col: col}, nil
}

// ParseRange parses `A1:G13` or `Sheet!A1:G13` into normalized corners,
// with start at the top-left regardless of the written order.
func ParseRange(s string) (Ref, Ref, error) {
	s = strings.TrimSpace(s)
	sheet := ""
	if i := strings.Index(s, "!"); i >= 0 {
		sheet = strings.Trim(strings.TrimSpace(s[:i]), "'")
		s = s[i+1:]
	}
	first, second, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, Ref{}, fmt.Errorf("%w: range %q has no separator", ErrInvalidReference, s)
	}
	start, err := ParseRef(first)
	if err != nil {
		return Ref{}, Ref{}, err
	}
	end, err := ParseRef(second)
	if err != nil {
		return Ref{}, Ref{}, err
	}
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if start.Col > end.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	start.Sheet, end.Sheet = sheet, sheet
	return start, end, nil
}
