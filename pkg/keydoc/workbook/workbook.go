package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/keydoc/keydoc-go/pkg/keydoc/models"
)

// ErrCellNotFound indicates a lookup against a sheet that does not exist,
// or a scan that found no value where one is required.
var ErrCellNotFound = errors.New("cell not found")

// ErrTitleNotFound indicates a rightward title scan that reached the last
// populated cell of the anchor row without a match.
var ErrTitleNotFound = errors.New("title not found")

// Workbook owns one loaded workbook and its two read-only projections:
// the computed-value view (Value, and every lookup below) and the formula
// view (Formula). Both come from the same file handle and are loaded and
// closed together. Resolution never mutates a workbook.
type Workbook struct {
	path string
	file *excelize.File

	// rows caches the computed-value matrix per sheet for scan-heavy
	// lookups. Safe because the workbook is read-only during a pass.
	rows map[string][][]string
}

// Open loads the workbook at path. A missing file is reported as a
// recoverable MissingResourceError so the caller can prompt for it.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &models.MissingResourceError{Kind: models.ResourceWorkbook, Name: filepath.Base(path)}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f, rows: make(map[string][][]string)}, nil
}

// Close releases the underlying file handle.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Path returns the file path the workbook was opened from.
func (w *Workbook) Path() string { return w.path }

// SheetNames lists the workbook's sheets in file order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// ResolveSheet maps a sheet argument to the actual sheet name. The match is
// case-insensitive and tolerates surrounding single quotes; an empty name
// selects the first sheet. An unknown sheet fails with ErrCellNotFound.
func (w *Workbook) ResolveSheet(name string) (string, error) {
	sheets := w.SheetNames()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook %s has no sheets", ErrCellNotFound, w.path)
	}
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: sheet %q", ErrCellNotFound, name)
}

// Value returns the computed-value projection of one cell, unformatted.
func (w *Workbook) Value(sheet string, ref Ref) (string, error) {
	v, err := w.file.GetCellValue(sheet, ref.Name())
	if err != nil {
		return "", fmt.Errorf("%w: %s!%s", ErrCellNotFound, sheet, ref.Name())
	}
	return v, nil
}

// Formula returns the formula projection of one cell. Cells without a
// formula yield an empty string.
func (w *Workbook) Formula(sheet string, ref Ref) (string, error) {
	v, err := w.file.GetCellFormula(sheet, ref.Name())
	if err != nil {
		return "", fmt.Errorf("%w: %s!%s", ErrCellNotFound, sheet, ref.Name())
	}
	return v, nil
}

// Cell returns the formatted computed value for ref, which may carry its
// own sheet prefix overriding the sheet argument.
func (w *Workbook) Cell(sheet, refStr string) (string, error) {
	ref, err := ParseRef(refStr)
	if err != nil {
		return "", err
	}
	resolved, err := w.pickSheet(sheet, ref)
	if err != nil {
		return "", err
	}
	v, err := w.Value(resolved, ref)
	if err != nil {
		return "", err
	}
	return FormatValue(v), nil
}

// LastNonEmpty scans downward from refStr in the same column and returns
// the last non-empty computed value before the first empty cell or sheet
// end. Used to find column totals without knowing the exact row.
func (w *Workbook) LastNonEmpty(sheet, refStr string) (string, error) {
	ref, err := ParseRef(refStr)
	if err != nil {
		return "", err
	}
	resolved, err := w.pickSheet(sheet, ref)
	if err != nil {
		return "", err
	}
	return w.lastNonEmptyAt(resolved, ref.Row, ref.Col)
}

func (w *Workbook) lastNonEmptyAt(sheet string, row, col int) (string, error) {
	rows, err := w.sheetRows(sheet)
	if err != nil {
		return "", err
	}
	last := ""
	for r := row; r <= len(rows); r++ {
		v := cellAt(rows, r, col)
		if strings.TrimSpace(v) == "" {
			break
		}
		last = v
	}
	if last == "" {
		ref := Ref{Row: row, Col: col}
		return "", fmt.Errorf("%w: no value at or below %s!%s", ErrCellNotFound, sheet, ref.Name())
	}
	return FormatValue(last), nil
}

// LastNonEmptyByTitle scans rightward across the anchor's row until a cell
// equals title (case-insensitive, trimmed), then returns LastNonEmpty of
// that column starting one row below the title row.
func (w *Workbook) LastNonEmptyByTitle(sheet, anchorRef, title string) (string, error) {
	anchor, err := ParseRef(anchorRef)
	if err != nil {
		return "", err
	}
	resolved, err := w.pickSheet(sheet, anchor)
	if err != nil {
		return "", err
	}
	rows, err := w.sheetRows(resolved)
	if err != nil {
		return "", err
	}
	col, err := findTitleColumn(rows, anchor.Row, anchor.Col, title)
	if err != nil {
		return "", err
	}
	return w.lastNonEmptyAt(resolved, anchor.Row+1, col)
}

// Range returns the rectangular block of formatted computed values between
// the two corners of rangeStr, inclusive, row-major.
func (w *Workbook) Range(sheet, rangeStr string) (*models.Table, error) {
	start, end, err := ParseRange(rangeStr)
	if err != nil {
		return nil, err
	}
	resolved, err := w.pickSheet(sheet, start)
	if err != nil {
		return nil, err
	}
	rows, err := w.sheetRows(resolved)
	if err != nil {
		return nil, err
	}
	table := &models.Table{HeaderRow: true}
	for r := start.Row; r <= end.Row; r++ {
		row := make([]string, 0, end.Col-start.Col+1)
		for c := start.Col; c <= end.Col; c++ {
			row = append(row, FormatValue(cellAt(rows, r, c)))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ColumnsByRef extracts, for each anchor reference, the full column from
// that row down to the last non-empty row in that column, and returns the
// columns concatenated side by side. All anchors must share a starting row.
func (w *Workbook) ColumnsByRef(sheet string, refs []string) (*models.Table, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no column references", ErrInvalidReference)
	}
	resolvedSheet := ""
	startRow := 0
	cols := make([]int, 0, len(refs))
	for _, refStr := range refs {
		ref, err := ParseRef(refStr)
		if err != nil {
			return nil, err
		}
		if resolvedSheet == "" {
			resolvedSheet, err = w.pickSheet(sheet, ref)
			if err != nil {
				return nil, err
			}
			startRow = ref.Row
		} else if ref.Row != startRow {
			return nil, fmt.Errorf("%w: column anchors must share a starting row (%s)", ErrInvalidReference, refStr)
		}
		cols = append(cols, ref.Col)
	}
	return w.extractColumns(resolvedSheet, cols, startRow)
}

// ColumnsByTitle locates each title in titleRow by rightward scan from
// column A, then extracts the columns below it the way ColumnsByRef does.
// The title row is included as the header row.
func (w *Workbook) ColumnsByTitle(sheet string, titles []string, titleRow int) (*models.Table, error) {
	if titleRow < 1 {
		return nil, fmt.Errorf("%w: title row %d", ErrInvalidReference, titleRow)
	}
	resolved, err := w.ResolveSheet(sheet)
	if err != nil {
		return nil, err
	}
	rows, err := w.sheetRows(resolved)
	if err != nil {
		return nil, err
	}
	cols := make([]int, 0, len(titles))
	for _, title := range titles {
		col, err := findTitleColumn(rows, titleRow, 1, title)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return w.extractColumns(resolved, cols, titleRow)
}

func (w *Workbook) extractColumns(sheet string, cols []int, startRow int) (*models.Table, error) {
	rows, err := w.sheetRows(sheet)
	if err != nil {
		return nil, err
	}

	// Each column runs from the start row down to its own last non-empty
	// row; shorter columns are padded so the table stays rectangular.
	depth := 0
	for _, col := range cols {
		last := startRow - 1
		for r := startRow; r <= len(rows); r++ {
			if strings.TrimSpace(cellAt(rows, r, col)) != "" {
				last = r
			}
		}
		if last-startRow+1 > depth {
			depth = last - startRow + 1
		}
	}
	if depth <= 0 {
		return nil, fmt.Errorf("%w: no data at or below row %d", ErrCellNotFound, startRow)
	}

	table := &models.Table{HeaderRow: true}
	for r := startRow; r < startRow+depth; r++ {
		row := make([]string, 0, len(cols))
		for _, col := range cols {
			row = append(row, FormatValue(cellAt(rows, r, col)))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// pickSheet resolves the effective sheet: a sheet prefix on the reference
// wins over the sheet argument.
func (w *Workbook) pickSheet(sheet string, ref Ref) (string, error) {
	if ref.Sheet != "" {
		sheet = ref.Sheet
	}
	return w.ResolveSheet(sheet)
}

func (w *Workbook) sheetRows(sheet string) ([][]string, error) {
	if cached, ok := w.rows[sheet]; ok {
		return cached, nil
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q", ErrCellNotFound, sheet)
	}
	w.rows[sheet] = rows
	return rows, nil
}

// cellAt reads a 1-based coordinate from a GetRows matrix, returning ""
// past the populated area.
func cellAt(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// findTitleColumn scans rightward along row from startCol for a cell whose
// trimmed text equals title, case-insensitively. The scan stops at the last
// populated cell of the row.
func findTitleColumn(rows [][]string, row, startCol int, title string) (int, error) {
	if row < 1 || row > len(rows) {
		return 0, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	want := strings.TrimSpace(title)
	r := rows[row-1]
	for c := startCol; c <= len(r); c++ {
		if strings.EqualFold(strings.TrimSpace(r[c-1]), want) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in row %d", ErrTitleNotFound, title, row)
}
