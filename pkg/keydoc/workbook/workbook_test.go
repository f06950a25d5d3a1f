package workbook

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/keydoc/keydoc-go/pkg/keydoc/models"
)

// buildTestBook writes a small budget workbook:
//
//	      A        B        C
//	1   Name     Total    Notes
//	2   Widgets  10       first
//	3   Gadgets  20       second
//	4            (empty)
//	5            30
func buildTestBook(t *testing.T) *Workbook {
	t.Helper()

	f := excelize.NewFile()
	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "Name")
	f.SetCellValue(sheet, "B1", "Total")
	f.SetCellValue(sheet, "C1", "Notes")
	f.SetCellValue(sheet, "A2", "Widgets")
	f.SetCellValue(sheet, "B2", 10)
	f.SetCellValue(sheet, "C2", "first")
	f.SetCellValue(sheet, "A3", "Gadgets")
	f.SetCellValue(sheet, "B3", 20)
	f.SetCellValue(sheet, "C3", "second")
	f.SetCellValue(sheet, "B5", 30)

	tmpFile := filepath.Join(t.TempDir(), "budget.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("failed to save test workbook: %v", err)
	}
	f.Close()

	w, err := Open(tmpFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpenMissingWorkbook(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	var missing *models.MissingResourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingResourceError, got %v", err)
	}
	if missing.Kind != models.ResourceWorkbook || missing.Name != "nope.xlsx" {
		t.Errorf("unexpected missing resource %+v", missing)
	}
}

func TestCell(t *testing.T) {
	w := buildTestBook(t)

	v, err := w.Cell("", "B2")
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if v != "10" {
		t.Errorf("Cell(B2) = %q, want 10", v)
	}

	// Sheet prefix on the reference wins.
	v, err = w.Cell("", "Sheet1!A3")
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if v != "Gadgets" {
		t.Errorf("Cell(Sheet1!A3) = %q", v)
	}
}

func TestCellUnknownSheet(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.Cell("NoSuch", "A1"); !errors.Is(err, ErrCellNotFound) {
		t.Errorf("expected ErrCellNotFound, got %v", err)
	}
}

func TestCellInvalidReference(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.Cell("", "not-a-ref"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestLastNonEmptyStopsAtGap(t *testing.T) {
	w := buildTestBook(t)

	// Column B is [Total, 10, 20, "", 30]: the scan stops before the gap.
	v, err := w.LastNonEmpty("", "B1")
	if err != nil {
		t.Fatalf("LastNonEmpty failed: %v", err)
	}
	if v != "20" {
		t.Errorf("LastNonEmpty(B1) = %q, want 20", v)
	}
}

func TestLastNonEmptyEmptyStart(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.LastNonEmpty("", "E1"); !errors.Is(err, ErrCellNotFound) {
		t.Errorf("expected ErrCellNotFound, got %v", err)
	}
}

func TestLastNonEmptyByTitle(t *testing.T) {
	w := buildTestBook(t)

	v, err := w.LastNonEmptyByTitle("Sheet1", "A1", "total")
	if err != nil {
		t.Fatalf("LastNonEmptyByTitle failed: %v", err)
	}
	// Strictly below the title row: 10, 20, then the gap.
	if v != "20" {
		t.Errorf("LastNonEmptyByTitle = %q, want 20", v)
	}
}

func TestLastNonEmptyByTitleNotFound(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.LastNonEmptyByTitle("Sheet1", "A1", "Revenue"); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestRange(t *testing.T) {
	w := buildTestBook(t)

	table, err := w.Range("", "A1:B3")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Name" || table.Rows[0][1] != "Total" {
		t.Errorf("unexpected header row %v", table.Rows[0])
	}
	if table.Rows[2][0] != "Gadgets" || table.Rows[2][1] != "20" {
		t.Errorf("unexpected last row %v", table.Rows[2])
	}
}

func TestColumnsByRef(t *testing.T) {
	w := buildTestBook(t)

	table, err := w.ColumnsByRef("Sheet1", []string{"A1", "C1"})
	if err != nil {
		t.Fatalf("ColumnsByRef failed: %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Name" || table.Rows[0][1] != "Notes" {
		t.Errorf("unexpected header %v", table.Rows[0])
	}
	if table.Rows[1][0] != "Widgets" || table.Rows[1][1] != "first" {
		t.Errorf("unexpected row %v", table.Rows[1])
	}
}

func TestColumnsByRefMismatchedRows(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.ColumnsByRef("Sheet1", []string{"A1", "C2"}); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestColumnsByTitle(t *testing.T) {
	w := buildTestBook(t)

	table, err := w.ColumnsByTitle("Sheet1", []string{"Name", "Total"}, 1)
	if err != nil {
		t.Fatalf("ColumnsByTitle failed: %v", err)
	}
	// Column B runs down to the stray value in row 5, so the table is five
	// rows deep and column A is padded past its own extent.
	if len(table.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Name" || table.Rows[0][1] != "Total" {
		t.Errorf("unexpected header %v", table.Rows[0])
	}
	if table.Rows[2][1] != "20" {
		t.Errorf("unexpected value %v", table.Rows[2])
	}
	if table.Rows[4][0] != "" || table.Rows[4][1] != "30" {
		t.Errorf("unexpected padded row %v", table.Rows[4])
	}
}

func TestColumnsByTitleUnknownTitle(t *testing.T) {
	w := buildTestBook(t)
	if _, err := w.ColumnsByTitle("Sheet1", []string{"Missing"}, 1); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}
