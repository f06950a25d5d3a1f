package models

import (
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	table := &Table{
		HeaderRow: true,
		Rows: [][]string{
			{"Name", "Total"},
			{"Widgets", "10"},
			{"Gadgets", "1,234.50"},
		},
	}
	got := table.Render()
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	if lines[1] != "--------+---------" {
		t.Errorf("unexpected separator %q", lines[1])
	}
	// Numbers right-aligned, text left-aligned.
	if lines[2] != "Widgets |       10" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "Gadgets | 1,234.50" {
		t.Errorf("unexpected row %q", lines[3])
	}
}

func TestRenderSingleRowHasNoSeparator(t *testing.T) {
	table := &Table{HeaderRow: true, Rows: [][]string{{"only", "row"}}}
	if got := table.Render(); strings.Contains(got, "-") {
		t.Errorf("single-row table should have no separator: %q", got)
	}
}

func TestRenderPadsShortRows(t *testing.T) {
	table := &Table{Rows: [][]string{{"a", "b"}, {"c"}}}
	lines := strings.Split(table.Render(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "c |  " {
		t.Errorf("short row not padded: %q", lines[1])
	}
}

func TestMissingResourceError(t *testing.T) {
	err := error(&MissingResourceError{Kind: ResourceJSON, Name: "data.json"})
	if err.Error() != "missing json resource: data.json" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var missing *MissingResourceError
	if !errors.As(err, &missing) {
		t.Error("errors.As should match MissingResourceError")
	}
}
