package keyword

import (
	"reflect"
	"testing"
)

func TestScanSingleSpan(t *testing.T) {
	text := "Total: {{XL!CELL!A1}} end"
	spans, warns := Scan(text)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Kind != KindXL {
		t.Errorf("expected KindXL, got %q", s.Kind)
	}
	if s.Start != 7 || s.End != 21 {
		t.Errorf("unexpected offsets [%d,%d)", s.Start, s.End)
	}
	if s.Raw != "{{XL!CELL!A1}}" {
		t.Errorf("unexpected raw %q", s.Raw)
	}
	if !reflect.DeepEqual(s.Args, []string{"CELL", "A1"}) {
		t.Errorf("unexpected args %v", s.Args)
	}
}

func TestScanNestedSpan(t *testing.T) {
	text := "{{JSON!{{INPUT!TEXT!File!data.json}}!$.total}}"
	spans, warns := Scan(text)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(spans) != 1 {
		t.Fatalf("expected 1 top-level span, got %d", len(spans))
	}
	s := spans[0]
	if s.Kind != KindJSON {
		t.Errorf("expected KindJSON, got %q", s.Kind)
	}
	if len(s.Args) != 2 {
		t.Fatalf("expected 2 args, got %v", s.Args)
	}
	if s.Args[0] != "{{INPUT!TEXT!File!data.json}}" {
		t.Errorf("nested span flattened: %q", s.Args[0])
	}
}

func TestScanQuotedSeparator(t *testing.T) {
	spans, _ := Scan(`{{XL!COLUMN!Sheet!"A!B"!1}}`)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	want := []string{"COLUMN", "Sheet", `"A!B"`, "1"}
	if !reflect.DeepEqual(spans[0].Args, want) {
		t.Errorf("args = %v, want %v", spans[0].Args, want)
	}
}

func TestScanEmptyArgumentSlot(t *testing.T) {
	spans, _ := Scan("{{JSON!!file.json}}")
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	want := []string{"", "file.json"}
	if !reflect.DeepEqual(spans[0].Args, want) {
		t.Errorf("args = %v, want %v", spans[0].Args, want)
	}
}

func TestScanUnterminated(t *testing.T) {
	spans, warns := Scan("before {{XL!CELL!A1 after {{JSON!f.json!$.x}}")
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %v", warns)
	}
	if warns[0].Offset != 7 {
		t.Errorf("warning offset = %d, want 7", warns[0].Offset)
	}
	// The complete inner span is still found.
	if len(spans) != 1 || spans[0].Kind != KindJSON {
		t.Fatalf("expected the later JSON span, got %v", spans)
	}
}

func TestScanMultipleSpansInOrder(t *testing.T) {
	spans, _ := Scan("{{XL!CELL!A1}} and {{INPUT!TEXT!Name!Bob}}")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Kind != KindXL || spans[1].Kind != KindInput {
		t.Errorf("unexpected kinds %q, %q", spans[0].Kind, spans[1].Kind)
	}
	if spans[0].End > spans[1].Start {
		t.Errorf("spans out of document order")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"XL", KindXL},
		{"xl", KindXL},
		{" input ", KindInput},
		{"Template", KindTemplate},
		{"JSON", KindJSON},
		{"ai", KindAI},
		{"BOGUS", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.tag); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A1,C1,E1", []string{"A1", "C1", "E1"}},
		{`"A,B"`, []string{"A,B"}},
		{`Revenue, "Cost, Net", Profit`, []string{"Revenue", "Cost, Net", "Profit"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseParams(t *testing.T) {
	params := ParseParams("section=intro:conclusion&title=false")
	if params["section"] != "intro:conclusion" {
		t.Errorf("section = %q", params["section"])
	}
	if params["title"] != "false" {
		t.Errorf("title = %q", params["title"])
	}
}
