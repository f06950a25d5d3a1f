package workbook

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"A1", Ref{Row: 1, Col: 1}},
		{"b12", Ref{Row: 12, Col: 2}},
		{"Sheet2!B5", Ref{Sheet: "Sheet2", Row: 5, Col: 2}},
		{"'My Sheet'!AA10", Ref{Sheet: "My Sheet", Row: 10, Col: 27}},
		{"  C3  ", Ref{Row: 3, Col: 3}},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.in)
		if err != nil {
			t.Errorf("ParseRef(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRefInvalid(t *testing.T) {
	for _, in := range []string{"", "1A", "A0", "A", "11", "Sheet!", "A1:B2"} {
		if _, err := ParseRef(in); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("ParseRef(%q) = %v, want ErrInvalidReference", in, err)
		}
	}
}

func TestParseRefDeterministic(t *testing.T) {
	_, err1 := ParseRef("ZZZ!")
	_, err2 := ParseRef("ZZZ!")
	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("errors differ: %v vs %v", err1, err2)
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("Sales!C3:C7")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if start != (Ref{Sheet: "Sales", Row: 3, Col: 3}) {
		t.Errorf("start = %+v", start)
	}
	if end != (Ref{Sheet: "Sales", Row: 7, Col: 3}) {
		t.Errorf("end = %+v", end)
	}
}

func TestParseRangeNormalizesCorners(t *testing.T) {
	start, end, err := ParseRange("G13:A1")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if start.Row != 1 || start.Col != 1 || end.Row != 13 || end.Col != 7 {
		t.Errorf("corners not normalized: %+v .. %+v", start, end)
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, in := range []string{"A1", "A1:", ":B2", "A1:B2:C3"} {
		if _, _, err := ParseRange(in); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("ParseRange(%q) = %v, want ErrInvalidReference", in, err)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"hello", "hello"},
		{"100", "100"},
		{"1234.5", "1,234.50"},
		{"1234567.891", "1,234,567.89"},
		{"0.5", "0.50"},
		{"$1,200.00", "$1,200.00"},
		{"12%", "12%"},
		{"2023", "2023"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
