package workbook

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatValue applies the uniform output formatting rule: non-integer
// numeric values are rendered with thousands separators and two decimals;
// integer-looking values stay plain. Values carrying currency or percent
// formatting from the source cell's number format are preserved as-is, and
// non-numeric text passes through untouched.
func FormatValue(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "$%") {
		return s
	}
	cleaned := strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return s
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return printer.Sprintf("%.2f", f)
}
