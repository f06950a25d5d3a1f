// Package keyword scans source text for {{TYPE!arg!arg!...}} placeholder
// spans and splits them into typed argument lists.
package keyword

import "strings"

// Kind identifies the keyword type tag, matched case-insensitively.
type Kind string

const (
	// KindXL reads cells, totals, ranges and columns from a workbook.
	KindXL Kind = "XL"
	// KindInput requests a value from the interactive input collaborator.
	KindInput Kind = "INPUT"
	// KindTemplate includes another template fragment, optionally a section.
	KindTemplate Kind = "TEMPLATE"
	// KindJSON evaluates a JSONPath against a JSON file.
	KindJSON Kind = "JSON"
	// KindAI summarizes a source document through the Summarizer collaborator.
	KindAI Kind = "AI"
	// KindUnknown is any tag outside the set above.
	KindUnknown Kind = ""
)

// KindOf maps a raw tag to its Kind.
func KindOf(tag string) Kind {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "XL":
		return KindXL
	case "INPUT":
		return KindInput
	case "TEMPLATE":
		return KindTemplate
	case "JSON":
		return KindJSON
	case "AI":
		return KindAI
	}
	return KindUnknown
}

// Span is one keyword occurrence in source text, delimiters included.
// Arguments are raw: they may still contain quotes and nested {{...}} spans,
// which the dispatcher resolves before the handler runs.
type Span struct {
	// Start and End are byte offsets [Start,End) covering {{...}}.
	Start, End int
	// Raw is the span text including delimiters.
	Raw string
	// Inner is the text between the delimiters.
	Inner string
	// Kind is the parsed type tag.
	Kind Kind
	// Tag is the raw first token, before case folding.
	Tag string
	// Args are the positional argument tokens after the tag. An empty slot
	// (`!!`) yields an empty string and is distinct from a missing trailing
	// argument.
	Args []string
}

// Arg returns the i-th argument, or "" when absent.
func (s Span) Arg(i int) string {
	if i < 0 || i >= len(s.Args) {
		return ""
	}
	return s.Args[i]
}

// Warning is a non-fatal parse problem; the offending text stays literal.
type Warning struct {
	Offset  int
	Message string
}

// ContainsKeyword reports whether s holds an unresolved span opener.
func ContainsKeyword(s string) bool {
	return strings.Contains(s, "{{")
}

// Unquote strips one pair of surrounding double quotes, if present.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseParams splits a `key=value&key2=value2` argument into a map with
// lowercased keys. Tokens without `=` are ignored.
func ParseParams(s string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return params
}
