// Package fragment loads template documents and extracts heading-bounded
// sections from them.
package fragment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keydoc/keydoc-go/pkg/keydoc/models"
)

// ErrSectionNotFound indicates a section heading that does not exist in
// the template document.
var ErrSectionNotFound = errors.New("section not found")

// Store resolves template names against a directory of markdown documents.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Load reads a template by name. A bare name without an extension is
// tried with .md appended; the name is tried as written first, then
// relative to the store directory. A missing template is reported as a
// recoverable MissingResourceError.
func (s *Store) Load(name string) (string, error) {
	path := name
	if filepath.Ext(path) == "" {
		path += ".md"
	}
	if s.dir != "" && !filepath.IsAbs(path) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = filepath.Join(s.dir, path)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &models.MissingResourceError{Kind: models.ResourceTemplate, Name: name}
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// SectionSpec selects a portion of a template: a single heading's block,
// or the run of blocks from Start through End. IncludeTitle controls
// whether the matched heading lines survive into the output.
type SectionSpec struct {
	Start        string
	End          string
	IncludeTitle bool
}

// SectionFromParams builds a SectionSpec from a parsed parameter map of
// the form section=Start:End&title=false. A missing section parameter
// yields the zero spec, which selects the whole document.
func SectionFromParams(params map[string]string) SectionSpec {
	spec := SectionSpec{IncludeTitle: true}
	if raw, ok := params["section"]; ok {
		start, end, found := strings.Cut(raw, ":")
		spec.Start = strings.TrimSpace(start)
		if found {
			spec.End = strings.TrimSpace(end)
		}
	}
	if strings.EqualFold(params["title"], "false") {
		spec.IncludeTitle = false
	}
	return spec
}

// heading is one ATX heading line with its level and position.
type heading struct {
	line  int
	level int
	text  string
}

// ExtractSection returns the portion of text selected by spec. A block is
// a heading line plus everything up to the next heading of the same or a
// higher level. When End is set, the result runs from Start's heading
// through the end of End's block. Headings match by exact trimmed text
// first, then under punctuation-folding normalization.
func ExtractSection(text string, spec SectionSpec) (string, error) {
	if spec.Start == "" {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	headings := scanHeadings(lines)

	startIdx := findHeading(headings, spec.Start)
	if startIdx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSectionNotFound, spec.Start)
	}
	endIdx := startIdx
	if spec.End != "" {
		endIdx = findHeading(headings, spec.End)
		if endIdx < 0 {
			return "", fmt.Errorf("%w: %q", ErrSectionNotFound, spec.End)
		}
		if endIdx < startIdx {
			startIdx, endIdx = endIdx, startIdx
		}
	}

	firstLine := headings[startIdx].line
	lastLine := blockEnd(lines, headings, endIdx)

	out := make([]string, 0, lastLine-firstLine+1)
	for i := firstLine; i <= lastLine; i++ {
		if !spec.IncludeTitle && isSelectedHeading(headings, i, startIdx, endIdx) {
			continue
		}
		out = append(out, lines[i])
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n"), nil
}

// blockEnd returns the last line index of the block owned by headings[idx]:
// the line before the next heading of equal or higher level, or the end of
// the document.
func blockEnd(lines []string, headings []heading, idx int) int {
	h := headings[idx]
	for _, next := range headings[idx+1:] {
		if next.level <= h.level {
			return next.line - 1
		}
	}
	return len(lines) - 1
}

// isSelectedHeading reports whether line is one of the headings the spec
// matched directly, as opposed to a sub-heading inside the selection.
func isSelectedHeading(headings []heading, line, startIdx, endIdx int) bool {
	return line == headings[startIdx].line || line == headings[endIdx].line
}

func scanHeadings(lines []string) []heading {
	var hs []heading
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level == 0 || level > 6 {
			continue
		}
		rest := trimmed[level:]
		if rest != "" && !strings.HasPrefix(rest, " ") {
			continue
		}
		hs = append(hs, heading{line: i, level: level, text: strings.TrimSpace(rest)})
	}
	return hs
}

// findHeading prefers an exact trimmed match, then retries with both
// sides normalized.
func findHeading(headings []heading, want string) int {
	want = strings.TrimSpace(want)
	for i, h := range headings {
		if h.text == want {
			return i
		}
	}
	normalized := Normalize(want)
	for i, h := range headings {
		if Normalize(h.text) == normalized {
			return i
		}
	}
	return -1
}

// Normalize folds a heading for comparison: lowercased, typographic
// apostrophes and quotes mapped to their ASCII forms, punctuation folded
// to spaces, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(
		"’", "'",
		"‘", "'",
		"“", `"`,
		"”", `"`,
	)
	s = replacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(",.:;!?-_()[]{}/", r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
