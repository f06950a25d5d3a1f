// Package keydoc resolves {{TYPE!arg!...}} keywords embedded in text
// documents against spreadsheets, JSON files, templates, interactive
// prompts and an AI summarizer.
package keydoc

import (
	"github.com/keydoc/keydoc-go/pkg/keydoc/input"
	"github.com/keydoc/keydoc-go/pkg/keydoc/summarize"
)

// Options configures a resolution pass.
type Options struct {
	// TemplateDir is where TEMPLATE and AI document references load from.
	TemplateDir string
	// JSONDir is where JSON file references load from.
	JSONDir string
	// ExcelDir is where XL workbook selectors load from.
	ExcelDir string
	// PromptDir is where AI prompt templates load from.
	PromptDir string

	// DefaultWorkbook is the workbook XL keywords use when they carry no
	// workbook selector. Empty disables default-workbook lookups.
	DefaultWorkbook string

	// Inputs answers INPUT prompts. Nil falls back to declared defaults
	// without interaction.
	Inputs input.Provider

	// Summarizer backs AI keywords. Nil turns every AI keyword into a
	// diagnostic.
	Summarizer summarize.Summarizer

	// MaxWords is the AI word budget when the keyword names none.
	MaxWords int
}

// DefaultOptions returns options resolving every resource against the
// working directory, with non-interactive input defaults.
func DefaultOptions() Options {
	return Options{
		TemplateDir: ".",
		JSONDir:     ".",
		ExcelDir:    ".",
		PromptDir:   ".",
		Inputs:      input.Defaults{},
		MaxWords:    summarize.DefaultMaxWords,
	}
}
