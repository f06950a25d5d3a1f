package models

import "fmt"

// Resource kinds reported by MissingResourceError.
const (
	ResourceWorkbook = "workbook"
	ResourceJSON     = "json"
	ResourceTemplate = "template"
	ResourceDocument = "document"
	ResourcePrompt   = "prompt"
)

// MissingResourceError reports a backing file that has not been supplied
// yet. It is recoverable: the caller provides the file and re-invokes
// resolution. A preflight pass collects every instance before any single
// one is requested.
type MissingResourceError struct {
	// Kind is one of the Resource* constants.
	Kind string
	// Name is the filename as written in the keyword.
	Name string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing %s resource: %s", e.Kind, e.Name)
}
