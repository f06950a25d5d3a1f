package keydoc

import (
	"errors"
	"fmt"
)

// ErrUnknownKeyword indicates a keyword tag outside the supported set.
var ErrUnknownKeyword = errors.New("unknown keyword")

// ErrBadKeyword indicates a recognized tag with malformed arguments.
var ErrBadKeyword = errors.New("malformed keyword")

// ErrCyclicInclude indicates a template inclusion chain that revisits a
// template already on the chain.
var ErrCyclicInclude = errors.New("cyclic template include")

// Diagnostic records one keyword that failed to resolve. The span is left
// in the output verbatim; the diagnostic explains why.
type Diagnostic struct {
	Offset  int
	Keyword string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("offset %d: %s: %v", d.Offset, d.Keyword, d.Err)
}
