package keydoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keydoc/keydoc-go/pkg/keydoc/input"
	"github.com/keydoc/keydoc-go/pkg/keydoc/keyword"
	"github.com/keydoc/keydoc-go/pkg/keydoc/models"
)

// Report lists everything a document will need before a resolution pass:
// resources that are currently missing, prompts the user will be asked,
// and keywords that cannot resolve at all.
type Report struct {
	Missing     []models.MissingResourceError
	Inputs      []input.Request
	Diagnostics []Diagnostic
	Warnings    []keyword.Warning
}

// Clean reports whether the document can resolve without missing
// resources or unresolvable keywords.
func (rep *Report) Clean() bool {
	return len(rep.Missing) == 0 && len(rep.Diagnostics) == 0
}

// Preflight inspects text without resolving values: it checks every
// referenced resource for existence and collects the prompts the document
// would raise. Unlike Resolve, it keeps going past failures so the report
// covers the whole document.
func (r *Resolver) Preflight(ctx context.Context, text string) (*Report, error) {
	c := &check{r: r, rep: &Report{}, seenMissing: map[string]bool{}, seenInputs: map[string]bool{}}
	if err := c.walk(ctx, text, nil); err != nil {
		return nil, err
	}
	return c.rep, nil
}

type check struct {
	r           *Resolver
	rep         *Report
	seenMissing map[string]bool
	seenInputs  map[string]bool
}

func (c *check) walk(ctx context.Context, text string, includes []string) error {
	spans, warnings := keyword.Scan(text)
	c.rep.Warnings = append(c.rep.Warnings, warnings...)

	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.checkSpan(ctx, span, includes); err != nil {
			return err
		}
		// Nested keywords in the arguments are checked too.
		for _, arg := range span.Args {
			if keyword.ContainsKeyword(arg) {
				if err := c.walk(ctx, arg, includes); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *check) checkSpan(ctx context.Context, span keyword.Span, includes []string) error {
	switch span.Kind {
	case keyword.KindXL:
		c.checkXL(span)
	case keyword.KindInput:
		c.checkInput(span)
	case keyword.KindTemplate:
		return c.checkTemplate(ctx, span, includes)
	case keyword.KindJSON:
		c.checkJSON(span)
	case keyword.KindAI:
		return c.checkAI(ctx, span, includes)
	default:
		c.diag(span, fmt.Errorf("%w: %q", ErrUnknownKeyword, span.Tag))
	}
	return nil
}

func (c *check) checkXL(span keyword.Span) {
	name := c.r.opts.DefaultWorkbook
	if len(span.Args) > 0 && isWorkbookSelector(span.Args[0]) {
		name = keyword.Unquote(span.Args[0])
	}
	if name == "" {
		c.diag(span, fmt.Errorf("%w: XL without a workbook selector and no default workbook", ErrBadKeyword))
		return
	}
	path := name
	if !filepath.IsAbs(path) && c.r.opts.ExcelDir != "" {
		path = filepath.Join(c.r.opts.ExcelDir, name)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.missing(models.MissingResourceError{Kind: models.ResourceWorkbook, Name: filepath.Base(name)})
	}
}

func (c *check) checkInput(span keyword.Span) {
	if len(span.Args) < 2 {
		c.diag(span, fmt.Errorf("%w: INPUT needs a kind and a label", ErrBadKeyword))
		return
	}
	extras := make([]string, 0, len(span.Args)-2)
	for _, a := range span.Args[2:] {
		extras = append(extras, keyword.Unquote(a))
	}
	req, err := input.ParseRequest(span.Args[0], keyword.Unquote(span.Args[1]), extras)
	if err != nil {
		c.diag(span, fmt.Errorf("%w: %v", ErrBadKeyword, err))
		return
	}
	if !c.seenInputs[req.Key()] {
		c.seenInputs[req.Key()] = true
		c.rep.Inputs = append(c.rep.Inputs, req)
	}
}

func (c *check) checkTemplate(ctx context.Context, span keyword.Span, includes []string) error {
	if len(span.Args) == 0 || strings.TrimSpace(span.Args[0]) == "" {
		c.diag(span, fmt.Errorf("%w: TEMPLATE needs a file name", ErrBadKeyword))
		return nil
	}
	name := keyword.Unquote(span.Args[0])
	key := strings.ToLower(name)
	for _, active := range includes {
		if active == key {
			c.diag(span, fmt.Errorf("%w: %s", ErrCyclicInclude, strings.Join(append(includes, key), " -> ")))
			return nil
		}
	}
	text, err := c.r.templates.Load(name)
	if err != nil {
		c.reportLoadError(span, err)
		return nil
	}
	// Keywords inside the included template count against this document.
	return c.walk(ctx, text, append(includes, key))
}

func (c *check) checkJSON(span keyword.Span) {
	args := span.Args
	if len(args) > 0 && strings.TrimSpace(args[0]) == "" {
		args = args[1:]
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		c.diag(span, fmt.Errorf("%w: JSON needs a file name", ErrBadKeyword))
		return
	}
	name := keyword.Unquote(args[0])
	path := name
	if !filepath.IsAbs(path) && c.r.opts.JSONDir != "" {
		path = filepath.Join(c.r.opts.JSONDir, name)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.missing(models.MissingResourceError{Kind: models.ResourceJSON, Name: name})
	}
}

func (c *check) checkAI(ctx context.Context, span keyword.Span, includes []string) error {
	if len(span.Args) == 0 || strings.TrimSpace(span.Args[0]) == "" {
		c.diag(span, fmt.Errorf("%w: AI needs a source document", ErrBadKeyword))
		return nil
	}
	if _, err := c.r.templates.Load(keyword.Unquote(span.Args[0])); err != nil {
		var missing *models.MissingResourceError
		if errors.As(err, &missing) {
			c.missing(models.MissingResourceError{Kind: models.ResourceDocument, Name: missing.Name})
		} else {
			c.diag(span, err)
		}
	}
	if len(span.Args) > 1 {
		// A non-.txt prompt argument is literal prompt text, not a file.
		if promptName := keyword.Unquote(span.Args[1]); isPromptFile(promptName) {
			if _, err := c.r.prompts.Load(promptName); err != nil {
				var missing *models.MissingResourceError
				if errors.As(err, &missing) {
					c.missing(models.MissingResourceError{Kind: models.ResourcePrompt, Name: missing.Name})
				} else {
					c.diag(span, err)
				}
			}
		}
	}
	return ctx.Err()
}

func (c *check) reportLoadError(span keyword.Span, err error) {
	var missing *models.MissingResourceError
	if errors.As(err, &missing) {
		c.missing(*missing)
		return
	}
	c.diag(span, err)
}

func (c *check) missing(m models.MissingResourceError) {
	key := m.Kind + "\x00" + m.Name
	if c.seenMissing[key] {
		return
	}
	c.seenMissing[key] = true
	c.rep.Missing = append(c.rep.Missing, m)
}

func (c *check) diag(span keyword.Span, err error) {
	c.rep.Diagnostics = append(c.rep.Diagnostics, Diagnostic{
		Offset:  span.Start,
		Keyword: span.Raw,
		Err:     err,
	})
}
