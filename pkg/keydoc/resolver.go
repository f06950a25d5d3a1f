package keydoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/keydoc/keydoc-go/pkg/keydoc/fragment"
	"github.com/keydoc/keydoc-go/pkg/keydoc/input"
	"github.com/keydoc/keydoc-go/pkg/keydoc/jsonpath"
	"github.com/keydoc/keydoc-go/pkg/keydoc/keyword"
	"github.com/keydoc/keydoc-go/pkg/keydoc/models"
	"github.com/keydoc/keydoc-go/pkg/keydoc/workbook"
)

// Substitution records one keyword that resolved, with its offsets in the
// source text and the value that replaced it. Table is set for tabular
// results alongside their rendered text form.
type Substitution struct {
	Start   int
	End     int
	Keyword string
	Value   string
	Table   *models.Table
}

// Result is the outcome of one resolution pass. Keywords that failed stay
// in Text verbatim and are explained in Diagnostics; the pass itself only
// fails on cancellation.
type Result struct {
	Text          string
	Substitutions []Substitution
	Diagnostics   []Diagnostic
	Warnings      []keyword.Warning
}

// Resolver resolves keywords against the resources named in its options.
// Workbooks, JSON documents and prompt answers are cached across calls,
// so one resolver should serve one document session.
type Resolver struct {
	opts     Options
	books    map[string]*workbook.Workbook
	jsonDocs map[string]any
	inputs   *input.Cache

	templates *fragment.Store
	prompts   *fragment.Store
}

// New creates a resolver. Nil-safe defaults: a missing input provider
// answers with declared defaults.
func New(opts Options) *Resolver {
	provider := opts.Inputs
	if provider == nil {
		provider = input.Defaults{}
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 100
	}
	return &Resolver{
		opts:      opts,
		books:     make(map[string]*workbook.Workbook),
		jsonDocs:  make(map[string]any),
		inputs:    input.NewCache(provider),
		templates: fragment.NewStore(opts.TemplateDir),
		prompts:   fragment.NewStore(opts.PromptDir),
	}
}

// Close releases every workbook the resolver opened.
func (r *Resolver) Close() error {
	var first error
	for _, b := range r.books {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.books = make(map[string]*workbook.Workbook)
	return first
}

// Resolve substitutes every keyword in text. Individual keyword failures
// become diagnostics and leave the keyword in place; the error return is
// reserved for cancellation, which discards the partial output.
func (r *Resolver) Resolve(ctx context.Context, text string) (*Result, error) {
	p := &pass{r: r, res: &Result{}}
	out, err := p.resolveText(ctx, text)
	if err != nil {
		return nil, err
	}
	p.res.Text = out
	return p.res, nil
}

// pass carries the per-call state: collected output and the template
// inclusion chain for cycle detection.
type pass struct {
	r        *Resolver
	res      *Result
	includes []string
	depth    int
}

func (p *pass) resolveText(ctx context.Context, text string) (string, error) {
	if !keyword.ContainsKeyword(text) {
		return text, nil
	}
	spans, warnings := keyword.Scan(text)
	if p.depth == 0 {
		p.res.Warnings = append(p.res.Warnings, warnings...)
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b.WriteString(text[last:span.Start])
		last = span.End

		value, table, err := p.resolveSpan(ctx, span)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.res.Diagnostics = append(p.res.Diagnostics, Diagnostic{
				Offset:  span.Start,
				Keyword: span.Raw,
				Err:     err,
			})
			b.WriteString(span.Raw)
			continue
		}
		if p.depth == 0 {
			p.res.Substitutions = append(p.res.Substitutions, Substitution{
				Start:   span.Start,
				End:     span.End,
				Keyword: span.Raw,
				Value:   value,
				Table:   table,
			})
		}
		b.WriteString(value)
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

func (p *pass) resolveSpan(ctx context.Context, span keyword.Span) (string, *models.Table, error) {
	args := make([]string, len(span.Args))
	copy(args, span.Args)

	// Nested keywords resolve depth-first, so outer arguments see final
	// values. A nested failure leaves its literal text in the argument
	// and is reported on its own.
	for i, arg := range args {
		if !keyword.ContainsKeyword(arg) {
			continue
		}
		p.depth++
		resolved, err := p.resolveText(ctx, arg)
		p.depth--
		if err != nil {
			return "", nil, err
		}
		args[i] = resolved
	}

	switch span.Kind {
	case keyword.KindXL:
		return p.resolveXL(args)
	case keyword.KindInput:
		v, err := p.resolveInput(ctx, args)
		return v, nil, err
	case keyword.KindTemplate:
		v, err := p.resolveTemplate(ctx, args)
		return v, nil, err
	case keyword.KindJSON:
		return p.resolveJSON(args)
	case keyword.KindAI:
		v, err := p.resolveAI(ctx, args)
		return v, nil, err
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownKeyword, span.Tag)
	}
}

// ---- XL ----

// isWorkbookSelector reports whether an argument names a workbook file
// rather than an operation.
func isWorkbookSelector(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(keyword.Unquote(s)))
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") ||
		strings.HasSuffix(lower, ".xlsm")
}

func (p *pass) resolveXL(args []string) (string, *models.Table, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: XL needs an operation", ErrBadKeyword)
	}

	bookName := p.r.opts.DefaultWorkbook
	if isWorkbookSelector(args[0]) {
		bookName = keyword.Unquote(args[0])
		args = args[1:]
		if len(args) == 0 {
			return "", nil, fmt.Errorf("%w: XL needs an operation after the workbook", ErrBadKeyword)
		}
	}
	if bookName == "" {
		return "", nil, fmt.Errorf("%w: XL without a workbook selector and no default workbook", ErrBadKeyword)
	}
	book, err := p.r.openBook(bookName)
	if err != nil {
		return "", nil, err
	}

	op := strings.ToUpper(strings.TrimSpace(args[0]))
	if op == "COLUMN" {
		// Column lists do their own quote-aware comma splitting.
		return p.resolveColumns(book, args)
	}
	rem := args[1:]
	for i := range rem {
		rem[i] = keyword.Unquote(rem[i])
	}

	switch op {
	case "CELL":
		var v string
		switch len(rem) {
		case 1:
			v, err = book.Cell("", rem[0])
		case 2:
			v, err = book.Cell(rem[0], rem[1])
		default:
			return "", nil, fmt.Errorf("%w: CELL takes a reference or sheet and reference", ErrBadKeyword)
		}
		return v, nil, err

	case "LAST":
		var v string
		switch len(rem) {
		case 1:
			v, err = book.LastNonEmpty("", rem[0])
		case 2:
			v, err = book.LastNonEmpty(rem[0], rem[1])
		case 3:
			v, err = book.LastNonEmptyByTitle(rem[0], rem[1], rem[2])
		default:
			return "", nil, fmt.Errorf("%w: LAST takes up to sheet, anchor and title", ErrBadKeyword)
		}
		return v, nil, err

	case "RANGE":
		var table *models.Table
		switch len(rem) {
		case 1:
			table, err = book.Range("", rem[0])
		case 2:
			table, err = book.Range(rem[0], rem[1])
		default:
			return "", nil, fmt.Errorf("%w: RANGE takes a range or sheet and range", ErrBadKeyword)
		}
		if err != nil {
			return "", nil, err
		}
		return table.Render(), table, nil

	default:
		return "", nil, fmt.Errorf("%w: unsupported XL operation %q", ErrBadKeyword, op)
	}
}

// resolveColumns handles the COLUMN layouts: COLUMN!list,
// COLUMN!sheet!list, COLUMN!list!titleRow and COLUMN!sheet!list!titleRow.
// A trailing all-digit argument is the title row; a list whose elements
// carry no digits is a title list, otherwise it is cell references.
func (p *pass) resolveColumns(book *workbook.Workbook, args []string) (string, *models.Table, error) {
	rem := args[1:]
	sheet := ""
	listArg := ""
	titleRow := 0

	switch len(rem) {
	case 1:
		listArg = rem[0]
	case 2:
		if isAllDigits(rem[1]) {
			listArg = rem[0]
			titleRow, _ = strconv.Atoi(strings.TrimSpace(rem[1]))
		} else {
			sheet = keyword.Unquote(rem[0])
			listArg = rem[1]
		}
	case 3:
		if !isAllDigits(rem[2]) {
			return "", nil, fmt.Errorf("%w: COLUMN title row %q is not a number", ErrBadKeyword, rem[2])
		}
		sheet = keyword.Unquote(rem[0])
		listArg = rem[1]
		titleRow, _ = strconv.Atoi(strings.TrimSpace(rem[2]))
	default:
		return "", nil, fmt.Errorf("%w: COLUMN takes a column list with optional sheet and title row", ErrBadKeyword)
	}

	items := keyword.SplitList(listArg)
	if len(items) == 0 {
		return "", nil, fmt.Errorf("%w: COLUMN list is empty", ErrBadKeyword)
	}

	titlesMode := titleRow > 0
	if !titlesMode {
		titlesMode = true
		for _, it := range items {
			if strings.ContainsAny(it, "0123456789") {
				titlesMode = false
				break
			}
		}
		if titlesMode {
			titleRow = 1
		}
	}

	var (
		table *models.Table
		err   error
	)
	if titlesMode {
		table, err = book.ColumnsByTitle(sheet, items, titleRow)
	} else {
		table, err = book.ColumnsByRef(sheet, items)
	}
	if err != nil {
		return "", nil, err
	}
	return table.Render(), table, nil
}

func isAllDigits(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolvePath tries a resource name as written first, then relative to
// the configured directory.
func resolvePath(name, dir string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(dir, name)
}

func (r *Resolver) openBook(name string) (*workbook.Workbook, error) {
	path := resolvePath(name, r.opts.ExcelDir)
	if b, ok := r.books[path]; ok {
		return b, nil
	}
	b, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	r.books[path] = b
	return b, nil
}

// ---- INPUT ----

func (p *pass) resolveInput(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("%w: INPUT needs a kind and a label", ErrBadKeyword)
	}
	extras := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		extras = append(extras, keyword.Unquote(a))
	}
	req, err := input.ParseRequest(args[0], keyword.Unquote(args[1]), extras)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadKeyword, err)
	}
	return p.r.inputs.Ask(ctx, req)
}

// ---- TEMPLATE ----

func (p *pass) resolveTemplate(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: TEMPLATE needs a file name", ErrBadKeyword)
	}
	name := keyword.Unquote(args[0])

	spec := fragment.SectionSpec{IncludeTitle: true}
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		spec = fragment.SectionFromParams(keyword.ParseParams(args[1]))
	}

	key := strings.ToLower(name)
	for _, active := range p.includes {
		if active == key {
			return "", fmt.Errorf("%w: %s", ErrCyclicInclude, strings.Join(append(p.includes, key), " -> "))
		}
	}

	text, err := p.r.templates.Load(name)
	if err != nil {
		return "", err
	}
	section, err := fragment.ExtractSection(text, spec)
	if err != nil {
		return "", err
	}

	// Included text is itself resolved, on the same inclusion chain.
	p.includes = append(p.includes, key)
	p.depth++
	out, err := p.resolveText(ctx, section)
	p.depth--
	p.includes = p.includes[:len(p.includes)-1]
	return out, err
}

// ---- JSON ----

func (p *pass) resolveJSON(args []string) (string, *models.Table, error) {
	// The empty-slot form JSON!!file shifts the argument layout by one.
	if len(args) > 0 && strings.TrimSpace(args[0]) == "" {
		args = args[1:]
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", nil, fmt.Errorf("%w: JSON needs a file name", ErrBadKeyword)
	}
	name := keyword.Unquote(args[0])
	path := "$"
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		path = keyword.Unquote(args[1])
	}

	doc, err := p.r.loadJSON(name)
	if err != nil {
		return "", nil, err
	}
	result, err := jsonpath.Evaluate(doc, path)
	if err != nil {
		return "", nil, err
	}

	if len(args) > 2 && strings.TrimSpace(args[2]) != "" {
		transform, ok := jsonpath.ParseTransform(args[2])
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown JSON transform %q", ErrBadKeyword, args[2])
		}
		v, err := transform(result)
		return v, nil, err
	}
	return jsonpath.Render(result), nil, nil
}

// loadJSON reads and decodes a JSON document, caching it by path.
func (r *Resolver) loadJSON(name string) (any, error) {
	path := resolvePath(name, r.opts.JSONDir)
	if doc, ok := r.jsonDocs[path]; ok {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.MissingResourceError{Kind: models.ResourceJSON, Name: name}
		}
		return nil, fmt.Errorf("read json %s: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json %s: %w", name, err)
	}
	r.jsonDocs[path] = doc
	return doc, nil
}

// isPromptFile reports whether an AI prompt argument names a file in the
// prompt directory rather than literal prompt text.
func isPromptFile(s string) bool {
	return strings.EqualFold(filepath.Ext(s), ".txt")
}

// ---- AI ----

func (p *pass) resolveAI(ctx context.Context, args []string) (string, error) {
	if p.r.opts.Summarizer == nil {
		return "", fmt.Errorf("%w: no AI backend configured", ErrBadKeyword)
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: AI needs a source document", ErrBadKeyword)
	}
	name := keyword.Unquote(args[0])

	promptName := ""
	params := map[string]string{}
	if len(args) > 1 {
		promptName = keyword.Unquote(args[1])
	}
	if len(args) > 2 {
		params = keyword.ParseParams(args[2])
	}

	text, err := p.r.templates.Load(name)
	if err != nil {
		// Template-store errors carry the template kind; the AI source
		// is a document.
		var missing *models.MissingResourceError
		if errors.As(err, &missing) {
			missing.Kind = models.ResourceDocument
		}
		return "", err
	}
	if spec := fragment.SectionFromParams(params); spec.Start != "" {
		text, err = fragment.ExtractSection(text, spec)
		if err != nil {
			return "", err
		}
	}

	// Only a .txt argument names a prompt file; anything else is the
	// prompt text itself.
	prompt := promptName
	if isPromptFile(promptName) {
		prompt, err = p.r.prompts.Load(promptName)
		if err != nil {
			var missing *models.MissingResourceError
			if errors.As(err, &missing) {
				missing.Kind = models.ResourcePrompt
			}
			return "", err
		}
	}

	maxWords := p.r.opts.MaxWords
	if raw, ok := params["words"]; ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr != nil || n <= 0 {
			return "", fmt.Errorf("%w: AI word budget %q", ErrBadKeyword, raw)
		}
		maxWords = n
	}

	return p.r.opts.Summarizer.Summarize(ctx, text, prompt, maxWords)
}
