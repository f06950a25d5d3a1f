// Package input models interactive prompts raised by documents and the
// providers that answer them.
package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keydoc/keydoc-go/pkg/keydoc/keyword"
)

// Kind identifies a prompt style.
type Kind string

const (
	KindText   Kind = "TEXT"
	KindArea   Kind = "AREA"
	KindDate   Kind = "DATE"
	KindSelect Kind = "SELECT"
	KindCheck  Kind = "CHECK"
)

// ErrUnknownInputKind indicates a prompt kind outside the supported set.
var ErrUnknownInputKind = errors.New("unknown input kind")

// Request is one prompt to put to the user. Options is populated for
// SELECT prompts; Format for DATE prompts.
type Request struct {
	Kind    Kind
	Label   string
	Default string
	Options []string
	Format  string
}

// Key identifies a request for answer caching: the same kind and label
// asked twice in one document is asked once.
func (r Request) Key() string {
	return string(r.Kind) + "\x00" + r.Label
}

// Provider answers prompts. Implementations block until the user answers
// or ctx is done.
type Provider interface {
	Ask(ctx context.Context, req Request) (string, error)
}

// ParseRequest builds a Request from keyword arguments: kind, label, then
// kind-specific extras (default text, date format, option list).
func ParseRequest(kind, label string, extras []string) (Request, error) {
	req := Request{Kind: Kind(strings.ToUpper(strings.TrimSpace(kind))), Label: label}
	switch req.Kind {
	case KindText, KindArea:
		if len(extras) > 0 {
			req.Default = extras[0]
		}
	case KindDate:
		req.Format = "YYYY/MM/DD"
		if len(extras) > 0 {
			req.Default = extras[0]
		}
		if len(extras) > 1 && strings.TrimSpace(extras[1]) != "" {
			req.Format = extras[1]
		}
	case KindSelect:
		if len(extras) > 0 {
			req.Options = keyword.SplitList(extras[0])
		}
		if len(req.Options) == 0 {
			return req, fmt.Errorf("select prompt %q has no options", label)
		}
		if len(extras) > 1 {
			req.Default = extras[1]
		}
	case KindCheck:
		if len(extras) > 0 {
			req.Default = extras[0]
		}
	default:
		return req, fmt.Errorf("%w: %q", ErrUnknownInputKind, kind)
	}
	return req, nil
}

// FormatDate renders t using the document-facing date format tokens
// YYYY, MM and DD.
func FormatDate(t time.Time, format string) string {
	layout := strings.NewReplacer(
		"YYYY", "2006",
		"MM", "01",
		"DD", "02",
	).Replace(format)
	return t.Format(layout)
}

// Cache wraps a provider so each distinct request is asked at most once
// per resolution pass.
type Cache struct {
	provider Provider
	answers  map[string]string
}

// NewCache returns a caching wrapper around provider.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider, answers: make(map[string]string)}
}

// Ask returns the cached answer for an equivalent earlier request, or
// forwards to the wrapped provider and remembers the result.
func (c *Cache) Ask(ctx context.Context, req Request) (string, error) {
	if v, ok := c.answers[req.Key()]; ok {
		return v, nil
	}
	v, err := c.provider.Ask(ctx, req)
	if err != nil {
		return "", err
	}
	c.answers[req.Key()] = v
	return v, nil
}

// Defaults answers every prompt without user interaction: the declared
// default where one exists, today's date for DATE, the first option for
// SELECT, and false for CHECK.
type Defaults struct {
	// Now lets tests pin the clock; nil means time.Now.
	Now func() time.Time
}

// Ask implements Provider.
func (d Defaults) Ask(_ context.Context, req Request) (string, error) {
	switch req.Kind {
	case KindText, KindArea:
		return req.Default, nil
	case KindDate:
		if req.Default != "" && !strings.EqualFold(req.Default, "today") {
			return req.Default, nil
		}
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		return FormatDate(now(), req.Format), nil
	case KindSelect:
		if req.Default != "" {
			return req.Default, nil
		}
		if len(req.Options) > 0 {
			return req.Options[0], nil
		}
		return "", fmt.Errorf("select prompt %q has no options", req.Label)
	case KindCheck:
		if strings.EqualFold(req.Default, "true") {
			return "true", nil
		}
		return "false", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInputKind, req.Kind)
}
