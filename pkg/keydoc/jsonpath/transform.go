package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotNumeric indicates a SUM over a result with no numeric leaves.
var ErrNotNumeric = errors.New("result is not numeric")

// ErrNotBoolean indicates a BOOL transform over a non-boolean result.
var ErrNotBoolean = errors.New("result is not a boolean")

// Transform post-processes a path result into its final text form.
type Transform func(v any) (string, error)

// ParseTransform recognizes the transform spec grammar: SUM, JOIN(sep)
// and BOOL(true/false). The separator and the labels are taken verbatim,
// including spaces. Returns false for an empty or unrecognized spec.
func ParseTransform(spec string) (Transform, bool) {
	t := strings.TrimSpace(spec)
	if t == "" {
		return nil, false
	}
	upper := strings.ToUpper(t)
	switch {
	case upper == "SUM":
		return Sum, true
	case strings.HasPrefix(upper, "JOIN(") && strings.HasSuffix(t, ")"):
		return Join(t[5 : len(t)-1]), true
	case strings.HasPrefix(upper, "BOOL(") && strings.HasSuffix(t, ")"):
		inner := t[5 : len(t)-1]
		trueLabel, falseLabel, ok := strings.Cut(inner, "/")
		if !ok {
			return nil, false
		}
		return Bool(trueLabel, falseLabel), true
	}
	return nil, false
}

// Sum adds the numeric leaves of an array or of an object's values.
// Leaves that do not coerce to a number are skipped; the transform fails
// with ErrNotNumeric only when nothing coerces at all.
func Sum(v any) (string, error) {
	var leaves []any
	switch vv := v.(type) {
	case []any:
		leaves = vv
	case map[string]any:
		for _, e := range vv {
			leaves = append(leaves, e)
		}
	case float64:
		leaves = []any{vv}
	case string:
		leaves = []any{vv}
	default:
		return "", fmt.Errorf("%w: cannot sum %T", ErrNotNumeric, v)
	}

	total := 0.0
	summed := 0
	for _, leaf := range leaves {
		f, ok := coerceNumber(leaf)
		if !ok {
			continue
		}
		total += f
		summed++
	}
	if summed == 0 {
		return "", fmt.Errorf("%w: no numeric values to sum", ErrNotNumeric)
	}
	return strconv.FormatFloat(total, 'f', -1, 64), nil
}

// Join renders an array's elements and joins them with sep; null elements
// are dropped. A scalar result is rendered as-is.
func Join(sep string) Transform {
	return func(v any) (string, error) {
		arr, ok := v.([]any)
		if !ok {
			return Render(v), nil
		}
		parts := make([]string, 0, len(arr))
		for _, e := range arr {
			if e == nil {
				continue
			}
			parts = append(parts, Render(e))
		}
		return strings.Join(parts, sep), nil
	}
}

// Bool maps a boolean result onto the given labels. Anything other than a
// JSON boolean fails with ErrNotBoolean.
func Bool(trueLabel, falseLabel string) Transform {
	return func(v any) (string, error) {
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("%w: got %T", ErrNotBoolean, v)
		}
		if b {
			return trueLabel, nil
		}
		return falseLabel, nil
	}
}

// coerceNumber converts a JSON leaf to a float. Strings are accepted after
// stripping common display decorations.
func coerceNumber(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case string:
		s := strings.TrimSpace(vv)
		s = strings.Map(func(r rune) rune {
			switch r {
			case ',', '$', '%':
				return -1
			}
			return r
		}, s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
