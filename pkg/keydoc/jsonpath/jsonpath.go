// Package jsonpath resolves dotted path expressions against decoded JSON
// documents and applies optional post-transforms.
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPathNotFound indicates a path segment that does not exist in the
// document, including indices out of range and member access on non-objects.
var ErrPathNotFound = errors.New("json path not found")

// Evaluate resolves a path expression against doc. Supported syntax is the
// root marker (`$.`), dotted member access and bracket indices. An empty
// path, `$` or `$.` returns the entire document.
func Evaluate(doc any, path string) (any, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "$" || path == "$." {
		return doc, nil
	}
	path = strings.TrimPrefix(path, "$.")
	path = strings.TrimPrefix(path, "$")

	cur := doc
	rest := path
	for rest != "" {
		seg, tail := nextSegment(rest)
		rest = tail
		if seg == "" {
			continue
		}
		if seg[0] == '[' {
			idxStr := strings.Trim(seg, "[]")
			arr, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: index %s on non-array", ErrPathNotFound, seg)
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 || idx >= len(arr) {
				return nil, fmt.Errorf("%w: index %s", ErrPathNotFound, seg)
			}
			cur = arr[idx]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: member %q on non-object", ErrPathNotFound, seg)
		}
		next, ok := obj[seg]
		if !ok {
			return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, seg)
		}
		cur = next
	}
	return cur, nil
}

// nextSegment splits off the leading member name or bracket index.
func nextSegment(path string) (seg, tail string) {
	if path == "" {
		return "", ""
	}
	if path[0] == '[' {
		if end := strings.Index(path, "]"); end >= 0 {
			seg = path[:end+1]
			tail = strings.TrimPrefix(path[end+1:], ".")
			return seg, tail
		}
		return path, ""
	}
	i := 0
	for i < len(path) && path[i] != '.' && path[i] != '[' {
		i++
	}
	seg = path[:i]
	if i < len(path) && path[i] == '.' {
		return seg, path[i+1:]
	}
	return seg, path[i:]
}

// Render stringifies a path result for substitution: scalars become plain
// text, arrays and objects are rendered as indented JSON.
func Render(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case []any, map[string]any:
		b, err := json.MarshalIndent(vv, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", vv)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", vv)
	}
}
