package keyword

import "strings"

// Scan finds the top-level keyword spans in text, in document order.
// Nested {{...}} inside an argument does not close the enclosing span, and
// structural characters inside a quoted argument are not treated as tokens.
// A `{{` with no matching `}}` is reported as a warning and left literal.
func Scan(text string) ([]Span, []Warning) {
	var spans []Span
	var warns []Warning

	i := 0
	for {
		open := strings.Index(text[i:], "{{")
		if open < 0 {
			break
		}
		open += i

		closeAt, ok := matchClose(text, open+2)
		if !ok {
			warns = append(warns, Warning{Offset: open, Message: "unterminated keyword span"})
			i = open + 2
			continue
		}

		inner := text[open+2 : closeAt]
		span := Span{
			Start: open,
			End:   closeAt + 2,
			Raw:   text[open : closeAt+2],
			Inner: inner,
		}
		tokens := SplitArgs(inner)
		if len(tokens) > 0 {
			span.Tag = strings.TrimSpace(tokens[0])
			span.Kind = KindOf(span.Tag)
			span.Args = tokens[1:]
		}
		spans = append(spans, span)
		i = closeAt + 2
	}
	return spans, warns
}

// matchClose walks from pos tracking nesting depth and quote state, and
// returns the offset of the `}}` that closes the span opened just before pos.
func matchClose(text string, pos int) (int, bool) {
	depth := 1
	inQuote := false
	for j := pos; j < len(text); j++ {
		ch := text[j]
		if inQuote {
			if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch {
		case ch == '"':
			inQuote = true
		case ch == '{' && j+1 < len(text) && text[j+1] == '{':
			depth++
			j++
		case ch == '}' && j+1 < len(text) && text[j+1] == '}':
			depth--
			if depth == 0 {
				return j, true
			}
			j++
		}
	}
	return 0, false
}

// SplitArgs splits span inner text on `!` at nesting depth zero, outside
// quotes. Tokens keep their quotes and any nested spans verbatim; empty
// tokens are preserved so `!!` stays a valid empty argument slot.
func SplitArgs(inner string) []string {
	var tokens []string
	var b strings.Builder
	depth := 0
	inQuote := false
	for j := 0; j < len(inner); j++ {
		ch := inner[j]
		if inQuote {
			b.WriteByte(ch)
			if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch {
		case ch == '"':
			inQuote = true
			b.WriteByte(ch)
		case ch == '{' && j+1 < len(inner) && inner[j+1] == '{':
			depth++
			b.WriteString("{{")
			j++
		case ch == '}' && j+1 < len(inner) && inner[j+1] == '}':
			if depth > 0 {
				depth--
			}
			b.WriteString("}}")
			j++
		case ch == '!' && depth == 0:
			tokens = append(tokens, b.String())
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	tokens = append(tokens, b.String())
	return tokens
}

// SplitList splits a comma-separated list argument, honoring quotes so a
// quoted segment like "a,b" stays one element. Elements are unquoted and
// trimmed.
func SplitList(s string) []string {
	var items []string
	var b strings.Builder
	inQuote := false
	for j := 0; j < len(s); j++ {
		ch := s[j]
		if inQuote {
			b.WriteByte(ch)
			if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch ch {
		case '"':
			inQuote = true
			b.WriteByte(ch)
		case ',':
			items = append(items, Unquote(b.String()))
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	if b.Len() > 0 || len(items) > 0 {
		items = append(items, Unquote(b.String()))
	}
	return items
}
