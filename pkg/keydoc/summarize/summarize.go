// Package summarize condenses document text through an AI backend.
package summarize

import (
	"context"
	"strconv"
	"strings"
)

// Summarizer condenses text under a word budget, optionally steered by a
// prompt template loaded from the prompt directory.
type Summarizer interface {
	Summarize(ctx context.Context, text, prompt string, maxWords int) (string, error)
}

// DefaultMaxWords is the word budget applied when a keyword names none.
const DefaultMaxWords = 100

// Truncate enforces the word budget on a summary the backend overran.
func Truncate(s string, maxWords int) string {
	if maxWords <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:maxWords], " ")
}

// BuildPrompt assembles the request text sent to the backend: the steering
// prompt, then the word budget instruction, then the text itself.
func BuildPrompt(text, prompt string, maxWords int) string {
	var b strings.Builder
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = "Summarize the following text concisely, keeping the key facts and figures."
	}
	b.WriteString(prompt)
	b.WriteString("\n\nText to summarize (keep under ")
	b.WriteString(wordBudget(maxWords))
	b.WriteString(" words):\n\n")
	b.WriteString(text)
	return b.String()
}

func wordBudget(maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return strconv.Itoa(maxWords)
}
