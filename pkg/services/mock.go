package services

import (
	"context"
	"fmt"
	"strings"
)

// LocalResponder answers straight from the FAQ without calling Gemini.
// It is used when IS_GEMINI_ENABLED is off, e.g. in local development.
type LocalResponder struct {
	kb *KnowledgeBase
}

func NewLocalResponder(kb *KnowledgeBase) *LocalResponder {
	return &LocalResponder{kb: kb}
}

func (r *LocalResponder) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	question := UserMessageFromPrompt(prompt)
	// the widget prefixes messages with "<name>: "
	if i := strings.Index(question, ": "); i >= 0 {
		if f, ok := r.kb.Match(question[i+2:]); ok {
			return f.Answer, nil
		}
	}
	if f, ok := r.kb.Match(question); ok {
		return f.Answer, nil
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "I could not find an answer to %q in our FAQ.\n", truncate(strings.TrimSpace(question), 80))
	if faq := r.kb.FAQ(); len(faq) > 0 {
		fmt.Fprintln(b, "You can ask me about:")
		for i, f := range faq {
			if i == 5 {
				break
			}
			fmt.Fprintf(b, "- %s\n", f.Question)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
