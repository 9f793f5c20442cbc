package services

import (
	"context"
	"errors"
	"log"
	"time"

	"Zelvix/pkg/cache"
)

const (
	// ErrorReply is returned to the widget when the upstream call fails.
	ErrorReply = "Error talking to Gemini API."
	// NoResponseReply is returned when the upstream call carries no text.
	NoResponseReply = "No response from Gemini."
)

// ChatRelay builds the FAQ prompt for a user message and forwards it to the
// generator. It holds no per-request state.
type ChatRelay struct {
	kb       *KnowledgeBase
	gen      Generator
	cache    *cache.Cache
	cacheTTL time.Duration
	timeout  time.Duration
}

type RelayOption func(*ChatRelay)

// WithReplyCache caches successful replies per message. A nil cache or a
// non-positive ttl disables caching.
func WithReplyCache(c *cache.Cache, ttl time.Duration) RelayOption {
	return func(r *ChatRelay) {
		if c == nil || ttl <= 0 {
			return
		}
		c.RejectReplies(ErrorReply, NoResponseReply)
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) RelayOption {
	return func(r *ChatRelay) { r.timeout = d }
}

func NewChatRelay(kb *KnowledgeBase, gen Generator, opts ...RelayOption) *ChatRelay {
	r := &ChatRelay{kb: kb, gen: gen}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reply returns the text to show the user. A non-nil error means the
// upstream call failed; the returned text is then ErrorReply.
func (r *ChatRelay) Reply(ctx context.Context, message string) (string, error) {
	prompt := r.kb.BuildPrompt(message)

	ck := cache.KeyFromStrings("chat-reply", message)
	if text, ok := r.cache.GetChatResponse(ck); ok {
		log.Printf("[chat] cache hit")
		return text, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.gen.Generate(ctx, prompt)
	switch {
	case errors.Is(err, ErrNoCandidate):
		log.Printf("[chat] gemini returned no candidate")
		return NoResponseReply, nil
	case err != nil:
		log.Printf("[chat] Gemini API error: %v", err)
		return ErrorReply, err
	}
	r.cache.SetChatResponse(ck, text, cache.StatusCompleted, r.cacheTTL)
	return text, nil
}
