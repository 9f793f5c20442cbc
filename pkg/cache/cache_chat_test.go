package cache

import (
	"testing"
	"time"
)

func TestChatResponseCaching(t *testing.T) {
	c := New(10)
	c.RejectReplies("Error talking to Gemini API.", "No response from Gemini.")

	t.Run("Cache completed response", func(t *testing.T) {
		c.SetChatResponse("k1", "We are open 9-5 Mon-Fri.", StatusCompleted, 5*time.Minute)

		text, ok := c.GetChatResponse("k1")
		if !ok {
			t.Fatal("Expected cached response to be found")
		}
		if text != "We are open 9-5 Mon-Fri." {
			t.Errorf("Expected cached text to match, got: %s", text)
		}
	})

	t.Run("Don't cache failed response", func(t *testing.T) {
		c.SetChatResponse("k2", "Partial response", StatusFailed, 5*time.Minute)
		if _, ok := c.GetChatResponse("k2"); ok {
			t.Error("Failed response should not be cached")
		}
	})

	t.Run("Don't cache fallback replies", func(t *testing.T) {
		c.SetChatResponse("k3", "Error talking to Gemini API.", StatusCompleted, 5*time.Minute)
		if _, ok := c.GetChatResponse("k3"); ok {
			t.Error("Fallback reply should not be cached")
		}
	})

	t.Run("Don't cache empty response", func(t *testing.T) {
		c.SetChatResponse("k4", "  ", StatusCompleted, 5*time.Minute)
		if _, ok := c.GetChatResponse("k4"); ok {
			t.Error("Empty response should not be cached")
		}
	})

	t.Run("Plain Set values are readable", func(t *testing.T) {
		c.Set("k5", "Stored directly", 5*time.Minute)
		text, ok := c.GetChatResponse("k5")
		if !ok || text != "Stored directly" {
			t.Fatalf("expected plain value, got %q ok=%v", text, ok)
		}
	})

	t.Run("Cache invalidation works", func(t *testing.T) {
		c.SetChatResponse("k6", "Response to be invalidated", StatusCompleted, 5*time.Minute)
		if _, ok := c.GetChatResponse("k6"); !ok {
			t.Fatal("Response should be cached initially")
		}
		c.InvalidateChatResponse("k6")
		if _, ok := c.GetChatResponse("k6"); ok {
			t.Error("Response should be invalidated")
		}
	})
}
