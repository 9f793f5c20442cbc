package cache

import (
	"container/list"
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

// Item represents a cached value with expiration time.
type Item struct {
	V   any
	Exp int64 // unix nanoseconds; 0 = no expiry
}

// Cache is a simple in-memory TTL cache safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*entry
	order    *list.List // MRU at front, LRU at back
	maxItems int        // 0 = unlimited
	rejected map[string]struct{}
}

type entry struct {
	key  string
	item Item
	elem *list.Element
}

// New returns an empty cache holding at most maxItems entries (0 = unlimited).
func New(maxItems int) *Cache {
	if maxItems < 0 {
		maxItems = 0
	}
	return &Cache{
		items:    make(map[string]*entry),
		order:    list.New(),
		maxItems: maxItems,
		rejected: make(map[string]struct{}),
	}
}

// Get returns value and whether it exists and not expired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	now := time.Now().UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if e.item.Exp != 0 && e.item.Exp < now {
		c.removeNoLock(key)
		return nil, false
	}
	if e.elem != nil {
		c.order.MoveToFront(e.elem)
	}
	return e.item.V, true
}

// Set sets a value with TTL. ttl<=0 means no expiry.
func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.item = Item{V: v, Exp: exp}
		if e.elem != nil {
			c.order.MoveToFront(e.elem)
		}
	} else {
		e := &entry{key: key, item: Item{V: v, Exp: exp}}
		e.elem = c.order.PushFront(e)
		c.items[key] = e
		if c.maxItems > 0 && c.order.Len() > c.maxItems {
			c.evictLRUNoLock()
		}
	}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.removeNoLock(key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// StartJanitor removes expired items every interval until stop is closed.
func (c *Cache) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.purgeExpired()
			}
		}
	}()
}

func (c *Cache) purgeExpired() {
	now := time.Now().UnixNano()
	c.mu.Lock()
	for k, e := range c.items {
		if e.item.Exp != 0 && e.item.Exp < now {
			c.removeNoLock(k)
		}
	}
	c.mu.Unlock()
}

// KeyFromStrings creates a compact stable key from parts.
func KeyFromStrings(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return string(h.Sum(nil))
}

// SetMaxItems updates capacity. Safe to call at startup.
func (c *Cache) SetMaxItems(n int) {
	if n <= 0 {
		n = 0 // unlimited
	}
	c.mu.Lock()
	c.maxItems = n
	for c.maxItems > 0 && c.order.Len() > c.maxItems {
		c.evictLRUNoLock()
	}
	c.mu.Unlock()
}

// removeNoLock removes key from map/list; caller must hold c.mu.
func (c *Cache) removeNoLock(key string) {
	if e, ok := c.items[key]; ok {
		if e.elem != nil {
			c.order.Remove(e.elem)
		}
		delete(c.items, key)
	}
}

// evictLRUNoLock removes one LRU entry; caller must hold c.mu.
func (c *Cache) evictLRUNoLock() {
	back := c.order.Back()
	if back == nil {
		return
	}
	if e, ok := back.Value.(*entry); ok {
		c.order.Remove(back)
		delete(c.items, e.key)
	} else {
		c.order.Remove(back)
	}
}

// ReplyStatus tells SetChatResponse how the reply was produced.
type ReplyStatus int

const (
	StatusCompleted ReplyStatus = iota
	StatusFailed
)

// RejectReplies registers texts that must never be cached as chat replies,
// such as the relay's fallback messages.
func (c *Cache) RejectReplies(texts ...string) {
	c.mu.Lock()
	for _, t := range texts {
		c.rejected[strings.TrimSpace(t)] = struct{}{}
	}
	c.mu.Unlock()
}

func (c *Cache) isRejected(text string) bool {
	c.mu.RLock()
	_, ok := c.rejected[strings.TrimSpace(text)]
	c.mu.RUnlock()
	return ok
}

// SetChatResponse caches a completed, non-empty, non-fallback reply.
func (c *Cache) SetChatResponse(key, text string, status ReplyStatus, ttl time.Duration) {
	if c == nil || status != StatusCompleted || strings.TrimSpace(text) == "" || c.isRejected(text) {
		return
	}
	c.Set(key, text, ttl)
}

// GetChatResponse returns a cached reply if present.
func (c *Cache) GetChatResponse(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" || c.isRejected(s) {
		return "", false
	}
	return s, true
}

func (c *Cache) InvalidateChatResponse(key string) {
	c.Delete(key)
}
