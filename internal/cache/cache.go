package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ConciergeChat/internal/session"
)

// Status is the lifecycle state of a cached query
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of one cached message-list query
type Entry struct {
	Messages  []session.Message
	Status    Status
	Stale     bool
	Err       error
	UpdatedAt time.Time
}

// QueryCache stores message-list query results by key.
// Entries are replaced wholesale by fetch results and are never patched locally;
// the last stored result wins.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewQueryCache creates an empty cache
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]*Entry)}
}

// Get returns a copy of the entry for key. Unknown keys report StatusLoading.
func (c *QueryCache) Get(key string) Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{Status: StatusLoading, Stale: true}
	}
	out := *e
	out.Messages = append([]session.Message(nil), e.Messages...)
	return out
}

// Set stores a fetch result for key and marks it fresh.
func (c *QueryCache) Set(key string, msgs []session.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{
		Messages:  append([]session.Message(nil), msgs...),
		Status:    StatusLoaded,
		UpdatedAt: time.Now(),
	}
}

// SetError records a failed fetch. Previously loaded data stays visible.
func (c *QueryCache) SetError(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.entries[key] = &Entry{Status: StatusError, Stale: true, Err: err, UpdatedAt: time.Now()}
		return
	}
	e.Err = err
	e.Stale = true
	if e.Status != StatusLoaded {
		e.Status = StatusError
	}
}

// Invalidate marks the entry for key stale so the next read triggers a re-fetch.
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.Stale = true
	}
}

// IsStale reports whether key has no fresh data.
func (c *QueryCache) IsStale(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return !ok || e.Stale
}

// Fingerprint hashes a message list so renderers can tell whether it changed.
// Every field is length-prefixed, so distinct lists never share an encoding.
func Fingerprint(messages []session.Message) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d;", len(messages))
	for _, msg := range messages {
		fmt.Fprintf(h, "%d:%d:%s:%d:%s:", msg.ID, len(msg.Role), msg.Role, len(msg.Content), msg.Content)
		if rt, ok := msg.ResponseTime(); ok {
			fmt.Fprintf(h, "t%s;", strconv.FormatFloat(rt, 'g', -1, 64))
		} else {
			h.Write([]byte("-;"))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
