// In file: internal/dialogue/context.go
package dialogue

import (
	"sync"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn as handed to strategies and the LLM.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type record struct {
	Message
	Timestamp time.Time
}

const metadataLocationKey = "device_location"

// Location is the device location a client registers for its session.
type Location struct {
	City      string   `json:"city"`
	Province  string   `json:"province,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Context is the bounded, TTL-scoped conversation memory of one session.
// Only the Store mutates it; the exported methods are safe for concurrent reads.
type Context struct {
	mu          sync.Mutex
	sessionID   string
	maxHistory  int
	ttl         time.Duration
	history     []record
	lastUpdated time.Time
	metadata    map[string]any
}

func newContext(sessionID string, maxHistory int, ttl time.Duration, now time.Time) *Context {
	return &Context{
		sessionID:   sessionID,
		maxHistory:  maxHistory,
		ttl:         ttl,
		lastUpdated: now,
		metadata:    make(map[string]any),
	}
}

// SessionID returns the owning session id.
func (c *Context) SessionID() string { return c.sessionID }

// LastUpdated returns the time of the last write.
func (c *Context) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdated
}

// Len returns the number of retained messages.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// History returns the retained messages, oldest first, without timestamps.
func (c *Context) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	for i, r := range c.history {
		out[i] = r.Message
	}
	return out
}

func (c *Context) append(role Role, content string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, record{Message: Message{Role: role, Content: content}, Timestamp: now})
	if over := len(c.history) - c.maxHistory; over > 0 {
		c.history = append([]record(nil), c.history[over:]...)
	}
	c.lastUpdated = now
}

func (c *Context) clear(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.lastUpdated = now
}

func (c *Context) expired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastUpdated) > c.ttl
}

func (c *Context) setLocation(loc Location, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[metadataLocationKey] = loc
	c.lastUpdated = now
}

func (c *Context) location() (Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.metadata[metadataLocationKey].(Location)
	return loc, ok
}
