package server

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"labslot/internal/api"
	"labslot/internal/auth"
	"labslot/internal/metrics"
)

// Debouncer suppresses duplicate submissions of the same logical request.
// It is best-effort and in-memory: it does not survive restarts and is not a
// substitute for the storage-level uniqueness constraint.
type Debouncer struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration
	ttl     time.Duration
}

// NewDebouncer creates a guard that rejects a repeat of the same key within
// window, and sweeps entries older than ttl to bound memory.
func NewDebouncer(window, ttl time.Duration) *Debouncer {
	d := &Debouncer{
		entries: make(map[string]time.Time),
		window:  window,
		ttl:     ttl,
	}

	go d.sweep()

	return d
}

// Admit records the submission and reports whether it may proceed. A prior
// admission of the same key within the window rejects this one; the prior
// timestamp is kept so rapid-fire retries stay rejected.
func (d *Debouncer) Admit(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, seen := d.entries[key]; seen && now.Sub(last) < d.window {
		return false
	}

	d.entries[key] = now
	return true
}

func (d *Debouncer) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		for key, last := range d.entries {
			if time.Since(last) > d.ttl {
				delete(d.entries, key)
			}
		}
		d.mu.Unlock()
	}
}

// Len reports the number of tracked keys.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// DebounceMiddleware keys each write request on actor, route and payload so
// double-clicked submissions are rejected with 429 instead of reaching the
// booking core twice.
func DebounceMiddleware(d *Debouncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload []byte
		if c.Request.Body != nil {
			payload, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(payload))
		}

		actorKey := c.ClientIP()
		if actor, ok := auth.GetActor(c); ok {
			actorKey = fmt.Sprintf("actor:%d", actor.ID)
		}

		// Concrete path, not the route template, so requests against
		// different resource IDs never share a key.
		h := fnv.New64a()
		h.Write(payload)
		key := fmt.Sprintf("%s|%s %s|%x", actorKey, c.Request.Method, c.Request.URL.Path, h.Sum64())

		if !d.Admit(key, time.Now()) {
			metrics.RecordDebounceRejection()
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "Duplicate submission, please wait"})
			c.Abort()
			return
		}

		c.Next()
	}
}
