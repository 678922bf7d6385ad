// Package cache implements the mtime-gated sentinel fast-path shared by the
// loader-file and tool provisioners (spec §4.B, §4.L): once a sentinel file
// is written, re-verification is skipped while its mtime is within a given
// freshness window. Grounded on the teacher's LabDir/state.go pattern of
// deriving re-check decisions from a persisted file's timestamp
// (pkg/newtlab/state.go) rather than an in-memory-only flag, so the fast
// path survives process restarts.
package cache

import (
	"os"
	"time"
)

// Sentinel gates re-verification using a marker file's modification time.
type Sentinel struct {
	Path    string
	Window  time.Duration
	nowFunc func() time.Time
}

// NewSentinel builds a Sentinel with the given freshness window.
func NewSentinel(path string, window time.Duration) *Sentinel {
	return &Sentinel{Path: path, Window: window, nowFunc: time.Now}
}

// Fresh reports whether the sentinel file exists and was written within the
// freshness window.
func (s *Sentinel) Fresh() bool {
	info, err := os.Stat(s.Path)
	if err != nil {
		return false
	}
	now := time.Now()
	if s.nowFunc != nil {
		now = s.nowFunc()
	}
	return now.Sub(info.ModTime()) < s.Window
}

// Touch creates or updates the sentinel file's modification time to now.
func (s *Sentinel) Touch() error {
	now := time.Now()
	if s.nowFunc != nil {
		now = s.nowFunc()
	}
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		f, ferr := os.Create(s.Path)
		if ferr != nil {
			return ferr
		}
		f.Close()
	}
	return os.Chtimes(s.Path, now, now)
}

// Clear removes the sentinel file, forcing the next Fresh() call to fail.
func (s *Sentinel) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// TTLCache is a small in-memory, mutex-free (single-goroutine-owned) cache
// keyed by name with absolute expiry, used by the tool provisioner's
// 5-minute in-memory verification cache layered atop the on-disk sentinel.
type TTLCache struct {
	entries map[string]ttlEntry
	ttl     time.Duration
}

type ttlEntry struct {
	value   bool
	expires time.Time
}

// NewTTLCache builds an empty cache with the given time-to-live.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{entries: make(map[string]ttlEntry), ttl: ttl}
}

// Get returns the cached value and whether it is present and unexpired.
func (c *TTLCache) Get(key string) (bool, bool) {
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return false, false
	}
	return e.value, true
}

// Set stores a value with the cache's configured TTL.
func (c *TTLCache) Set(key string, value bool) {
	c.entries[key] = ttlEntry{value: value, expires: time.Now().Add(c.ttl)}
}

// Invalidate removes a cached entry.
func (c *TTLCache) Invalidate(key string) {
	delete(c.entries, key)
}
