package main

import "sync"

// maxCachedRows bounds the render cache; it is dropped wholesale when full.
const maxCachedRows = 4096

// RenderCache provides thread-safe caching of rendered rows per record
type RenderCache struct {
	mu    sync.RWMutex
	width int
	rows  map[string]string
}

// NewRenderCache creates a new empty render cache
func NewRenderCache() *RenderCache {
	return &RenderCache{rows: make(map[string]string)}
}

// Get returns the cached rendering of record if it was rendered at width
func (c *RenderCache) Get(record string, width int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if width != c.width {
		return "", false
	}

	row, ok := c.rows[record]
	return row, ok
}

// Set stores a rendering; a width change invalidates everything cached
func (c *RenderCache) Set(record string, width int, row string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width != c.width || len(c.rows) >= maxCachedRows {
		c.rows = make(map[string]string)
		c.width = width
	}

	c.rows[record] = row
}

// Invalidate empties the cache
func (c *RenderCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = make(map[string]string)
}

// Len returns the number of cached rows
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
