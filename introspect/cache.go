package introspect

import "sync"

// CacheEntry is one entry a host application has registered against a
// workflow node for inspect_cache to surface.
type CacheEntry struct {
	Key   string
	Value any
}

// CacheIndex is a purely in-memory, tree-lifetime-scoped registry of cache
// entries keyed by workflow node id. It mirrors the teacher's Cache
// index-then-lazy-load shape (memory.Cache) without a backing Store: there
// is nothing to bootstrap or persist here, since flowtree owns no
// persistence layer (see SPEC_FULL.md Non-goals).
type CacheIndex struct {
	mu      sync.RWMutex
	entries map[string][]CacheEntry
}

// NewCacheIndex returns an empty CacheIndex.
func NewCacheIndex() *CacheIndex {
	return &CacheIndex{entries: make(map[string][]CacheEntry)}
}

// CacheKey joins a workflow id and a label into the deterministic key a
// host application uses to register a cache entry against a node.
func CacheKey(workflowID, label string) string {
	return workflowID + "/" + label
}

// RegisterCacheEntry records value under key against workflowID's node.
func (c *CacheIndex) RegisterCacheEntry(workflowID, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[workflowID] = append(c.entries[workflowID], CacheEntry{Key: key, Value: value})
}

// InspectCache returns the cache entries registered against nodeID, if any.
func (c *CacheIndex) InspectCache(nodeID string) []CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := c.entries[nodeID]
	out := make([]CacheEntry, len(entries))
	copy(out, entries)
	return out
}
