// Package dedupe provides a content-addressed cache of candidate source
// texts already tried during a reduction run, so the searcher can skip
// re-invoking the oracle on a regenerated text it has already judged. This
// is an additive optimization: SPEC_FULL.md §4.6 requires it never change
// the accept/reject outcome the oracle itself would have produced.
package dedupe

import (
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Verdict is a previously observed oracle outcome for a given candidate
// source text.
type Verdict struct {
	Accepted bool
}

// Cache maps candidate source text (by content hash) to the oracle verdict
// it previously produced within a single run.
type Cache struct {
	mu    sync.Mutex
	seen  map[[blake2b.Size256]byte]Verdict
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{seen: make(map[[blake2b.Size256]byte]Verdict)}
}

func hashOf(source string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(source))
}

// Lookup reports whether source has already been judged this run, and if
// so, what the verdict was.
func (c *Cache) Lookup(source string) (Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.seen[hashOf(source)]
	return v, ok
}

// Record stores the oracle's verdict for source.
func (c *Cache) Record(source string, accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[hashOf(source)] = Verdict{Accepted: accepted}
}

// Len returns the number of distinct candidate texts recorded.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
