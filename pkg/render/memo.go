package render

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// MemoCache stores the markup of memoized components keyed by component
// name and serialized props. It is safe for concurrent use and is meant to
// be shared by every render of a Renderer.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[uint64]string
}

// NewMemoCache creates an empty cache.
func NewMemoCache() *MemoCache {
	return &MemoCache{entries: make(map[uint64]string)}
}

// key hashes (name, props). Props that cannot be serialized are not cached.
func (c *MemoCache) key(spec *vdom.MemoSpec) (uint64, bool) {
	props, err := json.Marshal(spec.Props)
	if err != nil {
		return 0, false
	}
	d := xxhash.New()
	d.WriteString(spec.Name)
	d.Write([]byte{0})
	d.Write(props)
	return d.Sum64(), true
}

func (c *MemoCache) get(key uint64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	html, ok := c.entries[key]
	return html, ok
}

func (c *MemoCache) put(key uint64, html string) {
	c.mu.Lock()
	c.entries[key] = html
	c.mu.Unlock()
}

// Invalidate drops the entry for one (name, props) pair.
func (c *MemoCache) Invalidate(name string, props any) {
	key, ok := c.key(&vdom.MemoSpec{Name: name, Props: props})
	if !ok {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *MemoCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[uint64]string)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *MemoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
