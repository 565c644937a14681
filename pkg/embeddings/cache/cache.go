// Package cache provides a bounded LRU cache over an Embedder.
//
// The cache maps exact text to its embedding. It is a pure latency
// optimisation with no correctness role: entries are never persisted and the
// whole cache dies with the process.
package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/braidhq/braid/pkg/embeddings"
)

// DefaultCapacity is the default maximum number of cached embeddings.
const DefaultCapacity = 1000

type entry struct {
	text      string
	embedding []float32
}

// Cache is a mutex-guarded LRU of text -> embedding backed by an Embedder.
type Cache struct {
	inner    embeddings.Embedder
	capacity int

	mu    sync.Mutex
	order *list.List               // front = most recently used
	items map[string]*list.Element // text -> element in order
}

// New wraps inner with an LRU of the given capacity. A capacity <= 0 falls
// back to DefaultCapacity.
func New(inner embeddings.Embedder, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Embed returns the cached embedding for text, invoking the inner embedder
// on a miss and evicting the least recently used entry past capacity.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if el, ok := c.items[text]; ok {
		c.order.MoveToFront(el)
		emb := el.Value.(*entry).embedding
		c.mu.Unlock()
		return emb, nil
	}
	c.mu.Unlock()

	// Compute outside the lock; the embedder call can block on the network.
	embedding, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have populated the entry meanwhile.
	if el, ok := c.items[text]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry).embedding, nil
	}

	c.items[text] = c.order.PushFront(&entry{text: text, embedding: embedding})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).text)
	}

	return embedding, nil
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Contains reports whether text currently has a cached embedding, without
// promoting it.
func (c *Cache) Contains(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[text]
	return ok
}

// Close releases the inner embedder.
func (c *Cache) Close() error {
	return c.inner.Close()
}

// Ensure Cache implements embeddings.Embedder
var _ embeddings.Embedder = (*Cache)(nil)
