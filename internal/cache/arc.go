package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// NewLRU wraps an ARC cache of the given size. ARC tracks both recency and
// frequency, which fits the results archive's read pattern: a burst of
// fetches right after a room completes, then a long tail.
func NewLRU(size int) (*LRU, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("new arc cache: %w", err)
	}

	return &LRU{arc: arc}, nil
}

// LRU adapts hashicorp's ARC cache to the Cache interface.
type LRU struct {
	arc *lru.ARCCache
}

var _ Cache = (*LRU)(nil)

func (c *LRU) Get(key interface{}) (interface{}, bool) {
	return c.arc.Get(key)
}

func (c *LRU) Add(key, value interface{}) {
	c.arc.Add(key, value)
}

func (c *LRU) Keys() []interface{} {
	return c.arc.Keys()
}

func (c *LRU) Delete(key interface{}) {
	c.arc.Remove(key)
}
