// Package strpool pools strings.Builder instances for render paths that
// rebuild the same short strings on every broadcast.
package strpool

import (
	"strings"
	"sync"
)

var pool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func Get() *strings.Builder {
	return pool.Get().(*strings.Builder)
}

// Put returns b to the pool. Callers reset the builder first.
func Put(b *strings.Builder) {
	pool.Put(b)
}
