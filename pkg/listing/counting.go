package listing

import (
	"sync"
)

// Counting wraps a Lister and records how often each directory was listed.
type Counting struct {
	inner Lister

	mu    sync.Mutex
	calls map[string]int
	total int
}

func NewCounting(inner Lister) *Counting {
	return &Counting{
		inner: inner,
		calls: make(map[string]int),
	}
}

func (c *Counting) List(dir string) ([]Entry, error) {
	c.mu.Lock()
	c.calls[dir]++
	c.total++
	c.mu.Unlock()

	return c.inner.List(dir)
}

// Calls returns how many times dir was listed.
func (c *Counting) Calls(dir string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[dir]
}

// Total returns the number of listings performed.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
