package projection

import (
	"sync"

	"github.com/slok/ttdproj/internal/model"
)

// Cache keeps the last generated projection together with the input that produced
// it, a projection is only generated again when the input changes by value.
//
// Returned series are shared between callers and must be treated as read only.
type Cache struct {
	mu     sync.Mutex
	input  Input
	result []model.ProgressPoint
	filled bool
}

// Get returns the projection for the input, the returned bool is true when the
// projection had to be generated.
func (c *Cache) Get(in Input) ([]model.ProgressPoint, bool, error) {
	if err := in.defaults(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled && sameInput(c.input, in) {
		return c.result, false, nil
	}

	result, err := Generate(in)
	if err != nil {
		return nil, false, err
	}

	c.input = in
	c.result = result
	c.filled = true

	return result, true, nil
}

// Reset drops the cached projection.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = Input{}
	c.result = nil
	c.filled = false
}

func sameInput(a, b Input) bool {
	return a.LastObserved.Timestamp.Equal(b.LastObserved.Timestamp) &&
		a.LastObserved.Percent == b.LastObserved.Percent &&
		a.Target.Equal(b.Target) &&
		a.Granularity == b.Granularity
}
