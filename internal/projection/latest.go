package projection

import (
	"sync"

	"github.com/slok/ttdproj/internal/model"
)

// Latest holds the most recent projection when projections are computed
// concurrently. Every computation takes a ticket with Next before starting and
// publishes its result with that ticket, results from tickets older than the
// published one are discarded.
type Latest struct {
	mu        sync.RWMutex
	issued    uint64
	published uint64
	series    []model.ProgressPoint
}

// Next returns a new ticket for a computation that is about to start.
func (l *Latest) Next() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.issued++
	return l.issued
}

// Publish stores the series if the ticket is newer than the currently published
// one. It returns false when the result is stale and has been discarded.
func (l *Latest) Publish(ticket uint64, series []model.ProgressPoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ticket <= l.published {
		return false
	}

	l.published = ticket
	l.series = series
	return true
}

// Load returns the published series and its ticket, ticket 0 means nothing has
// been published yet.
func (l *Latest) Load() ([]model.ProgressPoint, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.series, l.published
}
