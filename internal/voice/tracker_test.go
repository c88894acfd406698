// internal/voice/tracker_test.go
package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArrivals(t *joinTracker, room string, arrivals map[string]time.Duration) {
	base := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	m := make(map[string]time.Time, len(arrivals))
	for id, offset := range arrivals {
		m[id] = base.Add(offset)
	}
	t.rooms[room] = m
}

func TestSuccessorPicksLongestPresent(t *testing.T) {
	tr := newJoinTracker()
	seedArrivals(tr, "room", map[string]time.Duration{
		"A": 10 * time.Second,
		"B": 5 * time.Second,
		"C": 20 * time.Second,
	})

	next, ok := tr.Successor("room", []string{"A", "B", "C"}, "A")
	require.True(t, ok)
	assert.Equal(t, "B", next, "smallest arrival among remaining wins")
}

func TestSuccessorColdCacheFallsBackToLiveOrder(t *testing.T) {
	tr := newJoinTracker()

	next, ok := tr.Successor("room", []string{"B", "C"}, "A")
	require.True(t, ok)
	assert.Equal(t, "B", next, "no records => first remaining live member")
}

func TestSuccessorRecordedMembersOutrankUnrecorded(t *testing.T) {
	tr := newJoinTracker()
	seedArrivals(tr, "room", map[string]time.Duration{"C": time.Second})

	// B appears first in live order but has no record (joined before a
	// restart); C's record still wins.
	next, ok := tr.Successor("room", []string{"B", "C"}, "A")
	require.True(t, ok)
	assert.Equal(t, "C", next)
}

func TestSuccessorNobodyRemaining(t *testing.T) {
	tr := newJoinTracker()
	_, ok := tr.Successor("room", []string{"A"}, "A")
	assert.False(t, ok)

	_, ok = tr.Successor("room", nil, "A")
	assert.False(t, ok)
}

func TestRecordKeepsEarliestArrival(t *testing.T) {
	tr := newJoinTracker()
	tr.Record("room", "A")

	tr.mu.Lock()
	first := tr.rooms["room"]["A"]
	tr.mu.Unlock()

	tr.Record("room", "A") // channel hop back in
	tr.mu.Lock()
	second := tr.rooms["room"]["A"]
	tr.mu.Unlock()

	assert.True(t, first.Equal(second), "re-join must not reset the arrival instant")
}

func TestRemoveAndDrop(t *testing.T) {
	tr := newJoinTracker()
	tr.Record("room", "A")
	tr.Record("room", "B")

	tr.Remove("room", "A")
	tr.mu.Lock()
	_, hasA := tr.rooms["room"]["A"]
	tr.mu.Unlock()
	assert.False(t, hasA)

	tr.Remove("room", "B")
	tr.mu.Lock()
	_, roomExists := tr.rooms["room"]
	tr.mu.Unlock()
	assert.False(t, roomExists, "empty room entry is discarded")

	tr.Record("other", "C")
	tr.Drop("other")
	tr.mu.Lock()
	_, otherExists := tr.rooms["other"]
	tr.mu.Unlock()
	assert.False(t, otherExists)
}
