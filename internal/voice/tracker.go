// internal/voice/tracker.go
package voice

import (
	"sort"
	"sync"
	"time"
)

// joinTracker remembers, per room, when each present member arrived. It is
// purely in-memory: the whole map is lost on restart and rebuilt as events
// come in. Succession ranks candidates by earliest arrival; rooms with no
// records fall back to the live member-list order (see Successor).
//
// All engine access happens under the per-room key, but the outer map is
// shared across rooms, so the tracker carries its own short-lived lock.
type joinTracker struct {
	mu    sync.Mutex
	rooms map[string]map[string]time.Time
}

func newJoinTracker() *joinTracker {
	return &joinTracker{rooms: make(map[string]map[string]time.Time)}
}

// Record notes userID's arrival in channelID. A member who hops away and
// back keeps their original arrival instant; only the first record counts.
func (t *joinTracker) Record(channelID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[channelID]
	if !ok {
		room = make(map[string]time.Time)
		t.rooms[channelID] = room
	}
	if _, ok := room[userID]; !ok {
		room[userID] = time.Now()
	}
}

// Remove forgets userID's arrival in channelID.
func (t *joinTracker) Remove(channelID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if room, ok := t.rooms[channelID]; ok {
		delete(room, userID)
		if len(room) == 0 {
			delete(t.rooms, channelID)
		}
	}
}

// Drop discards all records for channelID. Called when the room is deleted.
func (t *joinTracker) Drop(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, channelID)
}

// Successor picks the next owner for channelID: the remaining live member
// with the earliest recorded arrival, excluding excludeID. Members without a
// record sort last, so on a cold cache (restart) the stable sort preserves
// the live list's order and the first remaining member wins. Returns false
// when nobody remains.
func (t *joinTracker) Successor(channelID string, live []string, excludeID string) (string, bool) {
	t.mu.Lock()
	records := t.rooms[channelID]
	remaining := make([]string, 0, len(live))
	for _, id := range live {
		if id != excludeID {
			remaining = append(remaining, id)
		}
	}
	arrivals := make(map[string]time.Time, len(remaining))
	for _, id := range remaining {
		if at, ok := records[id]; ok {
			arrivals[id] = at
		}
	}
	t.mu.Unlock()

	if len(remaining) == 0 {
		return "", false
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		ai, iok := arrivals[remaining[i]]
		aj, jok := arrivals[remaining[j]]
		if iok != jok {
			return iok // recorded members rank before unrecorded ones
		}
		if !iok {
			return false // both unrecorded: keep live-list order
		}
		return ai.Before(aj)
	})
	return remaining[0], true
}
