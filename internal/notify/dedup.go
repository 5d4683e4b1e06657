package notify

import (
	"container/list"
	"sync"
	"time"
)

// DedupWindow is a bounded least-recently-used set of already-delivered
// notification ids. The feed is at-least-once, so the same row can arrive
// twice (reconnect replay); a hit inside the window suppresses the second
// delivery so the unread counter is never incremented twice for one event.
// Bounded by capacity and by an age check on each insert — no background
// timer is needed for correctness.
type DedupWindow struct {
	capacity int
	maxAge   time.Duration

	mu      sync.Mutex
	order   *list.List               // front = most recent
	entries map[string]*list.Element // id -> element holding dedupEntry
}

type dedupEntry struct {
	id   string
	seen time.Time
}

func NewDedupWindow(capacity int, maxAge time.Duration) *DedupWindow {
	if capacity <= 0 {
		capacity = 512
	}
	return &DedupWindow{
		capacity: capacity,
		maxAge:   maxAge,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Seen records the id and reports whether it was already present within the
// window. Expired entries count as unseen.
func (w *DedupWindow) Seen(id string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if el, ok := w.entries[id]; ok {
		entry := el.Value.(*dedupEntry)
		if now.Sub(entry.seen) <= w.maxAge {
			entry.seen = now
			w.order.MoveToFront(el)
			return true
		}
		// Aged out: treat as new.
		entry.seen = now
		w.order.MoveToFront(el)
		return false
	}

	w.entries[id] = w.order.PushFront(&dedupEntry{id: id, seen: now})

	// Evict expired entries from the tail, then enforce the size bound.
	for el := w.order.Back(); el != nil; el = w.order.Back() {
		entry := el.Value.(*dedupEntry)
		if now.Sub(entry.seen) <= w.maxAge && w.order.Len() <= w.capacity {
			break
		}
		w.order.Remove(el)
		delete(w.entries, entry.id)
	}

	return false
}

// Len reports the current number of tracked ids.
func (w *DedupWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order.Len()
}
