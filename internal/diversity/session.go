package diversity

import (
	"sync"

	"github.com/HerbHall/themeforge/pkg/theme"
)

// SessionHistory is the bounded, order-preserving memory of themes accepted
// during one generation session. All access is mutex-serialized so the
// capacity bound and insertion order hold under concurrent generation calls.
type SessionHistory struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]theme.ThemeColorSummary
}

// NewSessionHistory creates a history bounded to capacity entries.
// Non-positive capacities fall back to the default of 10.
func NewSessionHistory(capacity int) *SessionHistory {
	if capacity <= 0 {
		capacity = theme.DefaultDiversityConfig().SessionCapacity
	}
	return &SessionHistory{
		capacity: capacity,
		entries:  make(map[string]theme.ThemeColorSummary),
	}
}

// Add inserts a summary. When the size would exceed capacity, the single
// oldest entry (by insertion order) is evicted. Re-adding an existing ID
// replaces the summary without changing its position.
func (h *SessionHistory) Add(s theme.ThemeColorSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.entries[s.ID]; !exists {
		h.order = append(h.order, s.ID)
	}
	h.entries[s.ID] = s

	for len(h.order) > h.capacity {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.entries, oldest)
	}
}

// Snapshot returns the current entries in insertion order. The returned
// slice is a copy; callers may iterate without holding any lock.
func (h *SessionHistory) Snapshot() []theme.ThemeColorSummary {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]theme.ThemeColorSummary, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.entries[id])
	}
	return out
}

// Count returns the number of remembered themes.
func (h *SessionHistory) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Clear empties the history, ending the session's uniqueness memory.
func (h *SessionHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = nil
	h.entries = make(map[string]theme.ThemeColorSummary)
}

// Capacity returns the configured bound.
func (h *SessionHistory) Capacity() int {
	return h.capacity
}
