package snapshot

import (
	"sync"
	"time"
)

// HistoryEntry is the snapshot-derived tuple appended once per refresh cycle.
// It is the only persisted time series in the system.
type HistoryEntry struct {
	ComputedAt          time.Time `json:"computedAt"`
	GlobalThreatIndex   int       `json:"globalThreatIndex"`
	ActiveAnomalies     int       `json:"activeAnomalies"`
	HighPlusCountries   int       `json:"highPlusCountries"`
	EscalationAlerts24h int       `json:"escalationAlerts24h"`
	ModelHealth         float64   `json:"modelHealth"`
	ActiveSources       int       `json:"activeSources"`
}

// DefaultHistorySize bounds the KPI history FIFO.  Accessors may label the
// window "7D" or "12W", but actual coverage is capacity × refresh cadence;
// the label is presentational metadata, not a retention guarantee.
const DefaultHistorySize = 30

// History is a bounded FIFO of KPI history entries, oldest evicted first.
// It is safe for one writer (the refresh job) and many readers.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []HistoryEntry
}

// NewHistory creates a History with the given capacity; non-positive values
// fall back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity}
}

// Append pushes one entry, evicting the oldest when the buffer is full.
func (h *History) Append(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Entries returns a copy of the buffer, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Capacity returns the configured bound.
func (h *History) Capacity() int {
	return h.capacity
}
