// Package state holds the interactive session: the anchors, the remapper
// built from them, the output size and a log of what changed.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-greatcircle/internal/logging"
	"github.com/litescript/ls-greatcircle/internal/metrics"
	"github.com/litescript/ls-greatcircle/internal/raster"
	"github.com/litescript/ls-greatcircle/internal/remap"
)

// EventType represents the type of session change.
type EventType string

const (
	EventAnchorAdded   EventType = "ANCHOR_ADDED"
	EventAnchorEvicted EventType = "ANCHOR_EVICTED"
	EventAnchorUndone  EventType = "ANCHOR_UNDONE"
	EventAnchorsClear  EventType = "ANCHORS_CLEARED"
	EventDegenerate    EventType = "DEGENERATE_BASIS"
	EventResize        EventType = "RESIZE"
	EventExported      EventType = "EXPORTED"
)

// Event records one session change.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Anchor    *remap.Anchor `json:"anchor,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (e Event) String() string {
	s := string(e.Type)
	if e.Anchor != nil {
		s += " " + e.Anchor.String()
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

// Stats summarises finished recomputes.
type Stats struct {
	Requested   uint64
	Completed   uint64
	LastGen     uint64
	LastElapsed time.Duration
	LastResult  time.Time
}

// Manager handles all session state with thread-safe access.
type Manager struct {
	mu  sync.RWMutex
	log *logging.Logger

	anchors  remap.Anchors
	remapper *remap.Remapper

	width  int
	height int

	stats Stats

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
	Width     int
	Height    int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50,
		Width:     80,
		Height:    48,
	}
}

// NewManager creates a session with no anchors and an identity remapper.
func NewManager(cfg Config, log *logging.Logger) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		log:       log.Named("state"),
		remapper:  remap.New(nil),
		width:     cfg.Width,
		height:    cfg.Height,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// AddAnchor appends a source-map anchor, evicting the oldest past
// remap.MaxAnchors, and returns the rebuilt remapper.
func (m *Manager) AddAnchor(a remap.Anchor) *remap.Remapper {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, evicted, didEvict := m.anchors.Push(a)
	m.anchors = next
	added := next[len(next)-1]

	if didEvict {
		m.addEvent(Event{Type: EventAnchorEvicted, Anchor: &evicted})
	}
	m.addEvent(Event{Type: EventAnchorAdded, Anchor: &added})
	m.log.Info("anchor %v added (%d/%d)", added, len(next), remap.MaxAnchors)

	return m.rebuild()
}

// SetAnchors replaces all anchors, keeping the newest remap.MaxAnchors.
func (m *Manager) SetAnchors(anchors []remap.Anchor) *remap.Remapper {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next remap.Anchors
	for _, a := range anchors {
		next, _, _ = next.Push(a)
	}
	m.anchors = next
	return m.rebuild()
}

// Undo removes the newest anchor. It reports false when there were none.
func (m *Manager) Undo() (*remap.Remapper, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, removed, ok := m.anchors.Pop()
	if !ok {
		return m.remapper, false
	}
	m.anchors = next
	m.addEvent(Event{Type: EventAnchorUndone, Anchor: &removed})
	m.log.Info("anchor %v undone", removed)
	return m.rebuild(), true
}

// Clear removes every anchor. It reports false when there were none.
func (m *Manager) Clear() (*remap.Remapper, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.anchors) == 0 {
		return m.remapper, false
	}
	m.anchors = nil
	m.addEvent(Event{Type: EventAnchorsClear})
	m.log.Info("anchors cleared")
	return m.rebuild(), true
}

// rebuild derives a new remapper from the anchors. Caller holds mu.
func (m *Manager) rebuild() *remap.Remapper {
	r := remap.New(m.anchors)
	m.remapper = r

	if fb := r.Fallback(); fb != remap.FallbackNone {
		m.addEvent(Event{Type: EventDegenerate, Detail: fb.String()})
		metrics.IncDegenerateFallback(fb.String())
		m.log.Warn("degenerate anchors %v, using %s basis", []remap.Anchor(m.anchors), fb)
	}

	if m.log.Enabled(logging.LevelDebug) {
		for _, a := range m.anchors {
			du, dv := r.Twist(a.U, a.V)
			su, sv := r.Untwist(du, dv)
			m.log.Debug("anchor %v -> display (%.4f, %.4f) -> source (%.4f, %.4f)", a, du, dv, su, sv)
		}
	}
	return r
}

// Resize records a new output size. It reports whether the size changed.
func (m *Manager) Resize(width, height int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if width == m.width && height == m.height {
		return false
	}
	m.width, m.height = width, height
	m.addEvent(Event{Type: EventResize, Detail: fmt.Sprintf("%dx%d", width, height)})
	return true
}

// Size returns the output size in pixels.
func (m *Manager) Size() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width, m.height
}

// Remapper returns the current remapper. It is immutable and safe to share.
func (m *Manager) Remapper() *remap.Remapper {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remapper
}

// Anchors returns a copy of the current anchors, oldest first.
func (m *Manager) Anchors() remap.Anchors {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.anchors.Clone()
}

// RecordRequest notes that generation gen was requested.
func (m *Manager) RecordRequest(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Requested++
	m.stats.LastGen = gen
}

// RecordResult notes a raster that reached the screen.
func (m *Manager) RecordResult(img *raster.Rendered) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Completed++
	m.stats.LastElapsed = img.Elapsed
	m.stats.LastResult = time.Now()
}

// RecordExport notes a raster written to path.
func (m *Manager) RecordExport(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(Event{Type: EventExported, Detail: path})
}

// addEvent adds an event to the ring buffer. Caller holds mu.
func (m *Manager) addEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of the session.
type Snapshot struct {
	Anchors  remap.Anchors
	Remapper *remap.Remapper
	Width    int
	Height   int
	Stats    Stats
	Events   []Event
}

// Snapshot returns a consistent snapshot of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Anchors:  m.anchors.Clone(),
		Remapper: m.remapper,
		Width:    m.width,
		Height:   m.height,
		Stats:    m.stats,
		Events:   m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
