package recompute

import (
	"sync"

	"github.com/litescript/ls-greatcircle/internal/raster"
)

// Mailbox is a single-slot handoff between recompute workers and the
// consumer. Every request is issued a generation; only the newest
// generation may deposit, so a slow worker for an outdated request can never
// overwrite a fresher result.
//
// The mutex is held only inside these methods, never across a pixel loop.
type Mailbox struct {
	mu     sync.Mutex
	issued uint64 // newest generation handed out by Begin
	write  uint64 // bumped on every accepted deposit
	read   uint64 // equals write once the deposit is taken
	slot   *raster.Rendered
}

// NewMailbox returns an empty mailbox. Generation 0 is never issued.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Begin issues a new generation. All earlier generations become superseded
// and any result they left untaken is dropped.
func (m *Mailbox) Begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.issued++
	m.slot = nil
	m.read = m.write
	return m.issued
}

// Deposit stores img for generation gen. It reports false, storing nothing,
// when gen is not the current generation.
func (m *Mailbox) Deposit(gen uint64, img *raster.Rendered) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen == 0 || gen != m.issued {
		return false
	}
	m.slot = img
	m.write++
	return true
}

// Take returns the most recent deposit, once. It reports false when nothing
// new has arrived since the last Take.
func (m *Mailbox) Take() (*raster.Rendered, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.write == m.read {
		return nil, false
	}
	m.read = m.write
	img := m.slot
	m.slot = nil
	return img, true
}

// Superseded reports whether gen has been replaced by a newer Begin.
// Workers call it between rows to give up early.
func (m *Mailbox) Superseded(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen < m.issued
}

// Generation returns the newest issued generation.
func (m *Mailbox) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}
