package recompute

import (
	"context"

	"github.com/litescript/ls-greatcircle/internal/metrics"
	"github.com/litescript/ls-greatcircle/internal/raster"
)

// Phase is the render state. It is one of Idle, Computing, Refreshing or
// Stable.
type Phase interface {
	String() string
	isPhase()
}

// Idle: nothing requested yet.
type Idle struct{}

// Computing: a raster is being built and nothing is on screen.
type Computing struct {
	Gen uint64
}

// Refreshing: Shown stays on screen while generation Gen is built.
type Refreshing struct {
	Shown *raster.Rendered
	Gen   uint64
}

// Stable: Shown is current.
type Stable struct {
	Shown *raster.Rendered
}

func (Idle) isPhase()       {}
func (Computing) isPhase()  {}
func (Refreshing) isPhase() {}
func (Stable) isPhase()     {}

func (Idle) String() string       { return "idle" }
func (Computing) String() string  { return "computing" }
func (Refreshing) String() string { return "refreshing" }
func (Stable) String() string     { return "stable" }

// Shown returns the raster displayed in phase p, or nil.
func Shown(p Phase) *raster.Rendered {
	switch p := p.(type) {
	case Refreshing:
		return p.Shown
	case Stable:
		return p.Shown
	}
	return nil
}

// Spawner starts a job in the background. The worker must deposit its
// result into mb under job.Gen.
type Spawner interface {
	Spawn(ctx context.Context, job Job, mb *Mailbox)
}

// Machine tracks which raster is displayed and which recompute is
// authoritative. It is owned by one goroutine (the UI loop); workers only
// touch its mailbox.
type Machine struct {
	ctx     context.Context
	mailbox *Mailbox
	spawner Spawner
	phase   Phase
}

// NewMachine returns an Idle machine. ctx is passed to every worker, so
// cancelling it stops them all.
func NewMachine(ctx context.Context, spawner Spawner) *Machine {
	metrics.SetPhase(Idle{}.String())
	return &Machine{
		ctx:     ctx,
		mailbox: NewMailbox(),
		spawner: spawner,
		phase:   Idle{},
	}
}

// Request supersedes whatever is in flight and spawns job under a fresh
// generation, which it returns. A displayed raster stays on screen until
// the new one arrives.
func (m *Machine) Request(job Job) uint64 {
	gen := m.mailbox.Begin()
	mb := m.mailbox
	job.Gen = gen
	job.Superseded = func() bool { return mb.Superseded(gen) }

	switch p := m.phase.(type) {
	case Stable:
		m.setPhase(Refreshing{Shown: p.Shown, Gen: gen})
	case Refreshing:
		m.setPhase(Refreshing{Shown: p.Shown, Gen: gen})
	default:
		m.setPhase(Computing{Gen: gen})
	}

	metrics.IncRecomputesStarted()
	m.spawner.Spawn(m.ctx, job, mb)
	return gen
}

// Poll collects a finished raster if one is waiting. It never blocks. It
// returns the raster to display (nil if none yet) and the phase after
// polling.
func (m *Machine) Poll() (*raster.Rendered, Phase) {
	switch m.phase.(type) {
	case Computing, Refreshing:
		if img, ok := m.mailbox.Take(); ok {
			m.setPhase(Stable{Shown: img})
		}
	}
	return Shown(m.phase), m.phase
}

// Phase returns the current phase without polling.
func (m *Machine) Phase() Phase { return m.phase }

// Mailbox exposes the machine's mailbox.
func (m *Machine) Mailbox() *Mailbox { return m.mailbox }

func (m *Machine) setPhase(p Phase) {
	m.phase = p
	metrics.SetPhase(p.String())
}
