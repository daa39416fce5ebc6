package recompute

import (
	"context"
	"errors"
	"sync"

	"github.com/litescript/ls-greatcircle/internal/logging"
	"github.com/litescript/ls-greatcircle/internal/metrics"
)

// GoSpawner runs each job on its own goroutine.
type GoSpawner struct {
	log *logging.Logger

	// Notify, if set, is called from the worker after a successful deposit.
	Notify func(gen uint64)

	wg sync.WaitGroup
}

// NewGoSpawner returns a spawner that logs to log.
func NewGoSpawner(log *logging.Logger) *GoSpawner {
	if log == nil {
		log = logging.Discard()
	}
	return &GoSpawner{log: log.Named("recompute")}
}

// Spawn implements Spawner.
func (s *GoSpawner) Spawn(ctx context.Context, job Job, mb *Mailbox) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, job, mb)
	}()
}

func (s *GoSpawner) run(ctx context.Context, job Job, mb *Mailbox) {
	s.log.Debug("generation %d: rendering %dx%d", job.Gen, job.Width, job.Height)

	img, err := Render(ctx, job)
	switch {
	case errors.Is(err, ErrSuperseded):
		metrics.IncRecomputesSuperseded()
		s.log.Debug("%v", err)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Debug("%v", err)
		return
	case err != nil:
		s.log.Error("generation %d: %v", job.Gen, err)
		return
	}

	if !mb.Deposit(job.Gen, img) {
		metrics.IncStaleDeposits()
		s.log.Debug("generation %d: stale deposit rejected", job.Gen)
		return
	}

	metrics.RecordRecompute(img.Elapsed)
	s.log.Debug("generation %d: done in %v", job.Gen, img.Elapsed)

	if s.Notify != nil {
		s.Notify(job.Gen)
	}
}

// Wait blocks until every spawned worker has returned.
func (s *GoSpawner) Wait() {
	s.wg.Wait()
}
