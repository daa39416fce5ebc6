// Package recompute turns a remapper and a source sampler into a rendered
// raster off the UI goroutine, and tracks which raster is on screen.
package recompute

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/litescript/ls-greatcircle/internal/raster"
)

// CancelCheckRows is how many rows a worker renders between checks for
// cancellation.
const CancelCheckRows = 8

var (
	// ErrSuperseded is returned by Render when a newer request replaced the job.
	ErrSuperseded = errors.New("recompute: superseded")

	// ErrEmptyJob is returned for jobs with no pixels or missing inputs.
	ErrEmptyJob = errors.New("recompute: empty job")
)

// Sampler looks up a source colour by map fraction.
type Sampler interface {
	Sample(u, v float64) color.RGBA
}

// Remapper maps a display fraction to the source fraction shown there.
type Remapper interface {
	Untwist(u, v float64) (float64, float64)
}

// Job is everything a worker needs. Sampler and Remapper are shared
// read-only with other jobs.
type Job struct {
	Width    int
	Height   int
	Sampler  Sampler
	Remapper Remapper

	// Gen and Superseded are filled in by Machine.Request.
	Gen        uint64
	Superseded func() bool
}

// Render fills a Width×Height raster row by row: each pixel's display
// fraction is untwisted into the source and sampled there. Between every
// CancelCheckRows rows it stops if ctx is done or the job is superseded.
func Render(ctx context.Context, job Job) (*raster.Rendered, error) {
	if job.Width <= 0 || job.Height <= 0 || job.Sampler == nil || job.Remapper == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyJob, job.Width, job.Height)
	}

	start := time.Now()
	out := raster.NewRendered(job.Width, job.Height)
	out.Generation = job.Gen

	w, h := float64(job.Width), float64(job.Height)

	for row := 0; row < job.Height; row++ {
		if row%CancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("recompute: generation %d: %w", job.Gen, err)
			}
			if job.Superseded != nil && job.Superseded() {
				return nil, fmt.Errorf("%w: generation %d at row %d", ErrSuperseded, job.Gen, row)
			}
		}

		v0 := float64(row) / h
		for col := 0; col < job.Width; col++ {
			u, v := job.Remapper.Untwist(float64(col)/w, v0)
			out.Set(col, row, job.Sampler.Sample(u, v))
		}
	}

	out.Elapsed = time.Since(start)
	return out, nil
}
