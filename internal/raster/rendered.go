package raster

import (
	"image"
	"image/color"
	"time"
)

// Rendered is the output of one recompute pass. Each pass allocates its own;
// once handed off it is never written again.
type Rendered struct {
	Image      *image.RGBA
	Generation uint64        // mailbox generation that produced it
	Elapsed    time.Duration // time spent in the pixel loop
}

// NewRendered allocates a transparent width×height raster.
func NewRendered(width, height int) *Rendered {
	return &Rendered{Image: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (r *Rendered) Width() int  { return r.Image.Rect.Dx() }
func (r *Rendered) Height() int { return r.Image.Rect.Dy() }

// Set writes pixel (col, row). Bounds are the caller's responsibility.
func (r *Rendered) Set(col, row int, c color.RGBA) {
	i := row*r.Image.Stride + col*4
	p := r.Image.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// At returns pixel (col, row).
func (r *Rendered) At(col, row int) color.RGBA {
	return r.Image.RGBAAt(col, row)
}
