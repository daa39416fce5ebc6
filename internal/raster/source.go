// Package raster holds the immutable source map, the nearest-neighbour
// sampler that reads it, and the RGBA rasters produced by a recompute.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrMalformed means a source buffer does not hold exactly width×height RGB
// triples. A sampler cannot be built from it.
var ErrMalformed = errors.New("raster: malformed source buffer")

// Sentinel is returned for samples outside the source map. Magenta makes
// off-by-one and wrap errors easy to spot.
var Sentinel = color.RGBA{R: 0xff, G: 0, B: 0xff, A: 0xff}

// SourceRaster is a width×height map of tightly packed, row-major RGB bytes.
// It is never modified after construction, so any number of workers may
// share one by pointer.
type SourceRaster struct {
	width  int
	height int
	rgb    []byte
}

// NewSourceRaster wraps rgb as a source map. The slice is retained; callers
// must not modify it afterwards.
func NewSourceRaster(width, height int, rgb []byte) (*SourceRaster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrMalformed, width, height)
	}
	if len(rgb) != 3*width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d, want %d",
			ErrMalformed, len(rgb), width, height, 3*width*height)
	}
	return &SourceRaster{width: width, height: height, rgb: rgb}, nil
}

// FromImage copies any decoded image into a new source raster, dropping
// alpha.
func FromImage(img image.Image) (*SourceRaster, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, 3*w*h)

	if n, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				rgb = append(rgb, row[i], row[i+1], row[i+2])
			}
		}
		return NewSourceRaster(w, h, rgb)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			rgb = append(rgb, c.R, c.G, c.B)
		}
	}
	return NewSourceRaster(w, h, rgb)
}

func (s *SourceRaster) Width() int  { return s.width }
func (s *SourceRaster) Height() int { return s.height }

// RGBAAt returns pixel (x, y) fully opaque, or Sentinel when out of bounds.
func (s *SourceRaster) RGBAAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return Sentinel
	}
	i := 3 * (x + s.width*y)
	return color.RGBA{R: s.rgb[i], G: s.rgb[i+1], B: s.rgb[i+2], A: 0xff}
}

// Sampler does nearest-neighbour lookups into a source raster by map
// fraction. No interpolation is done.
type Sampler struct {
	src *SourceRaster
	fw  float64
	fh  float64
}

// NewSampler returns a sampler over src.
func NewSampler(src *SourceRaster) *Sampler {
	return &Sampler{
		src: src,
		fw:  float64(src.width),
		fh:  float64(src.height),
	}
}

// Source returns the raster being sampled.
func (s *Sampler) Source() *SourceRaster { return s.src }

// Sample scales (u, v) by the source size, truncates to a pixel index and
// returns that pixel. Anything outside [0,1)², NaN included, yields Sentinel.
func (s *Sampler) Sample(u, v float64) color.RGBA {
	fx := u * s.fw
	fy := v * s.fh
	if !(fx >= 0 && fx < s.fw) || !(fy >= 0 && fy < s.fh) {
		return Sentinel
	}
	return s.src.RGBAAt(int(math.Floor(fx)), int(math.Floor(fy)))
}
