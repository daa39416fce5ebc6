package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestNewSourceRaster_Malformed(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		n             int
	}{
		{"too short", 2, 2, 11},
		{"too long", 2, 2, 13},
		{"rgba not rgb", 2, 2, 16},
		{"zero width", 0, 2, 0},
		{"negative height", 2, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSourceRaster(tt.width, tt.height, make([]byte, tt.n))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestSample_InBounds(t *testing.T) {
	// 2×2: [[R, G], [B, W]]
	src, err := NewSourceRaster(2, 2, []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewSampler(src)

	tests := []struct {
		u, v float64
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{0.49, 0.49, color.RGBA{255, 0, 0, 255}},
		{0.5, 0, color.RGBA{0, 255, 0, 255}},
		{0.99, 0.2, color.RGBA{0, 255, 0, 255}},
		{0.2, 0.5, color.RGBA{0, 0, 255, 255}},
		{0.75, 0.75, color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		if got := s.Sample(tt.u, tt.v); got != tt.want {
			t.Errorf("Sample(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestSample_OutOfBoundsIsSentinel(t *testing.T) {
	s := NewSampler(Graticule(8, 4))

	coords := [][2]float64{
		{1, 0.5}, {0.5, 1}, {1.5, 1.5}, {-0.01, 0.5}, {0.5, -0.5},
		{math.NaN(), 0.5}, {0.5, math.Inf(1)},
	}
	for _, c := range coords {
		if got := s.Sample(c[0], c[1]); got != Sentinel {
			t.Errorf("Sample(%v, %v) = %v, want sentinel", c[0], c[1], got)
		}
	}

	if Sentinel != (color.RGBA{255, 0, 255, 255}) {
		t.Errorf("Sentinel = %v, want opaque magenta", Sentinel)
	}
}

func TestSample_AlwaysOpaque(t *testing.T) {
	s := NewSampler(Graticule(36, 18))
	for u := 0.0; u < 1; u += 0.01 {
		for v := 0.0; v < 1; v += 0.01 {
			if c := s.Sample(u, v); c.A != 255 {
				t.Fatalf("Sample(%v, %v) alpha = %d, want 255", u, v, c.A)
			}
		}
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{10, 20, 30, 255})

	src, err := FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if src.Width() != 3 || src.Height() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", src.Width(), src.Height())
	}
	if got := src.RGBAAt(2, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("RGBAAt(2, 1) = %v", got)
	}
}

func TestFromImage_RGBAWithOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.SetRGBA(6, 5, color.RGBA{1, 2, 3, 255})

	src, err := FromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if got := src.RGBAAt(1, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("RGBAAt(1, 0) = %v, want (1,2,3)", got)
	}
}

func TestGraticule(t *testing.T) {
	src := Graticule(72, 35)
	if src.Width() != 72 || src.Height() != 35 {
		t.Fatalf("size = %dx%d", src.Width(), src.Height())
	}

	eq := src.RGBAAt(20, 17)
	want := color.RGBA{graticuleEquator[0], graticuleEquator[1], graticuleEquator[2], 255}
	if eq != want {
		t.Errorf("equator pixel = %v, want %v", eq, want)
	}

	if src.RGBAAt(10, 1) == src.RGBAAt(10, 33) {
		t.Error("north and south should differ")
	}
	if top := src.RGBAAt(10, 1); top.B <= top.R {
		t.Errorf("top row = %v, want the blue north tint", top)
	}

	pm := src.RGBAAt(36, 5)
	want = color.RGBA{graticuleMeridian[0], graticuleMeridian[1], graticuleMeridian[2], 255}
	if pm != want {
		t.Errorf("prime meridian pixel = %v, want %v", pm, want)
	}
}

func TestRendered_SetAt(t *testing.T) {
	r := NewRendered(4, 3)
	if r.Width() != 4 || r.Height() != 3 {
		t.Fatalf("size = %dx%d", r.Width(), r.Height())
	}
	c := color.RGBA{9, 8, 7, 255}
	r.Set(3, 2, c)
	if got := r.At(3, 2); got != c {
		t.Errorf("At(3, 2) = %v, want %v", got, c)
	}
}
