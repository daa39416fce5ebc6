package raster

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for file extensions with no codec.
var ErrUnsupportedFormat = errors.New("raster: unsupported image format")

type decodeFunc func(io.Reader) (image.Image, error)

// decoders is keyed by lowercase extension. TGA has no magic number, so
// formats are chosen by name instead of sniffing with image.Decode.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// Load decodes an equirectangular map from disk. Images wider than maxWidth
// are scaled down with Catmull-Rom filtering, keeping the aspect ratio;
// maxWidth <= 0 disables scaling.
func Load(path string, maxWidth int) (*SourceRaster, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", path, err)
	}

	img = fitWidth(img, maxWidth)

	src, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("raster: load %s: %w", path, err)
	}
	return src, nil
}

// fitWidth scales img down so it is at most maxWidth pixels wide.
func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
