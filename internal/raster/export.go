package raster

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Export writes r to path, choosing WebP or PNG by extension. Parent
// directories are created as needed.
func Export(path string, r *Rendered) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".webp" && ext != ".png" {
		return fmt.Errorf("%w: %q (want .webp or .png)", ErrUnsupportedFormat, ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("raster: export %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: export %s: %w", path, err)
	}

	switch ext {
	case ".webp":
		err = nativewebp.Encode(f, r.Image, nil)
	case ".png":
		err = png.Encode(f, r.Image)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("raster: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("raster: export %s: %w", path, err)
	}
	return nil
}
