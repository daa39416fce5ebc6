package raster

// Graticule colours
var (
	graticuleLine     = [3]byte{0x1b, 0x26, 0x3b}
	graticuleEquator  = [3]byte{0xf2, 0xc9, 0x4c}
	graticuleMeridian = [3]byte{0xe8, 0x4a, 0x27}
	graticuleNorth    = [3]byte{0x3b, 0x82, 0xf6}
	graticuleSouth    = [3]byte{0x7b, 0x2c, 0xbf}
)

// graticuleStep is the grid spacing in degrees.
const graticuleStep = 15

// Graticule draws a width×height equirectangular grid with north at the top
// and -180° at the left edge: a north/south colour gradient checkered every
// 30° of longitude, grid lines every 15°, the equator in yellow and the prime
// meridian in red. It stands in for a world
// map when none is configured, and makes any rotation easy to read.
func Graticule(width, height int) *SourceRaster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	rgb := make([]byte, 3*width*height)

	// One pixel wide lines, at least.
	lonTol := 360.0 / float64(width) / 2
	latTol := 180.0 / float64(height) / 2

	for y := 0; y < height; y++ {
		lat := 90 - (float64(y)+0.5)/float64(height)*180
		t := (lat + 90) / 180

		for x := 0; x < width; x++ {
			lon := (float64(x)+0.5)/float64(width)*360 - 180

			var c [3]byte
			switch {
			case near(lat, 0, latTol):
				c = graticuleEquator
			case near(lon, 0, lonTol):
				c = graticuleMeridian
			case onGrid(lon+180, lonTol) || onGrid(lat+90, latTol):
				c = graticuleLine
			default:
				c = lerpRGB(graticuleSouth, graticuleNorth, t)
				if (int(lon+180)/30)%2 == 1 {
					c = [3]byte{c[0] * 3 / 4, c[1] * 3 / 4, c[2] * 3 / 4}
				}
			}

			i := 3 * (x + width*y)
			rgb[i], rgb[i+1], rgb[i+2] = c[0], c[1], c[2]
		}
	}

	// Dimensions and length agree by construction.
	src, _ := NewSourceRaster(width, height, rgb)
	return src
}

func near(a, b, tol float64) bool {
	d := a - b
	return d <= tol && d >= -tol
}

func onGrid(deg, tol float64) bool {
	r := deg - float64(int(deg/graticuleStep))*graticuleStep
	return r <= tol || graticuleStep-r <= tol
}

func lerpRGB(a, b [3]byte, t float64) [3]byte {
	var c [3]byte
	for i := range c {
		c[i] = byte(float64(a[i]) + t*(float64(b[i])-float64(a[i])) + 0.5)
	}
	return c
}
