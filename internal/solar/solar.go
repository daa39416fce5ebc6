// Package solar locates the subsolar point, the place on Earth where the
// Sun is directly overhead, so it can be used as an anchor.
package solar

import (
	"math"
	"time"

	"github.com/litescript/ls-greatcircle/internal/remap"
	"github.com/litescript/ls-greatcircle/internal/sphere"
)

const (
	j2000     = 2451545.0
	unixEpoch = 2440587.5 // Julian date of 1970-01-01T00:00Z
	deg       = math.Pi / 180
)

// julianDate returns the Julian date of t.
func julianDate(t time.Time) float64 {
	return float64(t.UnixNano())/(86400*1e9) + unixEpoch
}

// Equatorial returns the Sun's apparent right ascension and declination in
// degrees, from the low-precision almanac series (good to about 0.01°).
func Equatorial(t time.Time) (raDeg, decDeg float64) {
	T := (julianDate(t) - j2000) / 36525

	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := (357.52911 + 35999.05029*T - 0.0001537*T*T) * deg

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(M) +
		(0.019993-0.000101*T)*math.Sin(2*M) +
		0.000289*math.Sin(3*M)

	omega := (125.04 - 1934.136*T) * deg
	lambda := (L0 + C - 0.00569 - 0.00478*math.Sin(omega)) * deg

	eps := (23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T + 0.00256*math.Cos(omega)) * deg

	ra := math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))
	dec := math.Asin(math.Sin(eps) * math.Sin(lambda))
	return sphere.Wrap(ra/deg, 360), dec / deg
}

// SiderealDegrees returns Greenwich mean sidereal time in degrees (IAU 1982).
func SiderealDegrees(t time.Time) float64 {
	d := julianDate(t) - j2000
	T := d / 36525
	return sphere.Wrap(280.46061837+360.98564736629*d+0.000387933*T*T-T*T*T/38710000, 360)
}

// Subsolar returns the longitude (east, in [-180,180)) and latitude of the
// subsolar point at t.
func Subsolar(t time.Time) (lonDeg, latDeg float64) {
	ra, dec := Equatorial(t)
	lon := sphere.Wrap(ra-SiderealDegrees(t)+180, 360) - 180
	return lon, dec
}

// Anchor returns the subsolar point as a source-map anchor, with the top of
// the map at +90° latitude and the left edge at -180° longitude.
func Anchor(t time.Time) remap.Anchor {
	lon, lat := Subsolar(t)
	return remap.Anchor{
		U: sphere.Wrap((lon+180)/360, 1),
		V: sphere.Wrap((90-lat)/180, 1),
	}
}
