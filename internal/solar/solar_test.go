package solar

import (
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	got := julianDate(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(got-j2000) > 1e-9 {
		t.Errorf("julianDate(J2000) = %v, want %v", got, j2000)
	}
}

func TestEquatorial(t *testing.T) {
	tests := []struct {
		name          string
		time          time.Time
		wantRA        float64
		wantDec       float64
		raTol, decTol float64
	}{
		{"march equinox", time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), 0, 0, 2, 1},
		{"june solstice", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), 90, 23.44, 2, 0.5},
		{"september equinox", time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC), 180, 0, 2, 1},
		{"december solstice", time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC), 270, -23.44, 2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, dec := Equatorial(tt.time)
			dRA := math.Abs(math.Remainder(ra-tt.wantRA, 360))
			if dRA > tt.raTol {
				t.Errorf("RA = %.3f, want %.1f ± %.1f", ra, tt.wantRA, tt.raTol)
			}
			if math.Abs(dec-tt.wantDec) > tt.decTol {
				t.Errorf("Dec = %.3f, want %.2f ± %.1f", dec, tt.wantDec, tt.decTol)
			}
		})
	}
}

func TestSubsolar(t *testing.T) {
	tests := []struct {
		name    string
		time    time.Time
		wantLon float64
		wantLat float64
	}{
		// Local noon is within a few degrees of the meridian all year.
		{"noon at greenwich", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), 0, 23.44},
		{"six hours later", time.Date(2024, 6, 21, 18, 0, 0, 0, time.UTC), -90, 23.4},
		{"midnight", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), -180, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat := Subsolar(tt.time)
			if lon < -180 || lon >= 180 {
				t.Fatalf("lon = %v outside [-180,180)", lon)
			}
			if d := math.Abs(math.Remainder(lon-tt.wantLon, 360)); d > 5 {
				t.Errorf("lon = %.2f, want %.0f ± 5", lon, tt.wantLon)
			}
			if math.Abs(lat-tt.wantLat) > 1 {
				t.Errorf("lat = %.2f, want %.2f ± 1", lat, tt.wantLat)
			}
		})
	}
}

func TestAnchor(t *testing.T) {
	a := Anchor(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))

	if a.U < 0 || a.U >= 1 || a.V < 0 || a.V >= 1 {
		t.Fatalf("anchor %v outside [0,1)", a)
	}
	// Near the prime meridian, north of the equator (upper half of the map).
	if math.Abs(a.U-0.5) > 0.015 {
		t.Errorf("U = %.4f, want about 0.5", a.U)
	}
	if want := (90 - 23.44) / 180; math.Abs(a.V-want) > 0.01 {
		t.Errorf("V = %.4f, want about %.4f", a.V, want)
	}
}
