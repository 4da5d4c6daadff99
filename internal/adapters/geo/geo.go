// Package geo provides the distance, azimuth and coordinate text used by
// the place panel.
package geo

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const earthRadius = 6378137.0

// Geodesy implements domain.Geodesy on a spherical earth.
type Geodesy struct {
	p *message.Printer
}

func New(lang string) *Geodesy {
	tag := language.English
	if lang != "" {
		if t, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
			tag = t
		}
	}
	return &Geodesy{p: message.NewPrinter(tag)}
}

// DistanceAndAzimuth measures from (fromLat, fromLon) to (lat, lon). The
// azimuth is in radians relative to north; it is negative when north is
// unknown (negative) or both points coincide.
func (g *Geodesy) DistanceAndAzimuth(lat, lon, fromLat, fromLon, north float64) (string, float64) {
	d := Distance(fromLat, fromLon, lat, lon)
	text := g.FormatDistance(d)
	if north < 0 || d < 1 {
		return text, -1
	}
	az := Bearing(fromLat, fromLon, lat, lon) - north
	az = math.Mod(az, 2*math.Pi)
	if az < 0 {
		az += 2 * math.Pi
	}
	return text, az
}

// Distance is the haversine distance in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := rad(lat1), rad(lat2)
	dp, dl := rad(lat2-lat1), rad(lon2-lon1)
	a := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Bearing is the initial course from point 1 to point 2 in radians [0, 2π).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := rad(lat1), rad(lat2)
	dl := rad(lon2 - lon1)
	y := math.Sin(dl) * math.Cos(p2)
	x := math.Cos(p1)*math.Sin(p2) - math.Sin(p1)*math.Cos(p2)*math.Cos(dl)
	b := math.Atan2(y, x)
	if b < 0 {
		b += 2 * math.Pi
	}
	return b
}

func (g *Geodesy) FormatDistance(m float64) string {
	switch {
	case m < 1000:
		return g.p.Sprintf("%d m", int(math.Round(m)))
	case m < 10000:
		return g.p.Sprintf("%.1f km", m/1000)
	default:
		return g.p.Sprintf("%d km", int(math.Round(m/1000)))
	}
}

// FormatLatLon returns decimal degrees, or degrees-minutes-seconds with a
// hemisphere letter when dms is set.
func (g *Geodesy) FormatLatLon(lat, lon float64, dms bool) (string, string) {
	if !dms {
		return fmt.Sprintf("%.6f", lat), fmt.Sprintf("%.6f", lon)
	}
	return toDMS(lat, "N", "S"), toDMS(lon, "E", "W")
}

func (g *Geodesy) FormatAltitude(meters float64) string {
	return g.p.Sprintf("%d m", int(math.Round(meters)))
}

// FormatSpeed takes meters per second and prints km/h.
func (g *Geodesy) FormatSpeed(mps float64) string {
	return g.p.Sprintf("%d km/h", int(math.Round(mps*3.6)))
}

func toDMS(v float64, pos, neg string) string {
	hemi := pos
	if v < 0 {
		hemi, v = neg, -v
	}
	deg := math.Floor(v)
	min := math.Floor((v - deg) * 60)
	sec := (v - deg - min/60) * 3600
	if sec >= 59.995 {
		sec = 0
		min++
	}
	if min >= 60 {
		min = 0
		deg++
	}
	return fmt.Sprintf("%d°%02d′%05.2f″%s", int(deg), int(min), sec, hemi)
}

func rad(d float64) float64 { return d * math.Pi / 180 }
