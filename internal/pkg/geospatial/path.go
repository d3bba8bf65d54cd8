package geospatial

import (
	"math"

	"github.com/jortega/routesketch/internal/core/domain"
)

// fallbackMaxSegments caps great-circle subdivision so a transcontinental
// leg does not produce an unbounded coordinate sequence.
const fallbackMaxSegments = 250

// FallbackPath synthesizes the line used when the directions provider is
// unavailable: a plain 2-point straight line when the endpoints are at most
// one mile apart, otherwise a great-circle line subdivided at roughly one
// sample per mile (capped) so long legs still render as a curve rather than
// a chord.
func FallbackPath(a, b domain.GeoPoint) []domain.GeoPoint {
	d := DistanceMiles(a, b)
	if d <= 1 {
		return []domain.GeoPoint{a, b}
	}

	segments := int(math.Ceil(d))
	if segments > fallbackMaxSegments {
		segments = fallbackMaxSegments
	}

	coords := make([]domain.GeoPoint, 0, segments+1)
	coords = append(coords, a)
	for i := 1; i < segments; i++ {
		coords = append(coords, Intermediate(a, b, float64(i)/float64(segments)))
	}
	coords = append(coords, b)
	return coords
}

// Intermediate returns the point at fraction f along the great circle from
// a to b (f=0 is a, f=1 is b).
func Intermediate(a, b domain.GeoPoint, f float64) domain.GeoPoint {
	lat1 := toRad(a.Lat)
	lon1 := toRad(a.Lon)
	lat2 := toRad(b.Lat)
	lon2 := toRad(b.Lon)

	d := 2 * math.Asin(math.Sqrt(
		math.Pow(math.Sin((lat1-lat2)/2), 2)+
			math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin((lon1-lon2)/2), 2)))
	if d == 0 {
		return a
	}

	pa := math.Sin((1-f)*d) / math.Sin(d)
	pb := math.Sin(f*d) / math.Sin(d)

	x := pa*math.Cos(lat1)*math.Cos(lon1) + pb*math.Cos(lat2)*math.Cos(lon2)
	y := pa*math.Cos(lat1)*math.Sin(lon1) + pb*math.Cos(lat2)*math.Sin(lon2)
	z := pa*math.Sin(lat1) + pb*math.Sin(lat2)

	return domain.GeoPoint{
		Lat: toDeg(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lon: toDeg(math.Atan2(y, x)),
	}
}
