package geospatial

import (
	"math"

	"github.com/jortega/routesketch/internal/core/domain"
)

const earthRadiusMiles = 3958.7613

// DistanceMiles calculates the great-circle distance in miles between two
// points using the haversine formula.
func DistanceMiles(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// PathLengthMiles sums the haversine length of every leg of a coordinate
// sequence.
func PathLengthMiles(coords []domain.GeoPoint) float64 {
	var total float64
	for i := 0; i+1 < len(coords); i++ {
		total += DistanceMiles(coords[i], coords[i+1])
	}
	return total
}

// SamePointEpsilon is the coordinate tolerance, in degrees, below which two
// points are considered identical (sub-millimeter). Used to detect a closed
// gap during bulk edit and clicks landing on an existing marker.
const SamePointEpsilon = 1e-7

// SamePoint reports whether both coordinate axes of a and b differ by less
// than SamePointEpsilon.
func SamePoint(a, b domain.GeoPoint) bool {
	return math.Abs(a.Lat-b.Lat) < SamePointEpsilon &&
		math.Abs(a.Lon-b.Lon) < SamePointEpsilon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
