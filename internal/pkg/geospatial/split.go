package geospatial

import "github.com/jortega/routesketch/internal/core/domain"

// SplitAtPoint splits a polyline at the segment geometrically closest to p,
// inserting p as the shared endpoint of both halves.
//
// Segments are scanned in reverse draw order with a strict-less comparison,
// so when two segments are equidistant (a polyline overlapping itself,
// which only imported geometry can produce) the segment later in draw order
// wins. Generic line-split operations are avoided on purpose: they are
// documented to misbehave on self-intersecting or duplicate-point input,
// while a plain segment-distance scan is robust to both.
func SplitAtPoint(coords []domain.GeoPoint, p domain.GeoPoint) (left, right []domain.GeoPoint) {
	if len(coords) < 2 {
		left = append(left, coords...)
		left = append(left, p)
		return left, []domain.GeoPoint{p}
	}

	best := len(coords) - 2
	bestDist := pointToSegmentSq(p, coords[best], coords[best+1])
	for i := len(coords) - 3; i >= 0; i-- {
		if d := pointToSegmentSq(p, coords[i], coords[i+1]); d < bestDist {
			best = i
			bestDist = d
		}
	}

	left = make([]domain.GeoPoint, 0, best+2)
	left = append(left, coords[:best+1]...)
	left = append(left, p)

	right = make([]domain.GeoPoint, 0, len(coords)-best)
	right = append(right, p)
	right = append(right, coords[best+1:]...)
	return left, right
}

// pointToSegmentSq returns the squared distance, in degree space, from p to
// the segment ab. Degree space is adequate here: the scan only compares
// candidate segments of one line against each other at click scale.
func pointToSegmentSq(p, a, b domain.GeoPoint) float64 {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		px := p.Lon - a.Lon
		py := p.Lat - a.Lat
		return px*px + py*py
	}

	t := ((p.Lon-a.Lon)*dx + (p.Lat-a.Lat)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	cx := a.Lon + t*dx - p.Lon
	cy := a.Lat + t*dy - p.Lat
	return cx*cx + cy*cy
}
