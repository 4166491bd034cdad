package overpass

import "math"

// earthRadius is the WGS-84 semi-major axis used by Web Mercator (EPSG:3857).
const earthRadius = 6378137.0

// maxMercatorLat keeps the projection finite near the poles.
const maxMercatorLat = 85.05112878

type point struct{ x, y float64 }

// project converts a WGS-84 coordinate to Web Mercator meters.
func project(lat, lon float64) point {
	lat = math.Max(-maxMercatorLat, math.Min(lat, maxMercatorLat))
	phi := lat * math.Pi / 180
	return point{
		x: earthRadius * lon * math.Pi / 180,
		y: earthRadius * math.Log(math.Tan(math.Pi/4+phi/2)),
	}
}

func dist(a, b point) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

// segmentDistance is the planar distance from p to the segment ab.
func segmentDistance(p, a, b point) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.x-a.x)*dx + (p.y-a.y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, point{a.x + t*dx, a.y + t*dy})
}

// polylineDistance is the distance from p to the nearest vertex or edge.
func polylineDistance(p point, line []point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return dist(p, line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		best = math.Min(best, segmentDistance(p, line[i-1], line[i]))
	}
	return best
}

// closed reports whether a ring returns to its first vertex.
func closed(ring []point) bool {
	return len(ring) >= 4 && ring[0] == ring[len(ring)-1]
}

// contains is an even-odd ray cast against a closed ring.
func contains(ring []point, p point) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.y > p.y) != (b.y > p.y) && p.x < (b.x-a.x)*(p.y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}
