package domain

import "math"

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

// Point is a geographic coordinate in degrees.
type Point struct {
	// Lat is the latitude in degrees, positive north.
	Lat float64 `json:"lat"`
	// Long is the longitude in degrees, positive east.
	Long float64 `json:"long"`
}

// Ring is a closed sequence of vertices. The closing vertex may be repeated
// or omitted; containment treats the ring as implicitly closed.
type Ring []Point

// Polygon is an exterior ring with optional interior holes.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// Boundary is a named administrative region made of one or more polygons.
type Boundary struct {
	// Name is the region name attribute, e.g. "Nairobi County".
	Name string
	// Polygons are the region's parts (a MultiPolygon collapses here).
	Polygons []Polygon
}

// HaversineKm returns the great-circle distance between two points in
// kilometers. Inputs are geographic degrees, so planar distance would be
// wrong at these scales.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLong := (b.Long - a.Long) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLong/2)*math.Sin(dLong/2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Contains reports whether the point lies inside the polygon: within the
// exterior ring and outside every hole. Points exactly on an edge may
// resolve either way.
func (p Polygon) Contains(pt Point) bool {
	if !p.Exterior.contains(pt) {
		return false
	}
	for _, hole := range p.Holes {
		if hole.contains(pt) {
			return false
		}
	}
	return true
}

// Contains reports whether the point lies inside any of the boundary's
// polygons.
func (b Boundary) Contains(pt Point) bool {
	for _, poly := range b.Polygons {
		if poly.Contains(pt) {
			return true
		}
	}
	return false
}

// contains implements even-odd ray casting on the (long, lat) plane.
func (r Ring) contains(pt Point) bool {
	if len(r) < 3 {
		return false
	}

	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		xi, yi := r[i].Long, r[i].Lat
		xj, yj := r[j].Long, r[j].Lat

		if (yi > pt.Lat) != (yj > pt.Lat) &&
			pt.Long < (xj-xi)*(pt.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
