// Package geodesy provides great-circle distance math over (lon, lat)
// coordinates expressed as geom.Coord values.
package geodesy

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusKM is the equatorial radius used for haversine distances.
const EarthRadiusKM = 6378.139

// Distance returns the haversine great-circle distance between two
// (lon, lat) points in kilometres.
func Distance(a, b geom.Coord) float64 {
	latA := radians(a[1])
	latB := radians(b[1])
	dLat := radians(b[1] - a[1])
	dLon := radians(b[0] - a[0])

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(latA)*math.Cos(latB)*math.Pow(math.Sin(dLon/2), 2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistancesTo returns the distance from target to each point, preserving
// order.
func DistancesTo(target geom.Coord, points []geom.Coord) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = Distance(target, p)
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
