package geo

import "math"

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

const earthRadiusMiles = 3958.7613

// DistanceMiles returns the great-circle distance between two points using
// the haversine formula. Accuracy is well within what "venues within N miles"
// needs; the catalogue is small enough to evaluate this in the query layer
// instead of requiring PostGIS.
func DistanceMiles(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
