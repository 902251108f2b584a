package replay

import "math"

//earthRadiusMeters is the mean Earth radius used by the Haversine formula
const earthRadiusMeters = 6371000.0

//distanceMeters calculates the great-circle distance between two pairs of
//decimal degree coordinates using the Haversine formula.
//returns distance in METERS, always >= 0 for finite inputs.
//coordinate validation is the caller's responsibility, NaN inputs propagate NaN
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLon := toRadians(lon2 - lon1)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

//headingDegrees calculates the great-circle initial bearing in degrees from
//the first coordinate towards the second, normalized to [0,360).
//the bearing is undefined when both coordinates are equal, callers must keep
//their previous heading in that case to avoid a discontinuity in the marker
func headingDegrees(fromLat, fromLon, toLat, toLon float64) float64 {
	fromLatRad := toRadians(fromLat)
	toLatRad := toRadians(toLat)
	deltaLon := toRadians(toLon - fromLon)

	y := math.Sin(deltaLon) * math.Cos(toLatRad)
	x := math.Cos(fromLatRad)*math.Sin(toLatRad) -
		math.Sin(fromLatRad)*math.Cos(toLatRad)*math.Cos(deltaLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
