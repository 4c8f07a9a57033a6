package core

import (
	"math"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// EarthRadiusM is the mean Earth radius used for all geodesy
// calculations in the detector (metres).
const EarthRadiusM = 6371000.0

// ObserverEyeHeightM is added to the observer's GPS altitude so
// elevation angles are measured from eye level rather than the ground.
const ObserverEyeHeightM = 1.7

// LatLon is a geographic coordinate in degrees.
type LatLon struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle (haversine) distance in metres
// between two points. Accurate to well within GPS error at the ranges
// the detector cares about (tens of kilometres).
func Distance(a, b LatLon) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal points, which
	// would make Sqrt(1-h) NaN.
	if h > 1 {
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// Bearing returns the initial bearing in degrees [0, 360) along the
// great circle from one point to another. 0 = north, 90 = east,
// matching the convention of the orientation source.
func Bearing(from, to LatLon) float64 {
	lat1 := radians(from.Latitude)
	lat2 := radians(to.Latitude)
	dLon := radians(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return NormalizeBearing(degrees(math.Atan2(y, x)))
}

// AngularDifference returns the shortest separation between two angles
// on a circle, in degrees [0, 180].
func AngularDifference(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// NormalizeBearing maps an angle in degrees onto [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ElevationAngle returns the angle above horizontal, in degrees, from
// the observer's eye point to the landmark's vertical midpoint. A
// flat-earth approximation is fine at these ranges; no curvature or
// refraction correction is applied.
func ElevationAngle(observerAltitudeM float64, landmark *model.Landmark, distanceM float64) float64 {
	eyeAltitude := observerAltitudeM + ObserverEyeHeightM
	rise := landmark.MidHeightMeters() - eyeAltitude
	return degrees(math.Atan2(rise, distanceM))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
