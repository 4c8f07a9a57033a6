package model

// Detection is the result of scoring one landmark against the current
// observer state. A detection cycle produces a fresh list of these,
// ordered by descending confidence; the previous cycle's list is
// discarded wholesale.
type Detection struct {
	LandmarkID string `json:"landmark_id"`

	// Confidence in [0, 1]: how well bearing, elevation and distance
	// match the landmark's expected geometry.
	Confidence float64 `json:"confidence"`

	DistanceMeters float64 `json:"distance_meters"`

	// BearingDegrees is the compass bearing from the observer to the
	// landmark, [0, 360).
	BearingDegrees float64 `json:"bearing_degrees"`

	// ElevationAngleDegrees is the vertical angle from the observer's
	// eye point to the landmark's midpoint.
	ElevationAngleDegrees float64 `json:"elevation_angle_degrees"`

	BearingAccuracy   float64 `json:"bearing_accuracy"`
	ElevationAccuracy float64 `json:"elevation_accuracy"`
}
