package model

// Position is a GPS fix for the observer. AccuracyMeters is the
// reported horizontal accuracy; zero means the provider did not report
// one.
type Position struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AltitudeMeters float64 `json:"altitude_meters"`
	AccuracyMeters float64 `json:"accuracy_meters,omitempty"`
}

// Orientation is one device attitude sample. Heading is degrees
// clockwise from north in [0, 360), pitch in [-90, 90], roll in
// [-180, 180].
type Orientation struct {
	HeadingDegrees float64 `json:"heading_degrees"`
	PitchDegrees   float64 `json:"pitch_degrees"`
	RollDegrees    float64 `json:"roll_degrees"`
}
