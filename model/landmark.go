package model

import "fmt"

// Landmark describes one fixed physical structure the detector can
// recognise. Records are created once at startup and never mutated.
type Landmark struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// HeightMeters is the height of the structure above its own base.
	HeightMeters float64 `json:"height_meters"`

	// FootprintRadiusMeters is the approximate horizontal extent of the
	// structure, used to scale distance-based scoring.
	FootprintRadiusMeters float64 `json:"footprint_radius_meters"`

	// BaseElevationMeters is the elevation of the structure's base above
	// sea level.
	BaseElevationMeters float64 `json:"base_elevation_meters"`
}

// Validate checks the landmark's invariants: coordinates in range and
// all vertical/horizontal extents non-negative.
func (l *Landmark) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("landmark has empty ID")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("landmark %q: latitude %v out of range [-90, 90]", l.ID, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("landmark %q: longitude %v out of range [-180, 180]", l.ID, l.Longitude)
	}
	if l.HeightMeters < 0 {
		return fmt.Errorf("landmark %q: negative height %v", l.ID, l.HeightMeters)
	}
	if l.FootprintRadiusMeters < 0 {
		return fmt.Errorf("landmark %q: negative footprint radius %v", l.ID, l.FootprintRadiusMeters)
	}
	if l.BaseElevationMeters < 0 {
		return fmt.Errorf("landmark %q: negative base elevation %v", l.ID, l.BaseElevationMeters)
	}
	return nil
}

// MidHeightMeters returns the elevation of the structure's vertical
// midpoint above sea level, the aim point for elevation matching.
func (l *Landmark) MidHeightMeters() float64 {
	return l.BaseElevationMeters + l.HeightMeters/2
}
