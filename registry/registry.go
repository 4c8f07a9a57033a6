package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gustavocaldassouza/landmark-detector/model"
)

// Registry is an in-memory, thread-safe store of landmark records.
// Landmarks are added once at startup and are immutable afterwards;
// List preserves insertion order so detection output is stable.
type Registry struct {
	mu sync.RWMutex

	byID  map[string]*model.Landmark
	order []*model.Landmark
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		byID: make(map[string]*model.Landmark),
	}
}

// Add validates and stores a landmark. It returns an error if the ID
// already exists or the record violates its invariants.
func (r *Registry) Add(l *model.Landmark) error {
	if l == nil {
		return fmt.Errorf("nil landmark")
	}
	if err := l.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[l.ID]; exists {
		return fmt.Errorf("landmark with ID %q already exists", l.ID)
	}
	r.byID[l.ID] = l
	r.order = append(r.order, l)
	return nil
}

// Get returns the landmark with the given ID, or nil if not found.
func (r *Registry) Get(id string) *model.Landmark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// List returns a snapshot slice of all landmarks in insertion order.
func (r *Registry) List() []*model.Landmark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.Landmark, len(r.order))
	copy(res, r.order)
	return res
}

// Len returns the number of registered landmarks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// LoadFile reads a JSON array of landmarks and adds each to the
// registry. The first invalid or duplicate record aborts the load.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read landmark file %q: %w", path, err)
	}

	var landmarks []*model.Landmark
	if err := json.Unmarshal(data, &landmarks); err != nil {
		return fmt.Errorf("parse landmark file %q: %w", path, err)
	}

	for _, l := range landmarks {
		if err := r.Add(l); err != nil {
			return fmt.Errorf("load landmark file %q: %w", path, err)
		}
	}
	return nil
}

// Default returns a registry pre-loaded with the Montreal monuments
// the detector was originally built around. Heights and base
// elevations are approximate but good enough for elevation matching
// at street-level ranges.
func Default() *Registry {
	r := New()
	for _, l := range []*model.Landmark{
		{
			ID:                    "notre_dame_basilica",
			Name:                  "Notre-Dame Basilica",
			Latitude:              45.5045,
			Longitude:             -73.5563,
			HeightMeters:          69,
			FootprintRadiusMeters: 40,
			BaseElevationMeters:   20,
		},
		{
			ID:                    "olympic_stadium_tower",
			Name:                  "Olympic Stadium Tower",
			Latitude:              45.5598,
			Longitude:             -73.5517,
			HeightMeters:          165,
			FootprintRadiusMeters: 100,
			BaseElevationMeters:   25,
		},
		{
			ID:                    "mount_royal_cross",
			Name:                  "Mount Royal Cross",
			Latitude:              45.5063,
			Longitude:             -73.5878,
			HeightMeters:          31.4,
			FootprintRadiusMeters: 10,
			BaseElevationMeters:   233,
		},
		{
			ID:                    "old_port_clock_tower",
			Name:                  "Old Port Clock Tower",
			Latitude:              45.5090,
			Longitude:             -73.5504,
			HeightMeters:          45,
			FootprintRadiusMeters: 10,
			BaseElevationMeters:   15,
		},
		{
			ID:                    "saint_josephs_oratory",
			Name:                  "Saint Joseph's Oratory",
			Latitude:              45.4920,
			Longitude:             -73.6177,
			HeightMeters:          97,
			FootprintRadiusMeters: 80,
			BaseElevationMeters:   160,
		},
	} {
		// The built-in table is known-valid; Add can only fail on a
		// programming error here.
		if err := r.Add(l); err != nil {
			panic(err)
		}
	}
	return r
}
