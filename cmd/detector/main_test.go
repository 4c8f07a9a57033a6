package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gustavocaldassouza/landmark-detector/internal/logging"
)

func TestLoadRegistryDefault(t *testing.T) {
	reg := loadRegistry(logging.Noop(), "")
	if reg.Len() != 5 {
		t.Errorf("default registry holds %d landmarks, want 5", reg.Len())
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landmarks.json")
	data := `[{"id": "tower", "name": "Tower", "latitude": 45.5, "longitude": -73.56,
		"height_meters": 50, "footprint_radius_meters": 20, "base_elevation_meters": 10}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := loadRegistry(logging.Noop(), path)
	if reg.Len() != 1 {
		t.Errorf("loaded registry holds %d landmarks, want 1", reg.Len())
	}
	if reg.Get("tower") == nil {
		t.Error("loaded registry missing tower")
	}
}
