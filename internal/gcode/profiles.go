package gcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/RectFit/internal/model"
)

// LoadCustomProfiles loads controller profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GCodeProfile{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var profiles []model.GCodeProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	for i, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d has no name", i+1)
		}
	}
	return profiles, nil
}

// SaveCustomProfiles saves controller profiles to a JSON file, creating
// parent directories as needed.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveProfile returns the named profile, preferring custom profiles
// over the built-in ones. Unknown names resolve to the Generic profile.
func ResolveProfile(name string, custom []model.GCodeProfile) model.GCodeProfile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	return model.GetProfile(name)
}

// NewWithProfiles is New with custom profiles taking precedence.
func NewWithProfiles(settings model.CutSettings, custom []model.GCodeProfile) *Generator {
	return &Generator{
		Settings: settings,
		profile:  ResolveProfile(settings.GCodeProfile, custom),
	}
}
