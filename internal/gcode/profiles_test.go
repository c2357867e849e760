package gcode

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/RectFit/internal/model"
)

func TestCustomProfiles_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profiles.json")
	custom := []model.GCodeProfile{{
		Name:          "Shop",
		RapidMove:     "G0",
		FeedMove:      "G1",
		CommentPrefix: ";",
		DecimalPlaces: 2,
		EndCode:       []string{"M30"},
	}}

	if err := SaveCustomProfiles(path, custom); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}
	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Shop" || loaded[0].DecimalPlaces != 2 {
		t.Errorf("unexpected profiles %+v", loaded)
	}
}

func TestLoadCustomProfiles_Missing(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Errorf("expected empty slice, got %v", profiles)
	}
}

func TestResolveProfile(t *testing.T) {
	custom := []model.GCodeProfile{{Name: "Grbl", DecimalPlaces: 1}}
	if got := ResolveProfile("Grbl", custom); got.DecimalPlaces != 1 {
		t.Error("custom profile should shadow the built-in one")
	}
	if got := ResolveProfile("LinuxCNC", custom); got.Name != "LinuxCNC" {
		t.Errorf("expected built-in LinuxCNC, got %q", got.Name)
	}
	if got := ResolveProfile("nope", nil); got.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %q", got.Name)
	}
}

func TestNewWithProfiles(t *testing.T) {
	s := newTestSettings()
	s.GCodeProfile = "Shop"
	custom := []model.GCodeProfile{{Name: "Shop", RapidMove: "G0", FeedMove: "G1", CommentPrefix: "%", DecimalPlaces: 1}}
	code := NewWithProfiles(s, custom).Generate("A", newTestRectangle())
	if !strings.Contains(code, "% RectFit GCode - A") || !strings.Contains(code, "X-3.0 Y-3.0") {
		t.Errorf("custom profile not applied:\n%s", code)
	}
}
