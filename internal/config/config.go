package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// Defaults holds the presentation-level design frame and playback settings.
// All normalized units in the geometry overlay are expressed against
// DesignHeight.
type Defaults struct {
	DesignWidth      float64 `json:"designWidth" yaml:"designWidth"`
	DesignHeight     float64 `json:"designHeight" yaml:"designHeight"`
	ViewTransitionMs int     `json:"viewTransitionMs" yaml:"viewTransitionMs"`
	PixelateSteps    int     `json:"pixelateSteps" yaml:"pixelateSteps"`
}

// FallbackDefaults returns the hardcoded values used when defaults.json is
// absent or malformed.
func FallbackDefaults() Defaults {
	return Defaults{
		DesignWidth:      1920,
		DesignHeight:     1080,
		ViewTransitionMs: 4000,
		PixelateSteps:    20,
	}
}

// LoadDefaults reads defaults.json from a presentation directory. A missing
// or malformed file yields the fallback values; defaults.json is optional
// enrichment, never a fatal condition.
func LoadDefaults(presDir string) Defaults {
	d, _ := loadDefaultsFile(filepath.Join(presDir, "defaults.json"))
	return d
}

func loadDefaultsFile(path string) (Defaults, bool) {
	fallback := FallbackDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return fallback, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]json.Number
	if err := dec.Decode(&raw); err != nil {
		return fallback, false
	}

	out := fallback
	if v, err := raw["designWidth"].Float64(); err == nil && v > 0 {
		out.DesignWidth = v
	}
	if v, err := raw["designHeight"].Float64(); err == nil && v > 0 {
		out.DesignHeight = v
	}
	if v, err := raw["viewTransitionMs"].Float64(); err == nil && v >= 0 {
		out.ViewTransitionMs = int(v)
	}
	if v, err := raw["pixelateSteps"].Float64(); err == nil && v > 0 {
		out.PixelateSteps = int(v)
	}
	return out, true
}
