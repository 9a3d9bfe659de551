// Package snapshot persists a resolved scene graph as a standalone YAML
// file, for feeding the renderer directly or for inspecting what the
// compiler produced.
package snapshot

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/prdeck/internal/scene"
)

// Write writes a resolved scene graph to a YAML file.
func Write(pres *scene.Presentation, path string) error {
	data, err := yaml.Marshal(pres)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read reads a scene graph back from a YAML file.
func Read(path string) (*scene.Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pres scene.Presentation
	if err := yaml.Unmarshal(data, &pres); err != nil {
		return nil, err
	}
	return &pres, nil
}
