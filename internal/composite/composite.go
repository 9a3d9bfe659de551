// Package composite manages node-owned nested sub-layouts: folders under
// groups/<name>/ holding an elements template plus folder-local geometry
// rows. Defaults are materialized lazily the first time a composite-owning
// node is parsed and never overwrite user edits.
package composite

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var folderNameRe = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_\-]{0,63}$`)

// ValidateFolderName checks a single composite folder-name token.
func ValidateFolderName(name string) error {
	if !folderNameRe.MatchString(name) {
		return fmt.Errorf("invalid composite folder name: %q", name)
	}
	return nil
}

// Dir returns the on-disk directory of a composite path (one or more nested
// folder tokens) under a presentation directory.
func Dir(presDir string, parts ...string) string {
	dir := filepath.Join(presDir, "groups")
	for _, p := range parts {
		dir = filepath.Join(dir, p)
	}
	return dir
}

// SplitPath splits a slash-separated composite path into validated folder
// tokens.
func SplitPath(compositePath string) ([]string, error) {
	raw := strings.ReplaceAll(compositePath, `\`, "/")
	var parts []string
	for _, p := range strings.Split(raw, "/") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := ValidateFolderName(p); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty composite path")
	}
	return parts, nil
}

// migrateLegacy moves a flat presentations/<pres>/<name>/ folder into
// groups/<name>/. A failed move is soft: defaults are regenerated instead.
func migrateLegacy(presDir, name, targetDir string) {
	legacyDir := filepath.Join(presDir, name)
	if fi, err := os.Stat(legacyDir); err != nil || !fi.IsDir() {
		return
	}
	if _, err := os.Stat(targetDir); err == nil {
		return
	}
	_ = os.Rename(legacyDir, targetDir)
}

// EnsureTimerDefaults creates the default timer composite under
// groups/<name>/ when any of its required files is missing. Existing files
// are never overwritten.
func EnsureTimerDefaults(presDir, name string) error {
	if err := ValidateFolderName(name); err != nil {
		return err
	}
	groupsDir := filepath.Join(presDir, "groups")
	if err := os.MkdirAll(groupsDir, 0755); err != nil {
		return err
	}

	timerDir := filepath.Join(groupsDir, name)
	migrateLegacy(presDir, name, timerDir)
	if err := os.MkdirAll(timerDir, 0755); err != nil {
		return err
	}

	elementsPath := filepath.Join(timerDir, "elements.txt")
	geometriesPath := filepath.Join(timerDir, "geometries.csv")
	animationsPath := filepath.Join(timerDir, "animations.csv")

	elements := "# timer composite elements (draft)\n" +
		"# Delete the whole `groups/<name>/` folder to regenerate defaults.\n" +
		"# Args passed to timer[...] can be used as {arg} placeholders here.\n" +
		"\n" +
		"# Default labels (editable in composite mode):\n" +
		"text[name=x_label]: Time (s)\n" +
		"text[name=y_label]: Procentage (%)\n" +
		"\n" +
		"# Stats label (auto-updated via {{...}} binding, editable/positionable):\n" +
		"text[name=stats]: $\\mu={{mean}}\\,\\mathrm{s}\\quad \\sigma={{sigma}}\\,\\mathrm{s}\\quad \\mathrm{count}={{count}}$\n" +
		"\n" +
		"# Default arrows (editable in composite mode):\n" +
		"arrow[name=x_axis,from=(0,0),to=(1.05,0),color=white,width=0.006]\n" +
		"arrow[name=y_axis,from=(0,0),to=(0,1.05),color=white,width=0.006]\n"

	geometries := "id,view,x,y,w,h,rotationDeg,anchor,align\n" +
		"x_label,timer,0.50,1.06,0.50,0.08,0,topCenter,center\n" +
		"y_label,timer,-0.15627517456611062,0.05482153612994739,0.40,0.08,-90,centerRight,center\n" +
		"stats,timer,0.5028738858079436,0.055646919385237144,0.70,0.08,0,topCenter,center\n" +
		"x_axis,timer,0,0,1,1,0,topLeft,\n" +
		"y_axis,timer,0,0,1,1,0,topLeft,\n"

	animations := "id,when,how,from,durationMs,delayMs\n"

	if !fileExists(elementsPath) {
		if err := os.WriteFile(elementsPath, []byte(elements), 0644); err != nil {
			return err
		}
	}
	if !fileExists(geometriesPath) {
		if err := os.WriteFile(geometriesPath, []byte(geometries), 0644); err != nil {
			return err
		}
	}
	if !fileExists(animationsPath) {
		if err := os.WriteFile(animationsPath, []byte(animations), 0644); err != nil {
			return err
		}
	}
	return nil
}

// EnsureChoicesDefaults creates the default choices composite: a top-level
// geometry splitting the box into bullets and wheel groups, plus nested
// bullets/ and wheel/ sub-folders with their own rows.
func EnsureChoicesDefaults(presDir, name string) error {
	if err := ValidateFolderName(name); err != nil {
		return err
	}
	compDir := filepath.Join(presDir, "groups", name)
	if err := os.MkdirAll(compDir, 0755); err != nil {
		return err
	}

	elementsPath := filepath.Join(compDir, "elements.txt")
	if !fileExists(elementsPath) {
		elements := "# choices composite elements (draft)\n" +
			"# This composite controls the internal layout of the choices node.\n" +
			"# Sub-ids used by the frontend: buttons, bullets, wheel\n"
		if err := os.WriteFile(elementsPath, []byte(elements), 0644); err != nil {
			return err
		}
	}

	// Folder nesting governs hierarchy: the top-level geometries.csv lays
	// out the child groups, each sub-folder lays out its own elements.
	bulletsDir := filepath.Join(compDir, "bullets")
	wheelDir := filepath.Join(compDir, "wheel")
	if err := os.MkdirAll(bulletsDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(wheelDir, 0755); err != nil {
		return err
	}

	geometriesPath := filepath.Join(compDir, "geometries.csv")
	if !fileExists(geometriesPath) {
		rows := "id,view,x,y,w,h,rotationDeg,anchor,align,parent\n" +
			"bullets,composite,0.00,0.00,0.46,1.00,0,topLeft,left,\n" +
			"wheel,composite,0.52,0.00,0.48,1.00,0,topLeft,center,\n"
		if err := os.WriteFile(geometriesPath, []byte(rows), 0644); err != nil {
			return err
		}
	}
	bulletsGeoms := filepath.Join(bulletsDir, "geometries.csv")
	if !fileExists(bulletsGeoms) {
		rows := "id,view,x,y,w,h,rotationDeg,anchor,align,parent\n" +
			"buttons,composite,0.50,-0.10,1.00,0.18,0,topCenter,center,\n" +
			"bullets,composite,0.00,0.00,1.00,1.00,0,topLeft,left,\n"
		if err := os.WriteFile(bulletsGeoms, []byte(rows), 0644); err != nil {
			return err
		}
	}
	wheelGeoms := filepath.Join(wheelDir, "geometries.csv")
	if !fileExists(wheelGeoms) {
		rows := "id,view,x,y,w,h,rotationDeg,anchor,align,parent\n" +
			"pie,composite,0.50,0.50,1.00,1.00,0,centerCenter,center,\n"
		if err := os.WriteFile(wheelGeoms, []byte(rows), 0644); err != nil {
			return err
		}
	}
	return nil
}

// ReadElements returns the composite's template text. elements.txt is the
// historical name; newer composites may use elements.pr.
func ReadElements(compDir string) (string, bool) {
	for _, base := range []string{"elements.txt", "elements.pr"} {
		data, err := os.ReadFile(filepath.Join(compDir, base))
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_]\w*)\}`)

// ExpandPlaceholders substitutes {identifier} tokens with values from args.
// Unmatched placeholders are left verbatim, which keeps live {{...}}
// bindings like {{mean}} intact as long as their keys are not node args.
func ExpandPlaceholders(template string, args map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := args[key]; ok {
			return v
		}
		return m
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
