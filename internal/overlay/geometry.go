// Package overlay resolves the tabular geometry and animation files that
// accompany the DSL: per-node transforms in view-relative units and
// enter/exit animation cues.
package overlay

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/prdeck/internal/config"
	"github.com/ivlev/prdeck/internal/scene"
)

// Geometry is one resolved geometries.csv row. For a root node the
// transform is world pixels; for a row with a parent it holds the stored
// normalized units untouched.
type Geometry struct {
	Space     scene.Space
	View      string
	Transform scene.Transform
	ParentID  string
	Align     string
	VAlign    string
	FontPx    *float64
}

// ParseGeometries reads geometries.csv and converts each root row from
// view-relative normalized units to world pixels:
//
//	world = viewCenter + normalized * designHeight  (x, y)
//	world = normalized * designHeight               (w, h)
//
// viewHint maps a node id to the view whose show list first referenced it,
// used when the row leaves the view column empty. The column set has grown
// over time; columns are resolved by header name and missing trailing
// columns are tolerated.
func ParseGeometries(path string, viewsByID map[string]*scene.View, viewHint map[string]string, defaults config.Defaults) (map[string]Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return map[string]Geometry{}, nil
	}

	cols := indexColumns(records[0])
	out := make(map[string]Geometry)
	for _, rec := range records[1:] {
		id := strings.TrimSpace(field(rec, cols, "id"))
		if id == "" {
			continue
		}

		viewID := strings.TrimSpace(field(rec, cols, "view"))
		if viewID == "" {
			viewID = viewHint[id]
		}
		if viewID == "" {
			viewID = "home"
		}
		view := viewsByID[viewID]
		if view == nil {
			view = viewsByID["home"]
		}
		cam := scene.OriginCamera()
		isScreenView := false
		if view != nil {
			isScreenView = view.Screen
			if view.Camera != nil {
				cam = *view.Camera
			}
		}

		xn := numField(rec, cols, "x", 0)
		yn := numField(rec, cols, "y", 0)
		wn := numField(rec, cols, "w", 0.2)
		hn := numField(rec, cols, "h", 0.1)
		parentID := strings.TrimSpace(field(rec, cols, "parent"))

		var t scene.Transform
		if parentID != "" {
			// Parent-relative rows stay in normalized units; the renderer
			// resolves them against the parent box.
			t = scene.Transform{X: xn, Y: yn, W: wn, H: hn}
		} else {
			designH := defaults.DesignHeight
			t = scene.Transform{
				X: cam.CX + xn*designH,
				Y: cam.CY + yn*designH,
				W: wn * designH,
				H: hn * designH,
			}
		}
		if rot := strings.TrimSpace(field(rec, cols, "rotationDeg")); rot != "" {
			if v, err := strconv.ParseFloat(rot, 64); err == nil {
				t.RotationDeg = v
			}
		}
		if anchor := strings.TrimSpace(field(rec, cols, "anchor")); anchor != "" {
			t.Anchor = anchor
		}

		g := Geometry{
			View:      viewID,
			Space:     scene.SpaceWorld,
			Transform: t,
			ParentID:  parentID,
			Align:     strings.TrimSpace(field(rec, cols, "align")),
			VAlign:    strings.TrimSpace(firstNonEmpty(field(rec, cols, "vAlign"), field(rec, cols, "valign"))),
		}
		if isScreenView {
			g.Space = scene.SpaceScreen
		}
		if fontH := numField(rec, cols, "fontH", -1); fontH >= 0 {
			px := fontH * defaults.DesignHeight
			g.FontPx = &px
		}
		out[id] = g
	}
	return out, nil
}

// DefaultTransform returns the fallback box for a node with no geometry row.
func DefaultTransform(nodeType scene.NodeType, space scene.Space) scene.Transform {
	switch {
	case space == scene.SpaceScreen:
		return scene.Transform{X: 16, Y: 16, W: 220, H: 90, Anchor: "topLeft"}
	case nodeType == scene.TypeText:
		return scene.Transform{X: 24, Y: 18, W: 900, H: 60, Anchor: "topLeft"}
	case nodeType == scene.TypeQR:
		return scene.Transform{X: 0, Y: 0, W: 280, H: 280, Anchor: "center"}
	default:
		return scene.Transform{X: 0, Y: 0, W: 100, H: 50, Anchor: "topLeft"}
	}
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func numField(rec []string, cols map[string]int, name string, def float64) float64 {
	raw := strings.TrimSpace(field(rec, cols, name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
