package composite

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/prdeck/internal/scene"
)

// LoadGeometries reads a folder-local geometries.csv into normalized rows.
// A missing file yields an empty map; malformed rows are skipped. defW/defH
// supply the per-composite fallback box size.
func LoadGeometries(csvPath string, defW, defH float64) map[string]scene.CompositeGeometry {
	out := make(map[string]scene.CompositeGeometry)
	f, err := os.Open(csvPath)
	if err != nil {
		return out
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return out
	}

	cols := indexColumns(records[0])
	for _, rec := range records[1:] {
		id := strings.TrimSpace(field(rec, cols, "id"))
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		g := scene.CompositeGeometry{
			X:           numField(rec, cols, "x", 0),
			Y:           numField(rec, cols, "y", 0),
			W:           numField(rec, cols, "w", defW),
			H:           numField(rec, cols, "h", defH),
			RotationDeg: numField(rec, cols, "rotationDeg", 0),
			Anchor:      strings.TrimSpace(field(rec, cols, "anchor")),
			Align:       strings.TrimSpace(field(rec, cols, "align")),
			Parent:      strings.TrimSpace(field(rec, cols, "parent")),
		}
		if g.Anchor == "" {
			g.Anchor = "topLeft"
		}
		out[id] = g
	}
	return out
}

// Save writes a composite's folder-local geometry rows (and optionally its
// template files) under groups/<compositePath>/. This is the write half of
// the editor's composite mode.
func Save(presDir, compositePath string, geoms map[string]scene.CompositeGeometry, elementsTxt, elementsPr *string) error {
	parts, err := SplitPath(compositePath)
	if err != nil {
		return err
	}
	compDir := Dir(presDir, parts...)
	if err := os.MkdirAll(compDir, 0755); err != nil {
		return err
	}

	if elementsTxt != nil {
		if err := os.WriteFile(filepath.Join(compDir, "elements.txt"), []byte(*elementsTxt), 0644); err != nil {
			return err
		}
	}
	if elementsPr != nil {
		if err := os.WriteFile(filepath.Join(compDir, "elements.pr"), []byte(*elementsPr), 0644); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(compDir, "geometries.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "view", "x", "y", "w", "h", "rotationDeg", "anchor", "align", "parent"}); err != nil {
		return err
	}
	for _, id := range sortedKeys(geoms) {
		g := geoms[id]
		rec := []string{
			id, "composite",
			formatNum(g.X), formatNum(g.Y), formatNum(g.W), formatNum(g.H),
			formatNum(g.RotationDeg), g.Anchor, g.Align, g.Parent,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sortedKeys(m map[string]scene.CompositeGeometry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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
