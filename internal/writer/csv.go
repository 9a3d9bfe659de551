package writer

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/ivlev/prdeck/internal/scene"
)

// geometryColumns is the canonical (widest) column set. Readers tolerate
// missing trailing columns; the writer always emits all of them.
var geometryColumns = []string{
	"id", "view", "x", "y", "w", "h", "rotationDeg", "anchor", "align", "vAlign", "fontH", "parent",
}

// writeGeometriesCSV inverts the geometry resolver: root world transforms
// are re-normalized against the owning view's stored camera center and the
// design height, screen-space roots are divided without center subtraction,
// and parent-relative transforms are written as-is.
func writeGeometriesCSV(path string, pres *scene.Presentation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(geometryColumns); err != nil {
		return err
	}

	designH := pres.Defaults.DesignHeight
	if designH <= 0 {
		designH = 1080
	}

	nodeToView := make(map[string]string)
	viewCenter := make(map[string][2]float64)
	for _, v := range pres.Views {
		if v.Camera != nil {
			viewCenter[v.ID] = [2]float64{v.Camera.CX, v.Camera.CY}
		}
		for _, nid := range v.Show {
			if _, ok := nodeToView[nid]; !ok {
				nodeToView[nid] = v.ID
			}
		}
	}

	for _, n := range pres.Nodes {
		viewID, ok := nodeToView[n.ID]
		if !ok {
			viewID = "home"
		}
		t := n.Transform

		var xn, yn, wn, hn float64
		switch {
		case n.ParentID != "":
			// Parent-relative values are already normalized.
			xn, yn, wn, hn = t.X, t.Y, t.W, t.H
		case n.Space == scene.SpaceScreen:
			xn, yn = t.X/designH, t.Y/designH
			wn, hn = t.W/designH, t.H/designH
		default:
			center := viewCenter[viewID]
			xn, yn = (t.X-center[0])/designH, (t.Y-center[1])/designH
			wn, hn = t.W/designH, t.H/designH
		}

		rotation := ""
		if t.RotationDeg != 0 {
			rotation = formatNum(t.RotationDeg)
		}
		anchor := t.Anchor
		if anchor == "" {
			anchor = "topLeft"
		}
		fontH := ""
		if n.FontPx > 0 {
			fontH = formatNum(n.FontPx / designH)
		}

		rec := []string{
			n.ID, viewID,
			formatNum(xn), formatNum(yn), formatNum(wn), formatNum(hn),
			rotation, anchor, n.Align, n.VAlign, fontH, n.ParentID,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeAnimationsCSV inverts the animation resolver. Rows with no animation
// are omitted; a fade's border fraction is fused into the from column as
// "<direction>:<fraction>" unless it is the 0.2 default.
func writeAnimationsCSV(path string, pres *scene.Presentation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "when", "how", "from", "durationMs", "delayMs"}); err != nil {
		return err
	}

	emit := func(nodeID, when string, a *scene.Anim) error {
		if a == nil || a.Kind == "" || a.Kind == "none" {
			return nil
		}
		from := a.From
		if a.Kind == "fade" && from != "" && a.BorderFrac != nil {
			if math.Abs(*a.BorderFrac-0.2) > 1e-9 {
				from = from + ":" + formatNum(*a.BorderFrac)
			}
		}
		dur, delay := "", ""
		if a.DurationMs != 0 {
			dur = strconv.Itoa(a.DurationMs)
		}
		if a.DelayMs != 0 {
			delay = strconv.Itoa(a.DelayMs)
		}
		return w.Write([]string{nodeID, when, a.Kind, from, dur, delay})
	}

	for _, n := range pres.Nodes {
		if err := emit(n.ID, "enter", n.Appear); err != nil {
			return err
		}
		if err := emit(n.ID, "exit", n.Disappear); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
