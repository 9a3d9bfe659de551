// Package loader compiles one presentation directory (DSL file + geometry
// and animation overlays + composite folders) into a resolved scene graph.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/prdeck/internal/config"
	"github.com/ivlev/prdeck/internal/dsl"
	"github.com/ivlev/prdeck/internal/overlay"
	"github.com/ivlev/prdeck/internal/scene"
)

// DSLPath returns the presentation DSL file of a directory, preferring the
// newer .pr extension. The second result reports whether the file exists.
func DSLPath(presDir string) (string, bool) {
	prPath := filepath.Join(presDir, "presentation.pr")
	if _, err := os.Stat(prPath); err == nil {
		return prPath, true
	}
	txtPath := filepath.Join(presDir, "presentation.txt")
	if _, err := os.Stat(txtPath); err == nil {
		return txtPath, true
	}
	return prPath, false
}

// Load compiles a presentation directory into a scene graph. A missing DSL
// file yields an empty presentation; missing geometries.csv or
// animations.csv is fatal.
func Load(presDir string) (*scene.Presentation, error) {
	defaults := config.LoadDefaults(presDir)

	src := ""
	if path, ok := DSLPath(presDir); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		src = string(data)
	}

	geometriesPath := filepath.Join(presDir, "geometries.csv")
	animationsPath := filepath.Join(presDir, "animations.csv")
	if _, err := os.Stat(geometriesPath); err != nil {
		return nil, fmt.Errorf("missing geometries.csv at %s: %w", geometriesPath, err)
	}
	if _, err := os.Stat(animationsPath); err != nil {
		return nil, fmt.Errorf("missing animations.csv at %s: %w", animationsPath, err)
	}

	doc, err := dsl.Parse(src, dsl.Options{
		Dir:     presDir,
		DesignW: defaults.DesignWidth,
		DesignH: defaults.DesignHeight,
	})
	if err != nil {
		return nil, err
	}

	viewsByID := make(map[string]*scene.View, len(doc.Views))
	viewHint := make(map[string]string)
	for _, v := range doc.Views {
		if _, ok := viewsByID[v.ID]; !ok {
			viewsByID[v.ID] = v
		}
		for _, nid := range v.Show {
			if _, ok := viewHint[nid]; !ok {
				viewHint[nid] = v.ID
			}
		}
	}

	geometries, err := overlay.ParseGeometries(geometriesPath, viewsByID, viewHint, defaults)
	if err != nil {
		return nil, err
	}
	animations, cues, err := overlay.ParseAnimations(animationsPath)
	if err != nil {
		return nil, err
	}

	for _, n := range doc.Nodes {
		if g, ok := geometries[n.ID]; ok {
			n.Space = g.Space
			n.Transform = g.Transform
			n.ParentID = g.ParentID
			if g.Align != "" {
				n.Align = g.Align
			}
			if g.VAlign != "" {
				n.VAlign = g.VAlign
			}
			if g.FontPx != nil {
				n.FontPx = *g.FontPx
			}
		} else {
			n.Transform = overlay.DefaultTransform(n.Type, n.Space)
		}
		if a, ok := animations[n.ID]; ok {
			n.Appear = a.Appear
			n.Disappear = a.Disappear
		}
	}

	applyInitialVisibility(doc)

	id := filepath.Base(filepath.Clean(presDir))
	if id == "." || id == string(filepath.Separator) || id == "" {
		id = "default"
	}
	return &scene.Presentation{
		ID:            id,
		InitialViewID: doc.InitialViewID,
		Views:         doc.Views,
		Nodes:         doc.Nodes,
		AnimationCues: cues,
		Defaults:      defaults,
	}, nil
}

// applyInitialVisibility marks which nodes the renderer shows before any
// navigation: screen-space nodes behave like an always-on overlay layer,
// world-space nodes are visible iff the initial view shows them.
func applyInitialVisibility(doc *dsl.Document) {
	show := make(map[string]bool)
	for _, v := range doc.Views {
		if v.ID == doc.InitialViewID {
			for _, nid := range v.Show {
				show[nid] = true
			}
			break
		}
	}
	for _, n := range doc.Nodes {
		if n.Space == scene.SpaceScreen {
			n.Visible = true
			continue
		}
		n.Visible = show[n.ID]
	}
}

// LoadAll compiles every presentation directory under root with a bounded
// worker group. A directory counts as a presentation when it holds a DSL
// file or a geometries.csv. The first failing directory aborts the batch.
func LoadAll(root string, workers int) (map[string]*scene.Presentation, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	var mu sync.Mutex
	out := make(map[string]*scene.Presentation)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if !looksLikePresentation(dir) {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			pres, err := Load(dir)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			out[name] = pres
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func looksLikePresentation(dir string) bool {
	if _, ok := DSLPath(dir); ok {
		return true
	}
	_, err := os.Stat(filepath.Join(dir, "geometries.csv"))
	return err == nil
}
