package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/prdeck/internal/scene"
)

func writePresentation(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	return dir
}

const sampleDSL = "view[name=home]:\n" +
	"text[name=t1]: Hello\n" +
	"view[name=v2,refView=home,loc=right]:\n" +
	"qr[name=q1]\n" +
	"screen[name=hud]:\n" +
	"text[name=clock]: 12:00\n"

func TestLoad(t *testing.T) {
	dir := writePresentation(t, map[string]string{
		"presentation.pr": sampleDSL,
		"geometries.csv": "id,view,x,y,w,h\n" +
			"t1,home,0,0,0.1,0.05\n" +
			"q1,v2,0,0,0.3,0.3\n",
		"animations.csv": "id,when,how,durationMs\n" +
			"t1,enter,fade,400\n" +
			"q1,exit,sudden,\n",
	})

	pres, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if pres.InitialViewID != "home" {
		t.Errorf("initial view = %q", pres.InitialViewID)
	}
	if len(pres.Views) != 3 || len(pres.Nodes) != 3 {
		t.Fatalf("views = %d, nodes = %d", len(pres.Views), len(pres.Nodes))
	}

	t1 := pres.NodeByID("t1")
	if t1.Transform.X != 0 || t1.Transform.Y != 0 || t1.Transform.W != 108 || t1.Transform.H != 54 {
		t.Errorf("t1 transform = %+v", t1.Transform)
	}
	if t1.Appear == nil || t1.Appear.Kind != "fade" || t1.Appear.DurationMs != 400 {
		t.Errorf("t1 appear = %+v", t1.Appear)
	}

	// q1 lives one camera width to the right of home.
	q1 := pres.NodeByID("q1")
	if q1.Transform.X != 1920 || q1.Transform.W != 324 {
		t.Errorf("q1 transform = %+v", q1.Transform)
	}
	if q1.Disappear == nil || q1.Disappear.Kind != "sudden" {
		t.Errorf("q1 disappear = %+v", q1.Disappear)
	}

	// Visibility: initial view shows t1; q1 belongs to v2; screen nodes are
	// always on.
	if !t1.Visible {
		t.Error("t1 should be visible initially")
	}
	if q1.Visible {
		t.Error("q1 should be hidden initially")
	}
	clock := pres.NodeByID("clock")
	if !clock.Visible || clock.Space != scene.SpaceScreen {
		t.Errorf("clock = visible %v, space %q", clock.Visible, clock.Space)
	}

	// A node with no geometry row gets a type default.
	if clock.Transform.W != 220 {
		t.Errorf("clock transform = %+v", clock.Transform)
	}

	if len(pres.AnimationCues) != 2 || pres.AnimationCues[0].ID != "t1" || pres.AnimationCues[1].When != "exit" {
		t.Errorf("cues = %+v", pres.AnimationCues)
	}
	if pres.ID != filepath.Base(dir) {
		t.Errorf("presentation id = %q", pres.ID)
	}
}

func TestLoadMissingDSLYieldsEmptyPresentation(t *testing.T) {
	dir := writePresentation(t, map[string]string{
		"geometries.csv": "id,view,x,y,w,h\n",
		"animations.csv": "id,when,how\n",
	})
	pres, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(pres.Nodes) != 0 {
		t.Errorf("nodes = %+v", pres.Nodes)
	}
	if len(pres.Views) != 1 || pres.Views[0].ID != "home" {
		t.Errorf("views = %+v", pres.Views)
	}
}

func TestLoadMissingOverlaysIsFatal(t *testing.T) {
	dir := writePresentation(t, map[string]string{
		"presentation.pr": sampleDSL,
		"animations.csv":  "id,when,how\n",
	})
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "geometries.csv") {
		t.Errorf("missing geometries.csv: %v", err)
	}

	dir2 := writePresentation(t, map[string]string{
		"presentation.pr": sampleDSL,
		"geometries.csv":  "id,view,x,y,w,h\n",
	})
	if _, err := Load(dir2); err == nil || !strings.Contains(err.Error(), "animations.csv") {
		t.Errorf("missing animations.csv: %v", err)
	}
}

func TestLoadHonorsDefaultsJSON(t *testing.T) {
	dir := writePresentation(t, map[string]string{
		"presentation.pr": "view[name=home]:\ntext[name=t1]: x\n",
		"geometries.csv":  "id,view,x,y,w,h\nt1,home,0,0,0.1,0.05\n",
		"animations.csv":  "id,when,how\n",
		"defaults.json":   `{"designWidth": 1000, "designHeight": 1000}`,
	})
	pres, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tr := pres.NodeByID("t1").Transform
	if tr.W != 100 || tr.H != 50 {
		t.Errorf("transform = %+v", tr)
	}
	if pres.Defaults.DesignHeight != 1000 {
		t.Errorf("defaults = %+v", pres.Defaults)
	}
}

func TestDSLPathPrefersPr(t *testing.T) {
	dir := t.TempDir()
	if _, ok := DSLPath(dir); ok {
		t.Error("empty dir should report no DSL file")
	}
	txt := filepath.Join(dir, "presentation.txt")
	if err := os.WriteFile(txt, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if path, ok := DSLPath(dir); !ok || path != txt {
		t.Errorf("path = %q, ok = %v", path, ok)
	}
	pr := filepath.Join(dir, "presentation.pr")
	if err := os.WriteFile(pr, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if path, _ := DSLPath(dir); path != pr {
		t.Errorf("presentation.pr should win, got %q", path)
	}
}

func TestLoadAll(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"alpha", "beta"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		files := map[string]string{
			"presentation.pr": "view[name=home]:\ntext[name=t1]: hi\n",
			"geometries.csv":  "id,view,x,y,w,h\n",
			"animations.csv":  "id,when,how\n",
		}
		for base, content := range files {
			if err := os.WriteFile(filepath.Join(dir, base), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	// A directory without presentation files is skipped.
	if err := os.MkdirAll(filepath.Join(root, "media"), 0o755); err != nil {
		t.Fatal(err)
	}

	all, err := LoadAll(root, 4)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("loaded = %v", all)
	}
	for _, name := range []string{"alpha", "beta"} {
		pres := all[name]
		if pres == nil || pres.ID != name {
			t.Errorf("%s = %+v", name, pres)
		}
	}
}

func TestLoadAllPropagatesFailure(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "broken")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// A DSL file with no overlays must fail the batch.
	if err := os.WriteFile(filepath.Join(dir, "presentation.pr"), []byte("view[name=home]:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAll(root, 2); err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("error = %v", err)
	}
}
