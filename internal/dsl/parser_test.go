package dsl

import (
	"math"
	"strings"
	"testing"

	"github.com/ivlev/prdeck/internal/scene"
)

func testOptions() Options {
	return Options{DesignW: 1920, DesignH: 1080}
}

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(src, testOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestParseTextInline(t *testing.T) {
	doc := mustParse(t, "view[name=home]:\ntext[name=t1]: Hello\n")
	if len(doc.Nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(doc.Nodes))
	}
	n := doc.Nodes[0]
	if n.Type != scene.TypeText || n.Text == nil || n.Text.Content != "Hello" {
		t.Errorf("Unexpected node: %+v", n)
	}
	if doc.InitialViewID != "home" {
		t.Errorf("initial view = %q", doc.InitialViewID)
	}
	if len(doc.Views) != 1 || len(doc.Views[0].Show) != 1 || doc.Views[0].Show[0] != "t1" {
		t.Errorf("Unexpected views: %+v", doc.Views[0])
	}
}

func TestParseTextBodyPreservesFormatting(t *testing.T) {
	src := "view[name=home]:\n" +
		"text[name=t1]:\n" +
		"line one\n" +
		"\n" +
		"# not a comment inside a body\n" +
		"  indented\n" +
		"view[name=home]:\n"
	doc := mustParse(t, src)
	want := "line one\n\n# not a comment inside a body\n  indented"
	if got := doc.Nodes[0].Text.Content; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestFirstViewRejectsCameraParams(t *testing.T) {
	_, err := Parse("view[name=home,refView=x,loc=right]:\n", testOptions())
	if err == nil {
		t.Fatal("first view with camera params must fail")
	}
	if !strings.Contains(err.Error(), "first view") {
		t.Errorf("error = %v", err)
	}
}

func TestLegacyCameraParamsRejected(t *testing.T) {
	src := "view[name=home]:\nview[name=v2,cx=10,cy=0,zoom=2]:\n"
	_, err := Parse(src, testOptions())
	if err == nil {
		t.Fatal("legacy camera params must fail")
	}
	if !strings.Contains(err.Error(), "legacy") {
		t.Errorf("error should mention legacy params, got: %v", err)
	}
}

func TestViewCameraResolution(t *testing.T) {
	src := "view[name=home]:\n" +
		"view[name=right1,refView=home,loc=right]:\n" +
		"view[name=below,refView=home,loc=down]:\n" +
		"view[name=corner,refView=right1,loc=bottomRight]:\n"
	doc := mustParse(t, src)

	cam := func(id string) scene.Camera {
		for _, v := range doc.Views {
			if v.ID == id {
				return *v.Camera
			}
		}
		t.Fatalf("view %q not found", id)
		return scene.Camera{}
	}

	home := cam("home")
	if home.CX != 0 || home.CY != 0 || home.Zoom != 1 {
		t.Errorf("home camera = %+v", home)
	}
	// One full camera width to the right of home: 2 * (1920/2).
	right := cam("right1")
	if right.CX != 1920 || right.CY != 0 || right.Zoom != 1 {
		t.Errorf("right1 camera = %+v", right)
	}
	below := cam("below")
	if below.CX != 0 || below.CY != 1080 {
		t.Errorf("below camera = %+v", below)
	}
	corner := cam("corner")
	if corner.CX != 3840 || corner.CY != 1080 {
		t.Errorf("corner camera = %+v", corner)
	}
}

func TestViewCameraDeterminism(t *testing.T) {
	src := "view[name=home]:\nview[name=v2,refView=home,loc=topLeft]:\n"
	a := mustParse(t, src)
	b := mustParse(t, src)
	ca, cb := *a.Views[1].Camera, *b.Views[1].Camera
	if ca != cb {
		t.Errorf("cameras differ: %+v vs %+v", ca, cb)
	}
}

func TestUnknownRefView(t *testing.T) {
	src := "view[name=home]:\nview[name=v2,refView=nope,loc=right]:\n"
	_, err := Parse(src, testOptions())
	if err == nil || !strings.Contains(err.Error(), "unknown refView") {
		t.Errorf("error = %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "home") {
		t.Errorf("error should list known view ids, got: %v", err)
	}
}

func TestMissingRefViewOrLoc(t *testing.T) {
	if _, err := Parse("view[name=home]:\nview[name=v2,loc=right]:\n", testOptions()); err == nil || !strings.Contains(err.Error(), "refView") {
		t.Errorf("missing refView: %v", err)
	}
	if _, err := Parse("view[name=home]:\nview[name=v2,refView=home]:\n", testOptions()); err == nil || !strings.Contains(err.Error(), "loc") {
		t.Errorf("missing loc: %v", err)
	}
}

func TestUnrecognizedLocIsError(t *testing.T) {
	src := "view[name=home]:\nview[name=v2,refView=home,loc=sideways]:\n"
	if _, err := Parse(src, testOptions()); err == nil || !strings.Contains(err.Error(), "loc") {
		t.Errorf("unrecognized loc must fail, got: %v", err)
	}
}

func TestViewRevisitKeepsCamera(t *testing.T) {
	src := "view[name=home]:\n" +
		"view[name=v2,refView=home,loc=right]:\n" +
		"view[name=home]:\n" +
		"text[name=t1]: hi\n"
	doc := mustParse(t, src)
	if len(doc.Views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(doc.Views))
	}
	if doc.Views[0].Show[0] != "t1" {
		t.Errorf("revisited view should collect the node, show = %v", doc.Views[0].Show)
	}
}

func TestNodeOutsideViewFails(t *testing.T) {
	if _, err := Parse("text[name=t1]: hi\n", testOptions()); err == nil {
		t.Fatal("node before any view must fail")
	}
}

func TestUnknownKeywordFails(t *testing.T) {
	src := "view[name=home]:\nwobble[name=w1]\n"
	if _, err := Parse(src, testOptions()); err == nil || !strings.Contains(err.Error(), "unknown keyword") {
		t.Errorf("error = %v", err)
	}
}

func TestMissingNameFails(t *testing.T) {
	if _, err := Parse("view[refView=home]:\n", testOptions()); err == nil || !strings.Contains(err.Error(), "name=") {
		t.Errorf("error = %v", err)
	}
}

func TestDuplicateNodeIDFails(t *testing.T) {
	src := "view[name=home]:\ntext[name=t1]: a\ntext[name=t1]: b\n"
	if _, err := Parse(src, testOptions()); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error = %v", err)
	}
}

func TestInvalidLineFails(t *testing.T) {
	if _, err := Parse("view[name=home]:\nnot a header\n", testOptions()); err == nil {
		t.Fatal("stray body text at top level must fail")
	}
}

func TestBulletsNode(t *testing.T) {
	src := "view[name=home]:\n" +
		"bullets[name=b1,type=I]:\n" +
		"- first\n" +
		"* second\n" +
		"\n" +
		"# skipped comment\n" +
		"third\n"
	doc := mustParse(t, src)
	n := doc.Nodes[0]
	if n.Bullets == nil {
		t.Fatal("expected bullets payload")
	}
	want := []string{"first", "second", "third"}
	if len(n.Bullets.Items) != len(want) {
		t.Fatalf("items = %v", n.Bullets.Items)
	}
	for i := range want {
		if n.Bullets.Items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, n.Bullets.Items[i], want[i])
		}
	}
	if n.Bullets.Style != "X" {
		t.Errorf("roman style should normalize to X, got %q", n.Bullets.Style)
	}
}

func TestTableNode(t *testing.T) {
	src := "view[name=home]:\n" +
		"table[name=tb1,delim=\"|\"]:\n" +
		"a|b|c\n" +
		"1|2|3\n"
	doc := mustParse(t, src)
	n := doc.Nodes[0]
	if n.Table == nil || n.Table.Delimiter != "|" {
		t.Fatalf("table payload = %+v", n.Table)
	}
	if len(n.Table.Rows) != 2 || n.Table.Rows[0][1] != "b" || n.Table.Rows[1][2] != "3" {
		t.Errorf("rows = %v", n.Table.Rows)
	}
}

func TestIframeRequiresSrc(t *testing.T) {
	if _, err := Parse("view[name=home]:\niframe[name=f1]\n", testOptions()); err == nil || !strings.Contains(err.Error(), "src") {
		t.Errorf("error = %v", err)
	}
}

func TestImageDefaultsToMediaByName(t *testing.T) {
	doc := mustParse(t, "view[name=home]:\nimage[name=logo]\n")
	if got := doc.Nodes[0].Image.Src; got != "/media/logo.png" {
		t.Errorf("src = %q", got)
	}
}

func TestQRDefaultURL(t *testing.T) {
	doc := mustParse(t, "view[name=home]:\nqr[name=q1]\n")
	if got := doc.Nodes[0].QR.URL; got != "/join" {
		t.Errorf("url = %q", got)
	}
}

func TestScreenSection(t *testing.T) {
	src := "view[name=home]:\n" +
		"text[name=t1]: world text\n" +
		"screen[name=hud]:\n" +
		"text[name=clock]: 12:00\n"
	doc := mustParse(t, src)
	if len(doc.Views) != 2 {
		t.Fatalf("views = %d", len(doc.Views))
	}
	hud := doc.Views[1]
	if !hud.Screen || hud.ID != "hud" {
		t.Errorf("screen view = %+v", hud)
	}
	if len(hud.Show) != 1 || hud.Show[0] != "clock" {
		t.Errorf("screen show = %v", hud.Show)
	}
	if doc.Nodes[1].Space != scene.SpaceScreen {
		t.Errorf("screen node space = %q", doc.Nodes[1].Space)
	}
	// The world view keeps only its own node.
	if len(doc.Views[0].Show) != 1 {
		t.Errorf("home show = %v", doc.Views[0].Show)
	}
}

func TestTimerBinValidation(t *testing.T) {
	bad := "view[name=home]:\ntimer[name=tm,min=0,max=10,binSize=3]\n"
	if _, err := Parse(bad, testOptions()); err == nil || !strings.Contains(err.Error(), "incompatible") {
		t.Errorf("10/3 bins must fail, got: %v", err)
	}

	good := "view[name=home]:\ntimer[name=tm,min=0,max=10,binSize=2]\n"
	doc := mustParse(t, good)
	tm := doc.Nodes[0].Timer
	if tm == nil {
		t.Fatal("expected timer payload")
	}
	if *tm.MinS != 0 || *tm.MaxS != 10 || *tm.BinSizeS != 2 {
		t.Errorf("timer range = %v %v %v", *tm.MinS, *tm.MaxS, *tm.BinSizeS)
	}
	if tm.BarColor != "orange" || tm.LineColor != "green" || tm.Stat != "gaussian" {
		t.Errorf("timer defaults = %+v", tm)
	}
	if tm.Args["binSize"] != "2" {
		t.Errorf("raw args must be preserved, got %v", tm.Args)
	}
}

func TestTimerBinTolerance(t *testing.T) {
	// A span that divides evenly within 1e-6 must pass.
	src := "view[name=home]:\ntimer[name=tm,min=0,max=0.3,binSize=0.1]\n"
	doc := mustParse(t, src)
	bins := (*doc.Nodes[0].Timer.MaxS - *doc.Nodes[0].Timer.MinS) / *doc.Nodes[0].Timer.BinSizeS
	if math.Abs(bins-math.Round(bins)) > 1e-6 {
		t.Fatalf("unexpected bins value %v", bins)
	}
}

func TestStyleParams(t *testing.T) {
	src := "view[name=home]:\ntext[name=t1,bgColor=black,bgAlpha=0.5,borderRadius=8]: x\n"
	doc := mustParse(t, src)
	n := doc.Nodes[0]
	if n.BgColor != "black" || n.BgAlpha == nil || *n.BgAlpha != 0.5 || n.BorderRadius == nil || *n.BorderRadius != 8 {
		t.Errorf("style = bg %q alpha %v radius %v", n.BgColor, n.BgAlpha, n.BorderRadius)
	}
}

func TestNoViewsSynthesizesHome(t *testing.T) {
	doc := mustParse(t, "# empty file\n")
	if len(doc.Views) != 1 || doc.Views[0].ID != "home" || doc.InitialViewID != "home" {
		t.Errorf("views = %+v, initial = %q", doc.Views, doc.InitialViewID)
	}
}
