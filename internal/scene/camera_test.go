package scene

import "testing"

func TestResolveLocAxisComposition(t *testing.T) {
	base := OriginCamera()

	cases := []struct {
		loc    string
		cx, cy float64
	}{
		{"right", 1920, 0},
		{"left", -1920, 0},
		{"down", 0, 1080},
		{"bottom", 0, 1080},
		{"up", 0, -1080},
		{"top", 0, -1080},
		{"topRight", 1920, -1080},
		{"bottom_left", -1920, 1080},
		{"bottom-right", 1920, 1080},
		{"center", 0, 0},
		{"origin", 0, 0},
	}
	for _, c := range cases {
		got, err := ResolveLoc(base, c.loc, 1920, 1080)
		if err != nil {
			t.Errorf("ResolveLoc(%q) failed: %v", c.loc, err)
			continue
		}
		if got.CX != c.cx || got.CY != c.cy || got.Zoom != 1 {
			t.Errorf("ResolveLoc(%q) = %+v, want cx=%g cy=%g zoom=1", c.loc, got, c.cx, c.cy)
		}
	}
}

func TestResolveLocInheritsZoom(t *testing.T) {
	base := Camera{CX: 100, CY: 200, Zoom: 2}
	got, err := ResolveLoc(base, "right", 1920, 1080)
	if err != nil {
		t.Fatalf("ResolveLoc failed: %v", err)
	}
	// Zoom 2 halves the visible width, so one camera width is 960.
	if got.CX != 1060 || got.CY != 200 || got.Zoom != 2 {
		t.Errorf("camera = %+v", got)
	}
}

func TestResolveLocRejectsUnknownToken(t *testing.T) {
	if _, err := ResolveLoc(OriginCamera(), "sideways", 1920, 1080); err == nil {
		t.Fatal("unknown loc token must fail")
	}
	if _, err := ResolveLoc(OriginCamera(), "", 1920, 1080); err == nil {
		t.Fatal("empty loc must fail")
	}
}

func TestResolveLocDeterminism(t *testing.T) {
	a, _ := ResolveLoc(OriginCamera(), "bottomRight", 1920, 1080)
	b, _ := ResolveLoc(OriginCamera(), "bottomRight", 1920, 1080)
	if a != b {
		t.Errorf("same input gave different cameras: %+v vs %+v", a, b)
	}
}

func TestHalfExtents(t *testing.T) {
	hw, hh := (Camera{Zoom: 2}).HalfExtents(1920, 1080)
	if hw != 480 || hh != 270 {
		t.Errorf("half extents = %g, %g", hw, hh)
	}
	// Zero zoom is treated as 1.
	hw, hh = (Camera{}).HalfExtents(1920, 1080)
	if hw != 960 || hh != 540 {
		t.Errorf("half extents for zero zoom = %g, %g", hw, hh)
	}
}
