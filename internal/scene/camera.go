package scene

import (
	"fmt"
	"strings"
)

// Camera is a world-space camera position. The origin view is always
// {0, 0, 1}; later views are derived by pure translation.
type Camera struct {
	CX   float64 `json:"cx" yaml:"cx"`
	CY   float64 `json:"cy" yaml:"cy"`
	Zoom float64 `json:"zoom" yaml:"zoom"`
}

// OriginCamera returns the camera of the first authored view.
func OriginCamera() Camera {
	return Camera{CX: 0, CY: 0, Zoom: 1}
}

// HalfExtents returns half the visible width and height of the camera in
// design pixels.
func (c Camera) HalfExtents(designW, designH float64) (hw, hh float64) {
	z := c.Zoom
	if z == 0 {
		z = 1
	}
	return designW / 2 / z, designH / 2 / z
}

// ResolveLoc places a camera relative to a base camera using a symbolic
// location token. Zoom is always inherited unchanged: the view algebra
// supports translation only.
//
// Direction substrings compose independently per axis: right/left shift x by
// one full camera width, bottom/down and top/up shift y by one full camera
// height. center and origin keep the base position. A non-empty token with
// no recognized substring is an error.
func ResolveLoc(base Camera, loc string, designW, designH float64) (Camera, error) {
	cam := base
	if cam.Zoom == 0 {
		cam.Zoom = 1
	}

	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(loc)))
	if norm == "" {
		return cam, fmt.Errorf("empty loc")
	}
	if norm == "center" || norm == "origin" {
		return cam, nil
	}

	hw, hh := cam.HalfExtents(designW, designH)
	var dx, dy float64
	matched := false
	if strings.Contains(norm, "right") {
		dx += 2 * hw
		matched = true
	}
	if strings.Contains(norm, "left") {
		dx -= 2 * hw
		matched = true
	}
	if strings.Contains(norm, "bottom") || strings.Contains(norm, "down") {
		dy += 2 * hh
		matched = true
	}
	if strings.Contains(norm, "top") || strings.Contains(norm, "up") {
		dy -= 2 * hh
		matched = true
	}
	if !matched {
		return Camera{}, fmt.Errorf("unrecognized loc %q (expected right|left|up|down|topRight|topLeft|bottomRight|bottomLeft|center)", loc)
	}

	cam.CX += dx
	cam.CY += dy
	return cam, nil
}
