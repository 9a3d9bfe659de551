package scene

import "github.com/ivlev/prdeck/internal/config"

// Presentation is the fully resolved scene graph: every node carries its
// world (or parent-relative) transform, style attributes and animation cues,
// and every view carries its resolved camera.
type Presentation struct {
	ID            string         `json:"id" yaml:"id"`
	InitialViewID string         `json:"initialViewId" yaml:"initialViewId"`
	Views         []*View        `json:"views" yaml:"views"`
	Nodes         []*Node        `json:"nodes" yaml:"nodes"`
	AnimationCues []Cue          `json:"animationCues" yaml:"animationCues"`
	Defaults      config.Defaults `json:"defaults" yaml:"defaults"`
}

// View is a named camera position into the world-space scene, or a
// screen-space overlay section when Screen is set.
type View struct {
	ID           string      `json:"id" yaml:"id"`
	Camera       *Camera     `json:"camera,omitempty" yaml:"camera,omitempty"`
	Show         []string    `json:"show" yaml:"show"`
	Screen       bool        `json:"screen,omitempty" yaml:"screen,omitempty"`
	CameraSpec   *CameraSpec `json:"cameraSpec,omitempty" yaml:"cameraSpec,omitempty"`
	TransitionMs int         `json:"transitionMs,omitempty" yaml:"transitionMs,omitempty"`
}

// CameraSpec records how a view's camera was derived from another view.
// It is kept verbatim so re-serializing never drifts the camera algebra.
type CameraSpec struct {
	RefView    string `json:"refView,omitempty" yaml:"refView,omitempty"`
	Loc        string `json:"loc,omitempty" yaml:"loc,omitempty"`
	DurationMs string `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
}

// Cue is one entry of the flat, file-ordered animation cue list used for
// live playback sequencing.
type Cue struct {
	ID   string `json:"id" yaml:"id"`
	When string `json:"when" yaml:"when"`
}

// ViewByID returns the view with the given id, or nil.
func (p *Presentation) ViewByID(id string) *View {
	for _, v := range p.Views {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// NodeByID returns the node with the given id, or nil.
func (p *Presentation) NodeByID(id string) *Node {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
