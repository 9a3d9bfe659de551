package scene

// NodeType enumerates the visual node kinds of the scene graph.
type NodeType string

const (
	TypeText    NodeType = "text"
	TypeQR      NodeType = "qr"
	TypeImage   NodeType = "image"
	TypeFrame   NodeType = "htmlFrame"
	TypeBullets NodeType = "bullets"
	TypeTable   NodeType = "table"
	TypeGroup   NodeType = "group"
	TypeTimer   NodeType = "timer"
	TypeChoices NodeType = "choices"
	TypeSound   NodeType = "sound"
	TypeGraph   NodeType = "graph"
	TypeArrow   NodeType = "arrow"
	TypeLine    NodeType = "line"
	TypeVideo   NodeType = "video"
)

// Space selects the coordinate space a node lives in.
type Space string

const (
	SpaceWorld  Space = "world"
	SpaceScreen Space = "screen"
)

// Transform positions a node. For a root node the fields are world pixels in
// the design frame; for a node with a ParentID they hold normalized units
// relative to the parent's box, interpreted by the renderer.
type Transform struct {
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	W           float64 `json:"w" yaml:"w"`
	H           float64 `json:"h" yaml:"h"`
	RotationDeg float64 `json:"rotationDeg,omitempty" yaml:"rotationDeg,omitempty"`
	Anchor      string  `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Anim is one enter or exit animation record for a node.
type Anim struct {
	Kind       string   `json:"kind" yaml:"kind"`
	DurationMs int      `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
	DelayMs    int      `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`
	From       string   `json:"from,omitempty" yaml:"from,omitempty"`
	BorderFrac *float64 `json:"borderFrac,omitempty" yaml:"borderFrac,omitempty"`
}

// Node is one visual element. The shared header covers identity, placement,
// style and animation; exactly one of the per-kind payload pointers is set
// for parsed nodes (Raw covers serializer-only kinds).
type Node struct {
	ID        string    `json:"id" yaml:"id"`
	Type      NodeType  `json:"type" yaml:"type"`
	Space     Space     `json:"space" yaml:"space"`
	Transform Transform `json:"transform" yaml:"transform"`
	ParentID  string    `json:"parentId,omitempty" yaml:"parentId,omitempty"`

	Align  string  `json:"align,omitempty" yaml:"align,omitempty"`
	VAlign string  `json:"vAlign,omitempty" yaml:"vAlign,omitempty"`
	FontPx float64 `json:"fontPx,omitempty" yaml:"fontPx,omitempty"`

	BgColor      string   `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	BgAlpha      *float64 `json:"bgAlpha,omitempty" yaml:"bgAlpha,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`

	Appear    *Anim `json:"appear,omitempty" yaml:"appear,omitempty"`
	Disappear *Anim `json:"disappear,omitempty" yaml:"disappear,omitempty"`
	Visible   bool  `json:"visible" yaml:"visible"`

	Text    *TextSpec    `json:"text,omitempty" yaml:"text,omitempty"`
	QR      *QRSpec      `json:"qr,omitempty" yaml:"qr,omitempty"`
	Image   *ImageSpec   `json:"image,omitempty" yaml:"image,omitempty"`
	Frame   *FrameSpec   `json:"frame,omitempty" yaml:"frame,omitempty"`
	Bullets *BulletsSpec `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	Table   *TableSpec   `json:"table,omitempty" yaml:"table,omitempty"`
	Group   *GroupSpec   `json:"group,omitempty" yaml:"group,omitempty"`
	Timer   *TimerSpec   `json:"timer,omitempty" yaml:"timer,omitempty"`
	Choices *ChoicesSpec `json:"choices,omitempty" yaml:"choices,omitempty"`
	Raw     *RawSpec     `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// TextSpec holds authored text content, blank lines preserved.
type TextSpec struct {
	Content string `json:"content" yaml:"content"`
}

// QRSpec holds a QR join link. The URL stays relative here; the HTTP layer
// makes it absolute.
type QRSpec struct {
	URL string `json:"url" yaml:"url"`
}

// ImageSpec references a media file, by convention /media/<id>.png.
type ImageSpec struct {
	Src string `json:"src" yaml:"src"`
}

// FrameSpec embeds an external page.
type FrameSpec struct {
	Src string `json:"src" yaml:"src"`
}

// BulletsSpec is an ordered list with a marker style. Style "X" means roman
// numerals (authored as type=I, normalized to avoid clashing with numeric
// style "1").
type BulletsSpec struct {
	Items []string `json:"items" yaml:"items"`
	Style string   `json:"style" yaml:"style"`
}

// TableSpec holds body rows split on the authored delimiter.
type TableSpec struct {
	Rows      [][]string `json:"rows" yaml:"rows"`
	Delimiter string     `json:"delimiter" yaml:"delimiter"`
}

// GroupSpec marks a pure grouping node; hierarchy comes from the geometry
// overlay's parent column.
type GroupSpec struct{}

// TimerSpec is an interactive timer/histogram node. Args preserves the raw
// DSL parameters for composite template expansion.
type TimerSpec struct {
	ShowTime  bool     `json:"showTime" yaml:"showTime"`
	BarColor  string   `json:"barColor" yaml:"barColor"`
	LineColor string   `json:"lineColor" yaml:"lineColor"`
	LineWidth *float64 `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	Stat      string   `json:"stat" yaml:"stat"`
	MinS      *float64 `json:"minS,omitempty" yaml:"minS,omitempty"`
	MaxS      *float64 `json:"maxS,omitempty" yaml:"maxS,omitempty"`
	BinSizeS  *float64 `json:"binSizeS,omitempty" yaml:"binSizeS,omitempty"`

	CompositeDir        string                       `json:"compositeDir" yaml:"compositeDir"`
	Args                map[string]string            `json:"args,omitempty" yaml:"args,omitempty"`
	ElementsText        string                       `json:"elementsText,omitempty" yaml:"elementsText,omitempty"`
	CompositeGeometries map[string]CompositeGeometry `json:"compositeGeometries,omitempty" yaml:"compositeGeometries,omitempty"`
}

// ChoiceOption is one poll option with a stable slugged id.
type ChoiceOption struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// ChoicesSpec is an audience poll node with nested composite sub-layouts.
type ChoicesSpec struct {
	Question string         `json:"question" yaml:"question"`
	Chart    string         `json:"chart" yaml:"chart"`
	Bullets  string         `json:"bullets" yaml:"bullets"`
	Options  []ChoiceOption `json:"options" yaml:"options"`

	// CompositeGeometriesByPath maps a composite sub-folder path ("",
	// "bullets", "wheel") to its folder-local geometry rows.
	CompositeGeometriesByPath map[string]map[string]CompositeGeometry `json:"compositeGeometriesByPath,omitempty" yaml:"compositeGeometriesByPath,omitempty"`
}

// RawSpec carries the parameters of node kinds the compiler passes through
// verbatim (video, graph, arrow, line, sound).
type RawSpec struct {
	Args map[string]string `json:"args,omitempty" yaml:"args,omitempty"`
}

// CompositeGeometry is one folder-local geometry row of a composite
// sub-layout. Units are normalized to the composite box, never converted.
type CompositeGeometry struct {
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	W           float64 `json:"w" yaml:"w"`
	H           float64 `json:"h" yaml:"h"`
	RotationDeg float64 `json:"rotationDeg" yaml:"rotationDeg"`
	Anchor      string  `json:"anchor" yaml:"anchor"`
	Align       string  `json:"align,omitempty" yaml:"align,omitempty"`
	Parent      string  `json:"parent,omitempty" yaml:"parent,omitempty"`
}
