// Package dsl compiles the line-oriented presentation description language
// into scene-graph views and nodes. Parsing is a single pass over the
// source; all state lives in an explicit parser context, so nothing survives
// one Parse call.
package dsl

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/prdeck/internal/composite"
	"github.com/ivlev/prdeck/internal/scene"
)

// Options configures a parse run.
type Options struct {
	// Dir is the presentation directory, used for composite sub-layout
	// materialization and loading. Empty disables composite I/O.
	Dir string

	// DesignW and DesignH define the design frame used by the view camera
	// algebra.
	DesignW float64
	DesignH float64
}

// Document is the parsed DSL content: views in authoring order, nodes in
// first-seen order. Geometry, animation and visibility are attached later
// by the loader.
type Document struct {
	Views         []*scene.View
	Nodes         []*scene.Node
	InitialViewID string
}

type parser struct {
	opts  Options
	lines []string
	pos   int

	views    []*scene.View
	viewByID map[string]*scene.View
	cameras  map[string]scene.Camera
	nodes    []*scene.Node
	nodeByID map[string]*scene.Node

	current       *scene.View
	screenMode    bool
	initialViewID string
}

// Parse compiles DSL source into a Document.
func Parse(src string, opts Options) (*Document, error) {
	p := &parser{
		opts:     opts,
		lines:    strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n"),
		viewByID: make(map[string]*scene.View),
		cameras:  make(map[string]scene.Camera),
		nodeByID: make(map[string]*scene.Node),
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	if len(p.views) == 0 {
		// Content with no explicit view: synthesize a base view showing
		// everything.
		home := &scene.View{ID: "home", Camera: &scene.Camera{Zoom: 1}}
		for _, n := range p.nodes {
			home.Show = append(home.Show, n.ID)
		}
		p.views = append(p.views, home)
		p.initialViewID = "home"
	}
	if p.initialViewID == "" {
		p.initialViewID = "home"
	}

	return &Document{
		Views:         p.views,
		Nodes:         p.nodes,
		InitialViewID: p.initialViewID,
	}, nil
}

func (p *parser) run() error {
	for p.pos < len(p.lines) {
		lineNo := p.pos + 1
		raw := p.lines[p.pos]
		p.pos++

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		h, ok := TryHeader(line)
		if !ok {
			return parseErrorf(lineNo, raw, "invalid line (expected keyword[...])")
		}
		name := h.Params.Get("name")
		if name == "" {
			return parseErrorf(lineNo, raw, "missing required name=")
		}

		switch h.Keyword {
		case "screen":
			p.screenMode = true
			v := &scene.View{ID: name, Screen: true}
			p.views = append(p.views, v)
			p.viewByID[name] = v
			p.current = v
			continue
		case "view":
			if err := p.handleView(lineNo, raw, name, h.Params); err != nil {
				return err
			}
			continue
		}

		if p.current == nil {
			return parseErrorf(lineNo, raw, "block outside of any view")
		}

		var (
			node *scene.Node
			err  error
		)
		switch h.Keyword {
		case "text":
			node = p.textNode(name, h)
		case "qr":
			node = p.qrNode(name, h.Params)
		case "image":
			node = p.imageNode(name, h.Params)
		case "iframe":
			node, err = p.iframeNode(lineNo, raw, name, h.Params)
		case "bullets":
			node = p.bulletsNode(name, h)
		case "table":
			node = p.tableNode(name, h)
		case "group":
			node = p.groupNode(name, h.Params)
		case "timer":
			node, err = p.timerNode(lineNo, raw, name, h.Params)
		case "choices":
			node = p.choicesNode(name, h)
		default:
			return parseErrorf(lineNo, raw, "unknown keyword: %s", h.Keyword)
		}
		if err != nil {
			return err
		}

		if prev, exists := p.nodeByID[node.ID]; exists {
			return parseErrorf(lineNo, raw, "duplicate node id %q (already defined as %s)", node.ID, prev.Type)
		}
		p.nodeByID[node.ID] = node
		p.nodes = append(p.nodes, node)
		p.current.Show = append(p.current.Show, node.ID)
	}
	return nil
}

// handleView runs the view camera state machine: the first view is pinned
// to the origin, every later world view derives its camera from refView+loc.
func (p *parser) handleView(lineNo int, raw, name string, params Params) error {
	p.screenMode = false

	// Reusing an existing view name resumes adding nodes without touching
	// its camera.
	if existing, ok := p.viewByID[name]; ok {
		p.current = existing
		return nil
	}

	var cam scene.Camera
	var spec *scene.CameraSpec

	if p.initialViewID == "" {
		var extra []string
		for _, k := range params.Keys() {
			if k != "name" && strings.TrimSpace(params.Get(k)) != "" {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return parseErrorf(lineNo, raw, "first view must not specify camera params, remove: %s", strings.Join(extra, ", "))
		}
		cam = scene.OriginCamera()
	} else {
		var err error
		cam, spec, err = p.deriveCamera(params)
		if err != nil {
			return parseErrorf(lineNo, raw, "%v", err)
		}
	}

	v := &scene.View{ID: name, Camera: &cam, CameraSpec: spec}
	if spec != nil && spec.DurationMs != "" {
		if ms, err := strconv.ParseFloat(spec.DurationMs, 64); err == nil {
			v.TransitionMs = int(ms)
		}
	}
	p.views = append(p.views, v)
	p.viewByID[name] = v
	p.cameras[name] = cam
	p.current = v
	if p.initialViewID == "" {
		p.initialViewID = name
	}
	return nil
}

func (p *parser) deriveCamera(params Params) (scene.Camera, *scene.CameraSpec, error) {
	for _, legacy := range []string{"cx", "cy", "zoom", "ref"} {
		if strings.TrimSpace(params.Get(legacy)) != "" {
			return scene.Camera{}, nil, fmt.Errorf(
				"legacy view camera params are no longer supported; use view[name=...,refView=<id>,loc=<right|left|up|down|topRight|topLeft|bottomRight|bottomLeft>] and omit zoom/cx/cy/ref")
		}
	}

	refView := strings.TrimSpace(params.Get("refView"))
	loc := strings.TrimSpace(params.Get("loc"))
	if refView == "" {
		return scene.Camera{}, nil, fmt.Errorf("views after the first must include refView=<id>")
	}
	base, ok := p.cameras[refView]
	if !ok {
		return scene.Camera{}, nil, fmt.Errorf("unknown refView=%q, known: %s", refView, strings.Join(p.knownViewIDs(), ", "))
	}
	if loc == "" {
		return scene.Camera{}, nil, fmt.Errorf("views after the first must specify refView=<id> and loc=<...>, example: view[name=view2,refView=home,loc=right]:")
	}

	cam, err := scene.ResolveLoc(base, loc, p.opts.DesignW, p.opts.DesignH)
	if err != nil {
		return scene.Camera{}, nil, err
	}

	spec := &scene.CameraSpec{RefView: refView, Loc: loc}
	if dur := strings.TrimSpace(firstNonEmpty(params.Get("durationMs"), params.Get("duration"))); dur != "" {
		spec.DurationMs = dur
	}
	return cam, spec, nil
}

func (p *parser) knownViewIDs() []string {
	ids := make([]string, 0, len(p.cameras))
	for id := range p.cameras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// consumeBody reads lines until the next header line or end of input.
// When preserve is set, blank and comment lines inside the body are kept
// verbatim so authored formatting round-trips; otherwise they are skipped.
func (p *parser) consumeBody(preserve bool) []string {
	var body []string
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if preserve {
				body = append(body, strings.TrimRight(raw, "\n"))
			}
			p.pos++
			continue
		}
		if _, ok := TryHeader(trimmed); ok {
			break
		}
		if preserve {
			body = append(body, strings.TrimRight(raw, "\n"))
		} else {
			body = append(body, trimmed)
		}
		p.pos++
	}
	return body
}

func (p *parser) nodeSpace() scene.Space {
	if p.screenMode {
		return scene.SpaceScreen
	}
	return scene.SpaceWorld
}

func (p *parser) textNode(name string, h Header) *scene.Node {
	var content []string
	if h.Inline != "" {
		content = append(content, h.Inline)
	}
	if h.HasColon {
		content = append(content, p.consumeBody(true)...)
	}
	n := &scene.Node{
		ID:    name,
		Type:  scene.TypeText,
		Space: p.nodeSpace(),
		Text:  &scene.TextSpec{Content: strings.Trim(strings.Join(content, "\n"), "\n")},
	}
	applyStyleParams(n, h.Params)
	return n
}

func (p *parser) qrNode(name string, params Params) *scene.Node {
	url := params.Get("url")
	if url == "" {
		url = "/join"
	}
	return &scene.Node{
		ID:    name,
		Type:  scene.TypeQR,
		Space: scene.SpaceWorld,
		QR:    &scene.QRSpec{URL: url},
	}
}

func (p *parser) imageNode(name string, params Params) *scene.Node {
	src := firstNonEmpty(params.Get("src"), params.Get("file"))
	if src == "" {
		// Media by name convention.
		src = "/media/" + name + ".png"
	}
	space := scene.Space(strings.TrimSpace(params.Get("space")))
	if space == "" {
		space = scene.SpaceWorld
	}
	if p.screenMode {
		space = scene.SpaceScreen
	}
	n := &scene.Node{
		ID:    name,
		Type:  scene.TypeImage,
		Space: space,
		Image: &scene.ImageSpec{Src: src},
	}
	applyStyleParams(n, params)
	return n
}

func (p *parser) iframeNode(lineNo int, raw, name string, params Params) (*scene.Node, error) {
	src := params.Get("src")
	if src == "" {
		return nil, parseErrorf(lineNo, raw, "iframe requires src=")
	}
	n := &scene.Node{
		ID:    name,
		Type:  scene.TypeFrame,
		Space: p.nodeSpace(),
		Frame: &scene.FrameSpec{Src: src},
	}
	applyStyleParams(n, params)
	return n, nil
}

func (p *parser) bulletsNode(name string, h Header) *scene.Node {
	var items []string
	if h.HasColon {
		for _, line := range p.consumeBody(false) {
			items = append(items, stripListMarker(line))
		}
	}
	style := strings.TrimSpace(firstNonEmpty(h.Params.Get("type"), h.Params.Get("bullets")))
	if style == "" {
		style = "A"
	}
	// Roman style is stored as "X" to disambiguate from numeric "1".
	if style == "I" {
		style = "X"
	}
	n := &scene.Node{
		ID:      name,
		Type:    scene.TypeBullets,
		Space:   p.nodeSpace(),
		Bullets: &scene.BulletsSpec{Items: items, Style: style},
	}
	applyStyleParams(n, h.Params)
	return n
}

func (p *parser) tableNode(name string, h Header) *scene.Node {
	delim := h.Params.Get("delim")
	if delim == "" {
		delim = ";"
	}
	var rows [][]string
	if h.HasColon {
		body := trimBlankEdges(p.consumeBody(true))
		for _, line := range body {
			cells := strings.Split(line, delim)
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
			rows = append(rows, cells)
		}
	}
	n := &scene.Node{
		ID:    name,
		Type:  scene.TypeTable,
		Space: p.nodeSpace(),
		Table: &scene.TableSpec{Rows: rows, Delimiter: delim},
	}
	applyStyleParams(n, h.Params)
	return n
}

func (p *parser) groupNode(name string, params Params) *scene.Node {
	// Pure grouping node; hierarchy comes from the geometry overlay's
	// parent column.
	n := &scene.Node{
		ID:    name,
		Type:  scene.TypeGroup,
		Space: p.nodeSpace(),
		Group: &scene.GroupSpec{},
	}
	applyStyleParams(n, params)
	return n
}

func (p *parser) timerNode(lineNo int, raw, name string, params Params) (*scene.Node, error) {
	if p.opts.Dir != "" {
		// Materialization failures only cost the default sub-layout; the
		// timer node itself still parses.
		_ = composite.EnsureTimerDefaults(p.opts.Dir, name)
	}

	showTimeRaw := strings.ToLower(strings.TrimSpace(params.Get("showTime")))
	barColor := strings.TrimSpace(params.Get("barColor"))
	if barColor == "" {
		barColor = "orange"
	}
	lineColor := strings.TrimSpace(params.Get("lineColor"))
	if lineColor == "" {
		lineColor = "green"
	}
	stat := strings.TrimSpace(params.Get("stat"))
	if stat == "" {
		stat = "gaussian"
	}
	lineW := optFloat(params.Get("lineWidth"))
	minS := optFloat(params.Get("min"))
	maxS := optFloat(params.Get("max"))
	binS := optFloat(params.Get("binSize"))

	if minS != nil && maxS != nil && binS != nil && *binS > 0 {
		span := *maxS - *minS
		bins := 0.0
		if span > 0 {
			bins = span / *binS
		}
		if bins <= 0 || math.Abs(bins-math.Round(bins)) > 1e-6 {
			return nil, parseErrorf(lineNo, raw, "timer[%s] has incompatible min/max/binSize (span=%g, bin=%g)", name, span, *binS)
		}
	}

	args := make(map[string]string)
	for _, k := range params.Keys() {
		if k != "name" {
			args[k] = params.Get(k)
		}
	}

	spec := &scene.TimerSpec{
		ShowTime:     showTimeRaw == "1" || showTimeRaw == "true" || showTimeRaw == "yes" || showTimeRaw == "on",
		BarColor:     barColor,
		LineColor:    lineColor,
		LineWidth:    lineW,
		Stat:         stat,
		MinS:         minS,
		MaxS:         maxS,
		BinSizeS:     binS,
		CompositeDir: name,
		Args:         args,
	}

	if p.opts.Dir != "" {
		compDir := composite.Dir(p.opts.Dir, spec.CompositeDir)
		if tpl, ok := composite.ReadElements(compDir); ok {
			spec.ElementsText = composite.ExpandPlaceholders(tpl, timerTemplateArgs(spec))
		}
		spec.CompositeGeometries = composite.LoadGeometries(filepath.Join(compDir, "geometries.csv"), 0.2, 0.1)
	}

	return &scene.Node{
		ID:    name,
		Type:  scene.TypeTimer,
		Space: scene.SpaceWorld,
		Timer: spec,
	}, nil
}

// timerTemplateArgs merges the raw DSL args with normalized numeric fields
// for composite template expansion.
func timerTemplateArgs(spec *scene.TimerSpec) map[string]string {
	args := make(map[string]string, len(spec.Args)+8)
	for k, v := range spec.Args {
		args[k] = v
	}
	if spec.ShowTime {
		args["showTime"] = "1"
	} else {
		args["showTime"] = "0"
	}
	args["barColor"] = spec.BarColor
	args["lineColor"] = spec.LineColor
	args["stat"] = spec.Stat
	if spec.LineWidth != nil {
		args["lineWidth"] = formatFloat(*spec.LineWidth)
	}
	if spec.MinS != nil {
		args["min"] = formatFloat(*spec.MinS)
	}
	if spec.MaxS != nil {
		args["max"] = formatFloat(*spec.MaxS)
	}
	if spec.BinSizeS != nil {
		args["binSize"] = formatFloat(*spec.BinSizeS)
	}
	return args
}

func (p *parser) choicesNode(name string, h Header) *scene.Node {
	if p.opts.Dir != "" {
		_ = composite.EnsureChoicesDefaults(p.opts.Dir, name)
	}

	var question string
	if h.HasColon {
		question = strings.Trim(strings.Join(p.consumeBody(true), "\n"), "\n")
	}

	bulletStyle := strings.TrimSpace(h.Params.Get("bullets"))
	if bulletStyle == "" {
		bulletStyle = "A"
	}

	spec := &scene.ChoicesSpec{
		Question: question,
		Chart:    "pie",
		Bullets:  bulletStyle,
		Options:  ParseChoiceOptions(h.Params.Get("choices")),
	}

	if p.opts.Dir != "" {
		base := composite.Dir(p.opts.Dir, name)
		spec.CompositeGeometriesByPath = map[string]map[string]scene.CompositeGeometry{
			"":        composite.LoadGeometries(filepath.Join(base, "geometries.csv"), 1, 1),
			"bullets": composite.LoadGeometries(filepath.Join(base, "bullets", "geometries.csv"), 1, 1),
			"wheel":   composite.LoadGeometries(filepath.Join(base, "wheel", "geometries.csv"), 1, 1),
		}
	}

	return &scene.Node{
		ID:      name,
		Type:    scene.TypeChoices,
		Space:   scene.SpaceWorld,
		Choices: spec,
	}
}

func applyStyleParams(n *scene.Node, params Params) {
	if bg := strings.TrimSpace(firstNonEmpty(params.Get("bgColor"), params.Get("bg"))); bg != "" {
		n.BgColor = bg
	}
	if v := optFloat(params.Get("bgAlpha")); v != nil {
		n.BgAlpha = v
	}
	if v := optFloat(firstNonEmpty(params.Get("borderRadius"), params.Get("rounded"))); v != nil {
		n.BorderRadius = v
	}
}

func stripListMarker(line string) string {
	if len(line) >= 2 && (line[0] == '-' || line[0] == '*' || line[0] == '+') &&
		(line[1] == ' ' || line[1] == '\t') {
		return strings.TrimLeft(line[1:], " \t")
	}
	return line
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func optFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
