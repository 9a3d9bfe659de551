// Package writer is the inverse of the loader: it serializes an edited
// scene graph back into the DSL file plus the geometry and animation
// overlays, precisely enough that an edit-save-reload cycle is stable.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/prdeck/internal/scene"
)

// Save writes presentation.pr (or presentation.txt when that is what the
// directory already uses), geometries.csv and animations.csv. The caller is
// responsible for serializing concurrent saves; the three files together
// form one logical snapshot.
func Save(pres *scene.Presentation, presDir string) error {
	if err := os.MkdirAll(presDir, 0755); err != nil {
		return err
	}

	dslText, err := MarshalDSL(pres)
	if err != nil {
		return err
	}
	target := filepath.Join(presDir, "presentation.pr")
	if _, err := os.Stat(target); err != nil {
		txt := filepath.Join(presDir, "presentation.txt")
		if _, err := os.Stat(txt); err == nil {
			target = txt
		}
	}
	if err := os.WriteFile(target, []byte(dslText), 0644); err != nil {
		return err
	}

	if err := writeGeometriesCSV(filepath.Join(presDir, "geometries.csv"), pres); err != nil {
		return err
	}
	return writeAnimationsCSV(filepath.Join(presDir, "animations.csv"), pres)
}

// MarshalDSL renders the DSL text for a scene graph. Cameras are emitted
// from the stored cameraSpec, never recomputed from pixel transforms, so
// repeated save cycles cannot drift the view algebra.
func MarshalDSL(pres *scene.Presentation) (string, error) {
	nodesByID := make(map[string]*scene.Node, len(pres.Nodes))
	for _, n := range pres.Nodes {
		nodesByID[n.ID] = n
	}

	var lines []string
	lines = append(lines, "# presentation.pr (canonical)", "")

	for _, v := range pres.Views {
		if v.Screen {
			lines = append(lines, fmt.Sprintf("screen[name=%s]:", v.ID))
		} else {
			params := []string{"name=" + v.ID}
			if spec := v.CameraSpec; spec != nil {
				if spec.RefView != "" {
					params = append(params, "refView="+quoteParam(spec.RefView))
				}
				if spec.Loc != "" {
					params = append(params, "loc="+quoteParam(spec.Loc))
				}
				if spec.DurationMs != "" {
					params = append(params, "durationMs="+quoteParam(spec.DurationMs))
				}
			}
			lines = append(lines, fmt.Sprintf("view[%s]:", strings.Join(params, ",")))
		}

		for _, nodeID := range v.Show {
			n := nodesByID[nodeID]
			if n == nil {
				continue
			}
			nodeLines, err := marshalNode(n)
			if err != nil {
				return "", err
			}
			lines = append(lines, nodeLines...)
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
}

func marshalNode(n *scene.Node) ([]string, error) {
	switch n.Type {
	case scene.TypeText:
		lines := []string{fmt.Sprintf("text[%s]:", joinParams(n, nil))}
		if n.Text != nil {
			content := strings.TrimRight(n.Text.Content, "\n")
			if content != "" {
				for _, ln := range strings.Split(content, "\n") {
					lines = append(lines, safeStr(ln))
				}
			}
		}
		return append(lines, ""), nil

	case scene.TypeQR:
		var extra []string
		// The public tunnel URL never persists; /join is the default join
		// node target.
		if n.QR != nil && n.QR.URL != "" && n.QR.URL != "/join" {
			extra = append(extra, "url="+quoteParam(n.QR.URL))
		}
		return []string{fmt.Sprintf("qr[%s]", joinParams(n, extra))}, nil

	case scene.TypeFrame:
		var extra []string
		if n.Frame != nil && n.Frame.Src != "" {
			extra = append(extra, "src="+quoteParam(n.Frame.Src))
		}
		return []string{fmt.Sprintf("iframe[%s]", joinParams(n, extra))}, nil

	case scene.TypeImage:
		var extra []string
		if n.Image != nil && n.Image.Src != "" && n.Image.Src != "/media/"+n.ID+".png" {
			extra = append(extra, "file="+quoteParam(n.Image.Src))
		}
		return []string{fmt.Sprintf("image[%s]", joinParams(n, extra))}, nil

	case scene.TypeBullets:
		var extra []string
		if n.Bullets != nil && n.Bullets.Style != "" && n.Bullets.Style != "A" {
			style := n.Bullets.Style
			if style == "X" {
				style = "I"
			}
			extra = append(extra, "type="+quoteParam(style))
		}
		lines := []string{fmt.Sprintf("bullets[%s]:", joinParams(n, extra))}
		if n.Bullets != nil {
			for _, item := range n.Bullets.Items {
				lines = append(lines, safeStr(item))
			}
		}
		return append(lines, ""), nil

	case scene.TypeTable:
		delim := ";"
		if n.Table != nil && n.Table.Delimiter != "" {
			delim = n.Table.Delimiter
		}
		extra := []string{`delim="` + safeStr(delim) + `"`}
		lines := []string{fmt.Sprintf("table[%s]:", joinParams(n, extra))}
		if n.Table != nil {
			for _, row := range n.Table.Rows {
				lines = append(lines, safeStr(strings.Join(row, delim)))
			}
		}
		return append(lines, ""), nil

	case scene.TypeGroup:
		return []string{fmt.Sprintf("group[%s]", joinParams(n, nil))}, nil

	case scene.TypeTimer:
		var extra []string
		if n.Timer != nil {
			extra = argParams(n.Timer.Args)
		}
		return []string{fmt.Sprintf("timer[%s]", joinParams(n, extra))}, nil

	case scene.TypeChoices:
		var extra []string
		question := ""
		if c := n.Choices; c != nil {
			if len(c.Options) > 0 {
				parts := make([]string, len(c.Options))
				for i, opt := range c.Options {
					parts[i] = opt.Label + ":" + opt.Color
				}
				extra = append(extra, "choices="+quoteParam("{"+strings.Join(parts, ",")+"}"))
			}
			if c.Bullets != "" && c.Bullets != "A" {
				extra = append(extra, "bullets="+quoteParam(c.Bullets))
			}
			question = strings.TrimRight(c.Question, "\n")
		}
		lines := []string{fmt.Sprintf("choices[%s]:", joinParams(n, extra))}
		if question != "" {
			for _, ln := range strings.Split(question, "\n") {
				lines = append(lines, safeStr(ln))
			}
		}
		return append(lines, ""), nil

	case scene.TypeVideo, scene.TypeGraph, scene.TypeArrow, scene.TypeLine, scene.TypeSound:
		var extra []string
		if n.Raw != nil {
			extra = argParams(n.Raw.Args)
		}
		return []string{fmt.Sprintf("%s[%s]", n.Type, joinParams(n, extra))}, nil
	}

	// Dropping content silently would corrupt the author's file on the
	// next save; fail loudly instead.
	return nil, fmt.Errorf("cannot serialize node %q: unsupported type %q", n.ID, n.Type)
}

// joinParams renders name= first, then type-specific params, then shared
// style params.
func joinParams(n *scene.Node, extra []string) string {
	params := append([]string{"name=" + n.ID}, extra...)
	if n.BgColor != "" {
		params = append(params, "bgColor="+quoteParam(n.BgColor))
	}
	if n.BgAlpha != nil {
		params = append(params, "bgAlpha="+formatNum(*n.BgAlpha))
	}
	if n.BorderRadius != nil {
		params = append(params, "borderRadius="+formatNum(*n.BorderRadius))
	}
	return strings.Join(params, ",")
}

func argParams(args map[string]string) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+quoteParam(args[k]))
	}
	return out
}

// safeStr keeps the parameter grammar unambiguous: embedded double quotes
// become single quotes.
func safeStr(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

// quoteParam quotes a parameter value iff it contains a comma, a closing
// bracket or a newline. Everything else (spaces, colons, slashes) passes
// through raw; the parameter splitter tolerates those.
func quoteParam(v string) string {
	v = safeStr(v)
	if strings.ContainsAny(v, ",]\n") {
		return `"` + v + `"`
	}
	return v
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
