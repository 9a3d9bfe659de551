package overlay

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/prdeck/internal/scene"
)

// NodeAnims holds the at-most-one appear and disappear records of a node.
type NodeAnims struct {
	Appear    *scene.Anim
	Disappear *scene.Anim
}

// ParseAnimations reads animations.csv. Besides the per-node records it
// returns the flat cue list in file order, which drives live playback
// sequencing independently of node declaration order.
//
// how=none and unrecognized when values drop the row silently. how=direct is
// rejected outright: it was renamed to sudden and there is no silent
// compatibility for removed syntax.
func ParseAnimations(path string) (map[string]NodeAnims, []scene.Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return map[string]NodeAnims{}, nil, nil
	}

	cols := indexColumns(records[0])
	out := make(map[string]NodeAnims)
	var cues []scene.Cue
	for _, rec := range records[1:] {
		id := strings.TrimSpace(field(rec, cols, "id"))
		if id == "" {
			continue
		}
		when := strings.ToLower(strings.TrimSpace(field(rec, cols, "when")))
		how := strings.ToLower(strings.TrimSpace(field(rec, cols, "how")))
		if how == "" {
			how = "none"
		}
		if how == "none" || (when != "enter" && when != "exit") {
			continue
		}
		if how == "direct" {
			return nil, nil, fmt.Errorf("%s: animations.csv uses how=direct which is no longer supported; use how=sudden (id=%s)", path, id)
		}
		switch how {
		case "sudden", "fade", "pixelate", "appear":
		default:
			return nil, nil, fmt.Errorf("%s: animations.csv has unsupported how=%q (id=%s); allowed: appear, fade, pixelate, sudden", path, how, id)
		}

		a := &scene.Anim{Kind: how}
		if dur := strings.TrimSpace(field(rec, cols, "durationMs")); dur != "" {
			if v, err := strconv.ParseFloat(dur, 64); err == nil {
				a.DurationMs = int(v)
			}
		}
		if delay := strings.TrimSpace(field(rec, cols, "delayMs")); delay != "" {
			if v, err := strconv.ParseFloat(delay, 64); err == nil {
				a.DelayMs = int(v)
			}
		}
		if from := strings.TrimSpace(field(rec, cols, "from")); from != "" {
			// Compact encoding: "<dir>:<borderFrac>", e.g. "left:0.2".
			if c := strings.Index(from, ":"); c >= 0 {
				dir := strings.TrimSpace(from[:c])
				border := strings.TrimSpace(from[c+1:])
				if dir != "" {
					a.From = dir
				}
				if border != "" {
					if v, err := strconv.ParseFloat(border, 64); err == nil {
						a.BorderFrac = &v
					}
				}
			} else {
				a.From = from
			}
		}

		na := out[id]
		if when == "enter" {
			na.Appear = a
		} else {
			na.Disappear = a
		}
		out[id] = na

		cues = append(cues, scene.Cue{ID: id, When: when})
	}
	return out, cues, nil
}
