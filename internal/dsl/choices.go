package dsl

import (
	"fmt"
	"strings"

	"github.com/ivlev/prdeck/internal/scene"
)

// optionPalette assigns colors to options that do not declare one,
// round-robin by option index.
var optionPalette = []string{
	"#4caf50", "#e53935", "#1e88e5", "#ab47bc", "#00bcd4", "#fdd835", "#8d6e63",
}

// ParseChoiceOptions parses a choices={Label:color,Label2,...} argument into
// option records. One layer of enclosing braces/brackets is stripped
// generously, parts split on top-level commas, and each part optionally
// carries a ":color" suffix. Option ids are slugified from the label with
// numeric-suffix disambiguation on collision.
func ParseChoiceOptions(raw string) []scene.ChoiceOption {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for len(s) >= 2 && strings.ContainsRune("{[", rune(s[0])) && strings.ContainsRune("}]", rune(s[len(s)-1])) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	var opts []scene.ChoiceOption
	seen := make(map[string]bool)
	for idx, part := range splitTopLevel(s) {
		if part == "" {
			continue
		}
		label, color := part, ""
		if c := strings.Index(part, ":"); c >= 0 {
			label, color = part[:c], part[c+1:]
		}
		label = strings.TrimSpace(label)
		color = strings.TrimSpace(color)
		if label == "" {
			continue
		}
		if color == "" {
			color = optionPalette[idx%len(optionPalette)]
		}

		id := slugLabel(label)
		base := id
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s%d", base, n)
		}
		seen[id] = true
		opts = append(opts, scene.ChoiceOption{ID: id, Label: label, Color: color})
	}
	return opts
}

// slugLabel turns a label into an id: whitespace becomes '_', anything
// outside [a-zA-Z0-9_] is dropped.
func slugLabel(label string) string {
	var b strings.Builder
	for _, field := range strings.Fields(strings.TrimSpace(label)) {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(field)
	}
	var out strings.Builder
	for _, r := range b.String() {
		if r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out.WriteRune(r)
		}
	}
	if out.Len() == 0 {
		return "option"
	}
	return out.String()
}
