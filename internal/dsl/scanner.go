package dsl

import "strings"

// Header is one matched header line of the form keyword[params] with an
// optional trailing colon or inline content.
type Header struct {
	Keyword  string
	Params   Params
	HasColon bool // trailing colon with no inline content: a body follows
	Inline   string
}

// Params is an ordered key=value parameter list. Order is preserved so the
// serializer and template expansion stay deterministic.
type Params struct {
	keys []string
	vals map[string]string
}

// Get returns the value for key, or "".
func (p Params) Get(key string) string { return p.vals[key] }

// Has reports whether key was present.
func (p Params) Has(key string) bool {
	_, ok := p.vals[key]
	return ok
}

// Keys returns the parameter keys in authoring order.
func (p Params) Keys() []string { return p.keys }

// Len returns the number of parameters.
func (p Params) Len() int { return len(p.keys) }

// Map returns a copy of the parameters as a plain map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.vals))
	for k, v := range p.vals {
		out[k] = v
	}
	return out
}

func (p *Params) add(key, val string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = val
}

// TryHeader scans a trimmed line against the header grammar
// ident[params]optional-colon. It reports ok=false for anything else, so
// body consumption can tell content lines from the next header.
func TryHeader(line string) (Header, bool) {
	i := 0
	if i >= len(line) || !isIdentStart(line[i]) {
		return Header{}, false
	}
	for i < len(line) && isIdentPart(line[i]) {
		i++
	}
	kw := line[:i]
	if i >= len(line) || line[i] != '[' {
		return Header{}, false
	}

	// Find the matching close bracket, tolerating quoted literals and
	// nested brackets inside parameter values.
	depth := 0
	inQuotes := false
	end := -1
	j := i
	for ; j < len(line); j++ {
		ch := line[j]
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = j
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 || end == i+1 {
		return Header{}, false
	}

	rest := line[end+1:]
	hasColon := false
	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, ":") {
		hasColon = true
		rest = rest[1:]
	}
	inline := strings.TrimSpace(rest)
	if inline != "" {
		hasColon = false
	}

	return Header{
		Keyword:  kw,
		Params:   SplitParams(line[i+1 : end]),
		HasColon: hasColon,
		Inline:   inline,
	}, true
}

// SplitParams splits a raw parameter string on commas that sit outside
// double quotes and outside any {…}, […] or (…) nesting. Each field must be
// key=value; fields without '=' are ignored. A value wrapped in matching
// double quotes is unquoted.
func SplitParams(s string) Params {
	var parts []string
	var buf strings.Builder
	inQuotes := false
	braceDepth, bracketDepth, parenDepth := 0, 0, 0

	for _, ch := range s {
		if ch == '"' {
			inQuotes = !inQuotes
			buf.WriteRune(ch)
			continue
		}
		if !inQuotes {
			switch ch {
			case '{':
				braceDepth++
			case '}':
				if braceDepth > 0 {
					braceDepth--
				}
			case '[':
				bracketDepth++
			case ']':
				if bracketDepth > 0 {
					bracketDepth--
				}
			case '(':
				parenDepth++
			case ')':
				if parenDepth > 0 {
					parenDepth--
				}
			}
		}
		if ch == ',' && !inQuotes && braceDepth == 0 && bracketDepth == 0 && parenDepth == 0 {
			parts = append(parts, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		buf.WriteRune(ch)
	}
	if p := strings.TrimSpace(buf.String()); p != "" {
		parts = append(parts, p)
	}

	var out Params
	for _, part := range parts {
		eq := strings.Index(part, "=")
		if eq < 0 {
			continue
		}
		k := strings.TrimSpace(part[:eq])
		v := strings.TrimSpace(part[eq+1:])
		out.add(k, unquote(v))
	}
	return out
}

// splitTopLevel splits on commas outside double quotes only. Used by the
// choices option mini-parser, where braces have already been stripped.
func splitTopLevel(s string) []string {
	var parts []string
	var buf strings.Builder
	inQuotes := false
	for _, ch := range s {
		if ch == '"' {
			inQuotes = !inQuotes
			buf.WriteRune(ch)
			continue
		}
		if ch == ',' && !inQuotes {
			parts = append(parts, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		buf.WriteRune(ch)
	}
	if p := strings.TrimSpace(buf.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
