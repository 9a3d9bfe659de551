package dsl

import "fmt"

// ParseError is a fatal grammar or semantic error. It carries the offending
// source line so callers (e.g. an HTTP boundary) can surface exact context.
type ParseError struct {
	Line    int    // 1-based line number, 0 when not line-bound
	Text    string // offending raw line, may be empty
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Text != "" {
		return fmt.Sprintf("L%d: %s: %s", e.Line, e.Message, e.Text)
	}
	if e.Line > 0 {
		return fmt.Sprintf("L%d: %s", e.Line, e.Message)
	}
	return e.Message
}

func parseErrorf(line int, text, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Text: text, Message: fmt.Sprintf(format, args...)}
}
