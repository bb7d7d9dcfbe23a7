package modelexpr

import (
	"fmt"
	"strings"
)

// FormatError renders err with a caret-annotated snippet of src when err is a
// structured *Error. Other errors are rendered with Error() unchanged.
//
//	SemanticError at 1:9: unknown identifier (Bogus)
//
//	   1 | Manager.Bogus
//	     |         ^
func FormatError(err error, src string) string {
	e, ok := AsError(err)
	if !ok {
		return err.Error()
	}

	lines := strings.Split(src, "\n")

	line := max(e.Position.Line, 1)
	line = min(line, len(lines))
	col := max(e.Position.Column, 1)

	var b strings.Builder

	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", e.Kind, line, col, e.Message())

	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}

	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))

	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}

	return b.String()
}
