package modelexpr

import (
	"fmt"
	"strings"
)

// Dialect selects one of the two surface grammars of the expression language.
// This type is shared across all packages
type Dialect string

const (
	// DialectNative uses '.' for member access, symbolic operators and "double quoted" strings.
	DialectNative Dialect = "native"
	// DialectOData uses '/' for member access, eq/ne/gt/ge/lt/le and 'single quoted' strings.
	DialectOData Dialect = "odata"
)

// ParseDialect converts a configuration string to a Dialect. The empty string
// selects DialectNative.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return DialectNative, nil
	case "odata":
		return DialectOData, nil
	default:
		return "", fmt.Errorf("%w: unknown dialect '%s': must be one of native, odata", ErrConfigValidation, s)
	}
}

// MemberSeparator returns the rune that separates member accesses.
func (d Dialect) MemberSeparator() rune {
	if d == DialectOData {
		return '/'
	}

	return '.'
}

// StringQuote returns the rune that delimits string literals.
func (d Dialect) StringQuote() rune {
	if d == DialectOData {
		return '\''
	}

	return '"'
}

// Position represents a position in the source text.
// Offset is the byte offset (0-based), Line/Column are 1-based for error reporting.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line L, column C".
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}
