package parser

import (
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/typeinference"
)

// Options controls parsing.
type Options struct {
	// Dialect selects the surface grammar. The empty value is DialectNative.
	Dialect modelexpr.Dialect
	// Expected is the required result type. The expression is implicitly
	// converted to it, or rejected with ErrExpectedType. Invalid accepts
	// any result type.
	Expected typeinference.Type
	// Values are externally supplied named values. Names are matched
	// case-insensitively and shadow members of "it".
	Values map[string]any
	// Functions is the external function catalog consulted for name(args).
	Functions typeinference.SignatureProvider
	// MaxDepth limits expression nesting. Zero selects
	// modelexpr.DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions parses the native dialect without an expected type.
var DefaultOptions = Options{Dialect: modelexpr.DialectNative}
