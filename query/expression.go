// Package query is the entry point of the engine: it parses expression text
// against a model type into an Expression, which compiles and derives its
// dependency path on first use. Parsed expressions are shared through a
// process-wide cache.
package query

import (
	"fmt"
	"sync"
	"time"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/compiler"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/parser"
	"github.com/shibukawa/modelexpr/path"
	"github.com/shibukawa/modelexpr/typeinference"
)

// Options controls Parse.
type Options struct {
	// Dialect selects the surface grammar. The empty value is DialectNative.
	Dialect modelexpr.Dialect
	// Expected is the required result type; Invalid accepts any type.
	Expected typeinference.Type
	// Values are externally supplied named values.
	Values map[string]any
	// Functions is the external function catalog.
	Functions typeinference.SignatureProvider
	// MaxDepth limits expression nesting. Zero selects the default.
	MaxDepth int
	// Logger receives parse, cache, compile and path events.
	Logger modelexpr.LoggerFunc
	// NoCache bypasses the expression cache.
	NoCache bool
}

func (o Options) parserOptions() parser.Options {
	return parser.Options{
		Dialect:   o.Dialect,
		Expected:  o.Expected,
		Values:    o.Values,
		Functions: o.Functions,
		MaxDepth:  o.MaxDepth,
	}
}

// Expression is a parsed, type-checked expression. Its program and path
// are each built once, on first use, and are immutable afterwards. An
// Expression is safe for concurrent use.
type Expression struct {
	tree   *parser.Tree
	logger modelexpr.LoggerFunc

	programOnce sync.Once
	program     *compiler.Program
	programErr  error

	pathOnce sync.Once
	path     *path.Path
}

// Parse parses text against root, a nil root parsing an expression without
// "it". Results are shared through the default cache unless opts.NoCache
// is set or opts carries Values or Functions, which the cache key cannot
// capture.
func Parse(root *model.Type, text string, opts Options) (*Expression, error) {
	if opts.NoCache || opts.Values != nil || opts.Functions != nil {
		return parse(root, text, opts)
	}

	return defaultCache.Parse(root, text, opts)
}

func parse(root *model.Type, text string, opts Options) (*Expression, error) {
	start := time.Now()
	tree, err := parser.Parse(root, text, opts.parserOptions())

	opts.Logger.Log(modelexpr.LogEntry{
		Event:    modelexpr.LogEventParse,
		RootType: typeName(root),
		Text:     text,
		Dialect:  opts.Dialect,
		Duration: time.Since(start),
		Err:      err,
	})

	if err != nil {
		return nil, err
	}

	return &Expression{tree: tree, logger: opts.Logger}, nil
}

// FromTree wraps an already parsed tree.
func FromTree(tree *parser.Tree) *Expression {
	return &Expression{tree: tree}
}

func typeName(t *model.Type) string {
	if t == nil {
		return ""
	}

	return t.Name()
}

// Tree returns the annotated expression tree.
func (e *Expression) Tree() *parser.Tree {
	return e.tree
}

// Source returns the expression text.
func (e *Expression) Source() string {
	return e.tree.Source
}

// Dialect returns the dialect the expression was parsed with.
func (e *Expression) Dialect() modelexpr.Dialect {
	return e.tree.Dialect
}

// RootType returns the model type of "it", or nil.
func (e *Expression) RootType() *model.Type {
	return e.tree.RootType()
}

// ResultType returns the static result type. Invoke may still return null
// when a navigation passes through a null reference.
func (e *Expression) ResultType() typeinference.Type {
	return e.tree.ResultType()
}

// RequiresRoot reports whether Invoke needs a root instance.
func (e *Expression) RequiresRoot() bool {
	return e.tree.Root != nil
}

func (e *Expression) String() string {
	return e.tree.Body.String()
}

// Program returns the compiled program, compiling it on first use.
func (e *Expression) Program() (*compiler.Program, error) {
	e.programOnce.Do(func() {
		start := time.Now()
		e.program, e.programErr = compiler.Compile(e.tree)

		e.logger.Log(modelexpr.LogEntry{
			Event:    modelexpr.LogEventCompile,
			RootType: typeName(e.RootType()),
			Text:     e.Source(),
			Dialect:  e.Dialect(),
			Duration: time.Since(start),
			Err:      e.programErr,
		})
	})

	return e.program, e.programErr
}

// Invoke evaluates the expression against root. root must be nil for
// expressions parsed without a root type.
func (e *Expression) Invoke(root model.Instance) (any, error) {
	program, err := e.Program()
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", e.Source(), err)
	}

	return program.Invoke(root)
}

// Path returns the properties the result depends on, building it on first
// use.
func (e *Expression) Path() *path.Path {
	e.pathOnce.Do(func() {
		start := time.Now()
		e.path = path.FromTree(e.tree)

		e.logger.Log(modelexpr.LogEntry{
			Event:    modelexpr.LogEventPath,
			RootType: typeName(e.RootType()),
			Text:     e.Source(),
			Dialect:  e.Dialect(),
			Duration: time.Since(start),
		})
	})

	return e.path
}
