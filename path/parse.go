package path

import (
	"errors"
	"slices"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

// Options controls path-string parsing.
type Options struct {
	// MaxDepth limits '{ }' group nesting. Zero selects
	// modelexpr.DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions uses the default nesting limit.
var DefaultOptions = Options{}

// errNoMatch unwinds the builder when a step matches no active branch.
var errNoMatch = errors.New("no match")

// Parse builds the path described by text against root. A well-formed path
// whose steps cannot be resolved yields (nil, nil): "no path" is a result,
// not an error. Malformed syntax, navigation through a value property and
// incompatible type filters fail with a *modelexpr.Error.
func Parse(root *model.Type, text string, opts Options) (*Path, error) {
	tokens, err := tokenizer.Tokenize(text, modelexpr.DialectNative)
	if err != nil {
		return nil, err
	}

	tokens = tokens[:len(tokens)-1] // EOF

	if err := checkGroups(tokens, opts); err != nil {
		return nil, err
	}

	chain, err := parseChain(tokens, text)
	if err != nil {
		return nil, err
	}

	b := &builder{path: newPath(root, text), terminal: make(map[*Step]bool)}

	ends, err := b.chain(chain, []branch{{typ: root}})
	if errors.Is(err, errNoMatch) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	for _, end := range ends {
		if end.parent != nil {
			b.terminal[end.parent] = true
		}
	}

	b.path.first = prune(b.path.first, b.terminal)
	if b.path.IsEmpty() {
		return nil, nil
	}

	return b.path, nil
}

// checkGroups validates brace nesting before the grammar runs, so that
// unmatched braces are reported where they are and deep nesting never
// reaches the recursive grammar.
func checkGroups(tokens []tokenizer.Token, opts Options) error {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = modelexpr.DefaultMaxDepth
	}

	var open []tokenizer.Token

	for _, t := range tokens {
		switch t.Type {
		case tokenizer.OPENED_BRACE:
			open = append(open, t)
			if len(open) > maxDepth {
				return modelexpr.NewError(modelexpr.ErrDepthExceeded, t.Position, maxDepth)
			}
		case tokenizer.CLOSED_BRACE:
			if len(open) == 0 {
				return modelexpr.NewError(modelexpr.ErrUnmatchedDelimiter, t.Position, t.Value)
			}

			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		t := open[len(open)-1]
		return modelexpr.NewError(modelexpr.ErrUnmatchedDelimiter, t.Position, t.Value)
	}

	return nil
}

func parseChain(tokens []tokenizer.Token, text string) ([]*segment, error) {
	if len(tokens) == 0 {
		return nil, modelexpr.NewError(modelexpr.ErrUnexpectedEndOfInput, endOf(text))
	}

	pctx := pc.NewParseContext[item]()

	consumed, match, err := pathGrammar(pctx, toItems(tokens))
	if err != nil || len(match) != 1 {
		return nil, modelexpr.NewError(modelexpr.ErrUnexpectedToken, tokens[0].Position, tokens[0].Value)
	}

	if consumed < len(tokens) {
		t := tokens[consumed]
		return nil, modelexpr.NewError(modelexpr.ErrUnexpectedToken, t.Position, t.Value)
	}

	return match[0].Val.chain, nil
}

func endOf(text string) modelexpr.Position {
	pos := modelexpr.Position{Line: 1, Column: 1}

	for _, r := range text {
		pos.Offset++
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}

// branch is one active route while a path string is resolved: the step it
// ends with (nil at the root) and the model type reached there (nil after a
// value property).
type branch struct {
	parent *Step
	typ    *model.Type
}

type builder struct {
	path     *Path
	terminal map[*Step]bool
}

func (b *builder) chain(chain []*segment, from []branch) ([]branch, error) {
	var err error

	for _, seg := range chain {
		if from, err = b.segment(seg, from); err != nil {
			return nil, err
		}
	}

	return from, nil
}

func (b *builder) segment(seg *segment, from []branch) ([]branch, error) {
	if seg.group != nil {
		var ends []branch

		for _, alt := range seg.group {
			altEnds, err := b.chain(alt, from)
			if err != nil {
				return nil, err
			}

			ends = appendBranches(ends, altEnds...)
		}

		return ends, nil
	}

	filter, err := b.filterType(seg)
	if err != nil {
		return nil, err
	}

	var (
		ends      []branch
		matched   bool
		navigable bool
	)

	for _, br := range from {
		if br.typ == nil {
			continue
		}

		navigable = true

		for _, p := range candidates(br.typ, seg.name) {
			matched = true

			if filter != nil && (!p.IsReference() || !filter.IsSubtypeOf(p.RefType)) {
				continue
			}

			s := b.path.child(br.parent, p, filter)
			ends = appendBranches(ends, branch{parent: s, typ: s.Target()})
		}
	}

	switch {
	case !navigable:
		return nil, modelexpr.NewError(modelexpr.ErrNotReference, seg.pos, seg.name)
	case !matched:
		return nil, errNoMatch
	case len(ends) == 0:
		return nil, modelexpr.NewError(modelexpr.ErrIncompatibleFilter, seg.filterPos, seg.filter, seg.name)
	}

	return ends, nil
}

func (b *builder) filterType(seg *segment) (*model.Type, error) {
	if seg.filter == "" {
		return nil, nil
	}

	var t *model.Type

	ok := false
	if b.path.root != nil {
		t, ok = b.path.root.Registry().TypeByName(seg.filter)
	}

	if !ok {
		return nil, modelexpr.NewError(modelexpr.ErrUnknownFilterType, seg.filterPos, seg.filter)
	}

	return t, nil
}

// candidates returns every distinct non-static property named name declared
// on t, its bases or any of its descendants.
func candidates(t *model.Type, name string) []*model.Property {
	var result []*model.Property

	for _, d := range t.DescendantsInclusive() {
		p, ok := d.Property(name)
		if !ok || p.Static {
			continue
		}

		if !slices.Contains(result, p) {
			result = append(result, p)
		}
	}

	return result
}

func appendBranches(branches []branch, more ...branch) []branch {
	for _, br := range more {
		if !slices.Contains(branches, br) {
			branches = append(branches, br)
		}
	}

	return branches
}

// prune removes every step that neither ends the path nor leads to a step
// that does.
func prune(steps []*Step, terminal map[*Step]bool) []*Step {
	kept := steps[:0]

	for _, s := range steps {
		s.next = prune(s.next, terminal)
		if terminal[s] || len(s.next) > 0 {
			kept = append(kept, s)
		}
	}

	return kept
}
