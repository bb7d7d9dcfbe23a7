package path

import (
	"slices"

	"github.com/shibukawa/modelexpr/parser"
	"github.com/shibukawa/modelexpr/typeinference"
)

// FromTree builds the path an expression depends on: one step per distinct
// model property access, attached below the step that produced its target.
// An expression without a root or without property accesses yields an empty
// path.
func FromTree(tree *parser.Tree) *Path {
	b := &treeBuilder{
		path:   newPath(tree.RootType(), tree.Source),
		memo:   make(map[parser.Node][]*Step),
		params: make(map[*parser.Parameter][]*Step),
	}

	if tree.Root != nil {
		b.params[tree.Root] = []*Step{nil}
	}

	b.visit(tree.Body)

	return b.path
}

// treeBuilder tracks, for every node, the steps whose targets the node's
// value is drawn from. A nil entry stands for the root instance; a node
// with no origins does not yield model instances from the path.
type treeBuilder struct {
	path   *Path
	memo   map[parser.Node][]*Step
	params map[*parser.Parameter][]*Step
}

// elementOps return elements of their source list.
var elementOps = []typeinference.AggregateOp{
	typeinference.AggFirst, typeinference.AggFirstOrDefault,
	typeinference.AggLast, typeinference.AggLastOrDefault,
	typeinference.AggWhere, typeinference.AggOrderBy, typeinference.AggOrderByDescending,
	typeinference.AggExcept,
}

func (b *treeBuilder) visit(n parser.Node) []*Step {
	if origins, ok := b.memo[n]; ok {
		return origins
	}

	var origins []*Step

	switch tn := n.(type) {
	case *parser.Parameter:
		origins = b.params[tn]

	case *parser.MemberAccess:
		targets := b.visit(tn.Target)

		switch {
		case tn.Property != nil && !tn.Property.Static:
			for _, parent := range targets {
				origins = appendStep(origins, b.path.child(parent, tn.Property, nil))
			}
		case tn.Field >= 0:
			if record, ok := tn.Target.(*parser.New); ok {
				origins = b.visit(record.Fields[tn.Field])
			}
		}

	case *parser.Aggregate:
		source := b.visit(tn.Source)
		if tn.Element != nil {
			b.params[tn.Element] = source
		}

		var arg []*Step
		if tn.Arg != nil {
			arg = b.visit(tn.Arg)
		}

		switch {
		case slices.Contains(elementOps, tn.Op):
			origins = source
		case tn.Op == typeinference.AggSelect:
			origins = arg
		}

	case *parser.Conditional:
		b.visit(tn.Test)
		origins = appendStep(slices.Clone(b.visit(tn.IfTrue)), b.visit(tn.IfFalse)...)

	case *parser.Convert:
		origins = b.visit(tn.Operand)

	case *parser.ArrayLiteral:
		for _, item := range tn.Items {
			origins = appendStep(origins, b.visit(item)...)
		}

	default:
		for _, child := range parser.Children(n) {
			b.visit(child)
		}
	}

	b.memo[n] = origins

	return origins
}

func appendStep(steps []*Step, more ...*Step) []*Step {
	for _, s := range more {
		if !slices.Contains(steps, s) {
			steps = append(steps, s)
		}
	}

	return steps
}
