package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/parser"
	"github.com/shibukawa/modelexpr/typeinference"
)

// Sentinel errors
var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrDivideByZero    = errors.New("attempted to divide by zero")
	ErrEmptySequence   = errors.New("sequence contains no matching element")
)

// frame holds the parameter slots of one invocation. Closures of list
// operators write the current element into their slot.
type frame struct {
	slots []any
}

type evalFunc func(f *frame) (any, error)

// Program is a compiled expression. It holds no mutable state and may be
// invoked concurrently.
type Program struct {
	tree *parser.Tree
	eval evalFunc
}

// Compile lowers a parsed tree into closures.
func Compile(tree *parser.Tree) (*Program, error) {
	eval, err := compileNode(tree.Body)
	if err != nil {
		return nil, err
	}

	return &Program{tree: tree, eval: eval}, nil
}

// RequiresRoot reports whether Invoke needs a root instance.
func (p *Program) RequiresRoot() bool {
	return p.tree.Root != nil
}

// Invoke evaluates the program against root. Expressions parsed without a
// root type ignore it.
//
// A member access or list operator applied to null yields null whatever the
// static type of the node, so a result typed as a non-nullable value (int for
// Manager.Reports.Count()) is still null when a navigation on the way to it
// passes through a null reference.
func (p *Program) Invoke(root model.Instance) (result any, err error) {
	f := &frame{slots: make([]any, p.tree.Slots)}

	if p.tree.Root != nil {
		rootType := p.tree.RootType()

		switch {
		case root == nil:
			return nil, fmt.Errorf("%w: %s", modelexpr.ErrMissingRoot, rootType.Name())
		case !root.Type().IsSubtypeOf(rootType):
			return nil, fmt.Errorf("%w: expected %s, got %s", modelexpr.ErrWrongRootType, rootType.Name(), root.Type().Name())
		}

		f.slots[p.tree.Root.Slot] = root
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", modelexpr.ErrEvaluation, r)
		}
	}()

	result, err = p.eval(f)
	if err != nil && !errors.Is(err, modelexpr.ErrEvaluation) {
		err = fmt.Errorf("%w: %w", modelexpr.ErrEvaluation, err)
	}

	return result, err
}

// compileNode compiles a single tree node
func compileNode(node parser.Node) (evalFunc, error) {
	switch n := node.(type) {
	case *parser.Literal:
		v := n.Value
		return func(*frame) (any, error) { return v, nil }, nil
	case *parser.Parameter:
		slot := n.Slot
		return func(f *frame) (any, error) { return f.slots[slot], nil }, nil
	case *parser.MemberAccess:
		return compileMemberAccess(n)
	case *parser.Call:
		return compileCall(n)
	case *parser.Conditional:
		return compileConditional(n)
	case *parser.Binary:
		return compileBinary(n)
	case *parser.Unary:
		return compileUnary(n)
	case *parser.Convert:
		return compileConvert(n)
	case *parser.Aggregate:
		return compileAggregate(n)
	case *parser.New:
		return compileNew(n)
	case *parser.ArrayLiteral:
		return compileArrayLiteral(n)
	}

	return nil, fmt.Errorf("%w: %T", ErrUnknownNodeType, node)
}

func compileNodes(nodes []parser.Node) ([]evalFunc, error) {
	evals := make([]evalFunc, len(nodes))

	for i, n := range nodes {
		eval, err := compileNode(n)
		if err != nil {
			return nil, err
		}

		evals[i] = eval
	}

	return evals, nil
}

// compileMemberAccess reads a backing field directly when the property has
// one and goes through Instance.Get otherwise. A null target yields null.
func compileMemberAccess(n *parser.MemberAccess) (evalFunc, error) {
	target, err := compileNode(n.Target)
	if err != nil {
		return nil, err
	}

	if n.Property == nil {
		field := n.Field

		return func(f *frame) (any, error) {
			v, err := target(f)
			if err != nil || v == nil {
				return nil, err
			}

			r, ok := v.(*typeinference.Record)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not a projection", modelexpr.ErrEvaluation, v)
			}

			return r.Values[field], nil
		}, nil
	}

	prop := n.Property

	if prop.HasField() && !prop.Static && prop.Compute == nil {
		slot := prop.Slot

		return func(f *frame) (any, error) {
			v, err := target(f)
			if err != nil || v == nil {
				return nil, err
			}

			if fr, ok := v.(model.FieldReader); ok {
				return fr.Field(slot), nil
			}

			return readProperty(v, prop)
		}, nil
	}

	return func(f *frame) (any, error) {
		v, err := target(f)
		if err != nil || v == nil {
			return nil, err
		}

		return readProperty(v, prop)
	}, nil
}

func readProperty(v any, prop *model.Property) (any, error) {
	inst, ok := v.(model.Instance)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no property %s", modelexpr.ErrEvaluation, v, prop.Name)
	}

	return inst.Get(prop), nil
}

func compileCall(n *parser.Call) (evalFunc, error) {
	args, err := compileNodes(n.Args)
	if err != nil {
		return nil, err
	}

	sig := n.Signature
	params := n.Match.Params
	rest, spread := n.Match.RestIndex, n.Match.Spread

	var receiver evalFunc

	if n.Kind == parser.CallMember || n.Kind == parser.CallIndexer {
		if receiver, err = compileNode(n.Target); err != nil {
			return nil, err
		}
	}

	return func(f *frame) (any, error) {
		values := make([]any, 0, len(args)+1)

		if receiver != nil {
			recv, err := receiver(f)
			if err != nil {
				return nil, err
			}

			if recv == nil && !sig.AcceptsNull {
				return nil, nil
			}

			values = append(values, recv)
		}

		offset := len(values)

		for i, arg := range args {
			v, err := arg(f)
			if err != nil {
				return nil, err
			}

			if v == nil && params[i].IsValue() && !params[i].CanBeNull() {
				return nil, nil
			}

			values = append(values, v)
		}

		if rest >= 0 {
			if spread {
				values[offset+rest] = itemsOf(values[offset+rest])
			} else {
				packed := append([]any(nil), values[offset+rest:]...)
				values = append(values[:offset+rest], packed)
			}
		}

		result, err := sig.Invoke(values)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", modelexpr.ErrEvaluation, sig.Name, err)
		}

		return result, nil
	}, nil
}

func compileConditional(n *parser.Conditional) (evalFunc, error) {
	evals, err := compileNodes([]parser.Node{n.Test, n.IfTrue, n.IfFalse})
	if err != nil {
		return nil, err
	}

	test, ifTrue, ifFalse := evals[0], evals[1], evals[2]

	return func(f *frame) (any, error) {
		t, err := test(f)
		if err != nil {
			return nil, err
		}

		if truthy(t) {
			return ifTrue(f)
		}

		return ifFalse(f)
	}, nil
}

// truthy treats a null condition as false.
func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func compileBinary(n *parser.Binary) (evalFunc, error) {
	evals, err := compileNodes([]parser.Node{n.Left, n.Right})
	if err != nil {
		return nil, err
	}

	left, right := evals[0], evals[1]
	op := n.Op

	switch {
	case op == typeinference.OpAnd || op == typeinference.OpOr:
		return logical(op, left, right), nil
	case op == typeinference.OpConcat:
		return func(f *frame) (any, error) {
			l, r, err := both(f, left, right)
			if err != nil {
				return nil, err
			}

			return text(l) + text(r), nil
		}, nil
	case op.IsEquality():
		return func(f *frame) (any, error) {
			l, r, err := both(f, left, right)
			if err != nil {
				return nil, err
			}

			return typeinference.ValuesEqual(l, r) == (op == typeinference.OpEqual), nil
		}, nil
	case op.IsComparison():
		return func(f *frame) (any, error) {
			l, r, err := both(f, left, right)
			if err != nil || l == nil || r == nil {
				return false, err
			}

			c, err := typeinference.CompareValues(l, r)
			if err != nil {
				return nil, err
			}

			return relational(op, c), nil
		}, nil
	}

	return func(f *frame) (any, error) {
		l, r, err := both(f, left, right)
		if err != nil || l == nil || r == nil {
			return nil, err
		}

		return arithmetic(op, l, r)
	}, nil
}

func both(f *frame, left, right evalFunc) (any, any, error) {
	l, err := left(f)
	if err != nil {
		return nil, nil, err
	}

	r, err := right(f)
	if err != nil {
		return nil, nil, err
	}

	return l, r, nil
}

// logical evaluates && and || with short circuit and three-valued logic for
// nullable operands.
func logical(op typeinference.Operator, left, right evalFunc) evalFunc {
	short := op == typeinference.OpOr

	return func(f *frame) (any, error) {
		l, err := left(f)
		if err != nil {
			return nil, err
		}

		if b, ok := l.(bool); ok && b == short {
			return short, nil
		}

		r, err := right(f)
		if err != nil {
			return nil, err
		}

		if b, ok := r.(bool); ok && b == short {
			return short, nil
		}

		if l == nil || r == nil {
			return nil, nil
		}

		return !short, nil
	}
}

func text(v any) string {
	if v == nil {
		return ""
	}

	return typeinference.FormatValue(v)
}

func compileUnary(n *parser.Unary) (evalFunc, error) {
	operand, err := compileNode(n.Operand)
	if err != nil {
		return nil, err
	}

	op := n.Op

	return func(f *frame) (any, error) {
		v, err := operand(f)
		if err != nil || v == nil {
			return nil, err
		}

		if op == typeinference.OpNot {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: ! applied to %T", modelexpr.ErrEvaluation, v)
			}

			return !b, nil
		}

		return negate(v)
	}, nil
}

func compileConvert(n *parser.Convert) (evalFunc, error) {
	operand, err := compileNode(n.Operand)
	if err != nil {
		return nil, err
	}

	to := n.ResultType()
	if !to.IsValue() || to.Underlying().Equal(n.Operand.ResultType().Underlying()) {
		return operand, nil
	}

	return func(f *frame) (any, error) {
		v, err := operand(f)
		if err != nil || v == nil {
			return nil, err
		}

		return typeinference.ConvertValue(v, to)
	}, nil
}

func compileNew(n *parser.New) (evalFunc, error) {
	fields, err := compileNodes(n.Fields)
	if err != nil {
		return nil, err
	}

	record := n.Record

	return func(f *frame) (any, error) {
		values := make([]any, len(fields))

		for i, field := range fields {
			v, err := field(f)
			if err != nil {
				return nil, err
			}

			values[i] = v
		}

		return &typeinference.Record{Type: record, Values: values}, nil
	}, nil
}

func compileArrayLiteral(n *parser.ArrayLiteral) (evalFunc, error) {
	items, err := compileNodes(n.Items)
	if err != nil {
		return nil, err
	}

	elem := n.ResultType().ElemType()

	return func(f *frame) (any, error) {
		values := make([]any, len(items))

		for i, item := range items {
			v, err := item(f)
			if err != nil {
				return nil, err
			}

			values[i] = v
		}

		return newList(elem, values), nil
	}, nil
}

// Describe renders the lowering of a tree, one line per node, for
// diagnostics.
func Describe(tree *parser.Tree) string {
	var sb strings.Builder

	var visit func(n parser.Node, depth int)
	visit = func(n parser.Node, depth int) {
		fmt.Fprintf(&sb, "%s%s %s : %s\n", strings.Repeat("  ", depth), n.Type(), describeNode(n), n.ResultType())

		for _, child := range parser.Children(n) {
			visit(child, depth+1)
		}
	}

	visit(tree.Body, 0)

	return sb.String()
}

func describeNode(n parser.Node) string {
	switch tn := n.(type) {
	case *parser.MemberAccess:
		if tn.Property != nil && tn.Property.HasField() && tn.Property.Compute == nil && !tn.Property.Static {
			return fmt.Sprintf("%s [field %d]", tn.Name, tn.Property.Slot)
		}

		return tn.Name
	case *parser.Call:
		return tn.Signature.String()
	case *parser.Binary:
		return tn.Op.String()
	case *parser.Unary:
		return tn.Op.String()
	case *parser.Aggregate:
		return tn.Op.String()
	case *parser.Parameter:
		return fmt.Sprintf("%s [slot %d]", tn.Name, tn.Slot)
	case *parser.Literal:
		return tn.String()
	}

	return ""
}
