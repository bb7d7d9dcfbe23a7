package parser

import (
	"fmt"
	"strings"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/typeinference"
	"github.com/shopspring/decimal"
)

// NodeType represents the type of an expression node.
type NodeType int

const (
	// UNKNOWN represents an unspecified node type.
	UNKNOWN NodeType = iota
	// LITERAL is a constant or an externally supplied value.
	LITERAL
	// PARAMETER is the root instance or a list operator's element.
	PARAMETER
	// MEMBER_ACCESS reads a model property or a projection field.
	MEMBER_ACCESS
	// CALL invokes a host member, constructor, indexer or external function.
	CALL
	// CONDITIONAL is ?:, iif() or if/then/else.
	CONDITIONAL
	// BINARY is a binary operator.
	BINARY
	// UNARY is a unary operator.
	UNARY
	// CONVERT is an implicit conversion inserted by the parser.
	CONVERT
	// AGGREGATE applies a list operator.
	AGGREGATE
	// NEW builds a projection record.
	NEW
	// ARRAY_LITERAL builds a list from its items.
	ARRAY_LITERAL
)

var nodeTypeNames = [...]string{
	UNKNOWN:       "UNKNOWN",
	LITERAL:       "LITERAL",
	PARAMETER:     "PARAMETER",
	MEMBER_ACCESS: "MEMBER_ACCESS",
	CALL:          "CALL",
	CONDITIONAL:   "CONDITIONAL",
	BINARY:        "BINARY",
	UNARY:         "UNARY",
	CONVERT:       "CONVERT",
	AGGREGATE:     "AGGREGATE",
	NEW:           "NEW",
	ARRAY_LITERAL: "ARRAY_LITERAL",
}

// String returns string representation of NodeType
func (n NodeType) String() string {
	if n >= 0 && int(n) < len(nodeTypeNames) {
		return nodeTypeNames[n]
	}

	return "UNKNOWN"
}

// Node is a type-annotated expression node. Nodes are immutable once the
// parser returns them.
type Node interface {
	Type() NodeType
	Position() modelexpr.Position
	// ResultType is the static type the node evaluates to.
	ResultType() typeinference.Type
	// String renders the node in native dialect syntax.
	String() string
}

type baseNode struct {
	pos    modelexpr.Position
	result typeinference.Type
}

func (b *baseNode) Position() modelexpr.Position {
	return b.pos
}

func (b *baseNode) ResultType() typeinference.Type {
	return b.result
}

// Literal is a constant. Values supplied through Options.Values are literals
// that remember their name.
type Literal struct {
	baseNode
	Value any
	Name  string
}

func (n *Literal) Type() NodeType { return LITERAL }

func (n *Literal) String() string {
	if n.Name != "" {
		return n.Name
	}

	return formatLiteral(n.Value)
}

func formatLiteral(v any) string {
	switch tv := v.(type) {
	case string:
		return `"` + strings.ReplaceAll(tv, `"`, `""`) + `"`
	case model.Char:
		return "'" + strings.ReplaceAll(tv.String(), "'", "''") + "'"
	case float32:
		return typeinference.FormatValue(tv) + "f"
	case decimal.Decimal:
		return tv.String() + "m"
	}

	return typeinference.FormatValue(v)
}

// Parameter is the root instance ("it" of the whole expression) or the
// element of a list operator. Every reference to a parameter is the same
// node; Slot identifies its storage in an evaluation frame.
type Parameter struct {
	baseNode
	Name string
	Slot int
}

func (n *Parameter) Type() NodeType { return PARAMETER }

func (n *Parameter) String() string { return n.Name }

// MemberAccess reads a model property (Property set) or a projection record
// field (Field >= 0).
type MemberAccess struct {
	baseNode
	Target   Node
	Property *model.Property
	Field    int
	Name     string
}

func (n *MemberAccess) Type() NodeType { return MEMBER_ACCESS }

func (n *MemberAccess) String() string {
	return n.Target.String() + "." + n.Name
}

// CallKind tells how a Call was spelled.
type CallKind int

const (
	// CallMember is an instance member: target.Name(args) or target.Name.
	CallMember CallKind = iota
	// CallStatic is a static member of a type keyword: T.Name(args).
	CallStatic
	// CallConstructor is a conversion or constructor: T(args).
	CallConstructor
	// CallIndexer is target[index].
	CallIndexer
	// CallFunction is an external function: name(args).
	CallFunction
)

// Call invokes a resolved signature. For CallMember and CallIndexer the
// target is passed as the receiver. Args are already converted to the
// matched parameter types.
type Call struct {
	baseNode
	Kind      CallKind
	Target    Node
	Owner     string // type keyword of static members and constructors
	Signature *typeinference.Signature
	Match     typeinference.Match
	Args      []Node
	// Lifted is set when a nullable argument was unwrapped to reach the
	// signature; a null argument then yields null.
	Lifted bool
}

func (n *Call) Type() NodeType { return CALL }

func (n *Call) String() string {
	args := joinNodes(n.Args)

	switch n.Kind {
	case CallStatic:
		if n.Signature.Property {
			return n.Owner + "." + n.Signature.Name
		}

		return fmt.Sprintf("%s.%s(%s)", n.Owner, n.Signature.Name, args)
	case CallConstructor:
		return fmt.Sprintf("%s(%s)", n.Owner, args)
	case CallIndexer:
		return fmt.Sprintf("%s[%s]", n.Target, args)
	case CallFunction:
		return fmt.Sprintf("%s(%s)", n.Signature.Name, args)
	}

	if n.Signature.Property {
		return n.Target.String() + "." + n.Signature.Name
	}

	return fmt.Sprintf("%s.%s(%s)", n.Target, n.Signature.Name, args)
}

// Conditional selects one of two branches.
type Conditional struct {
	baseNode
	Test    Node
	IfTrue  Node
	IfFalse Node
}

func (n *Conditional) Type() NodeType { return CONDITIONAL }

func (n *Conditional) String() string {
	return fmt.Sprintf("iif(%s, %s, %s)", n.Test, n.IfTrue, n.IfFalse)
}

// Binary applies a binary operator. Signature is nil for equality between
// references and enumerations and for string concatenation; the operands
// are then compared or joined as they are.
type Binary struct {
	baseNode
	Op        typeinference.Operator
	Left      Node
	Right     Node
	Signature *typeinference.Signature
	Lifted    bool
}

func (n *Binary) Type() NodeType { return BINARY }

func (n *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// Unary applies - or !.
type Unary struct {
	baseNode
	Op      typeinference.Operator
	Operand Node
	Lifted  bool
}

func (n *Unary) Type() NodeType { return UNARY }

func (n *Unary) String() string {
	return n.Op.String() + n.Operand.String()
}

// Convert converts its operand to the node's result type.
type Convert struct {
	baseNode
	Operand Node
}

func (n *Convert) Type() NodeType { return CONVERT }

func (n *Convert) String() string { return n.Operand.String() }

// Aggregate applies a list operator to Source. Element is the per-element
// parameter visible inside Arg; it is nil for Contains and Except, whose
// argument belongs to the enclosing scope.
type Aggregate struct {
	baseNode
	Source    Node
	Op        typeinference.AggregateOp
	Element   *Parameter
	Arg       Node
	Signature *typeinference.Signature
}

func (n *Aggregate) Type() NodeType { return AGGREGATE }

func (n *Aggregate) String() string {
	arg := ""
	if n.Arg != nil {
		arg = n.Arg.String()
	}

	return fmt.Sprintf("%s.%s(%s)", n.Source, n.Op, arg)
}

// New builds a projection record; Fields follow Record.Fields.
type New struct {
	baseNode
	Record *typeinference.RecordType
	Fields []Node
}

func (n *New) Type() NodeType { return NEW }

func (n *New) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = fmt.Sprintf("%s as %s", f, n.Record.Fields[i].Name)
	}

	return "new(" + strings.Join(parts, ", ") + ")"
}

// ArrayLiteral builds a list; Items are converted to the element type.
type ArrayLiteral struct {
	baseNode
	Items []Node
}

func (n *ArrayLiteral) Type() NodeType { return ARRAY_LITERAL }

func (n *ArrayLiteral) String() string {
	return "[" + joinNodes(n.Items) + "]"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, ", ")
}

// Tree is a parsed expression.
type Tree struct {
	Source  string
	Dialect modelexpr.Dialect
	// Root is the root parameter, or nil when the expression was parsed
	// without a root type.
	Root *Parameter
	Body Node
	// Slots is the number of parameter slots an evaluation frame needs.
	Slots int
}

// ResultType returns the static type of the expression.
func (t *Tree) ResultType() typeinference.Type {
	return t.Body.ResultType()
}

// RootType returns the model type of the root parameter, or nil.
func (t *Tree) RootType() *model.Type {
	if t.Root == nil {
		return nil
	}

	return t.Root.ResultType().Model
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the direct sub-expressions of n in evaluation order.
func Children(n Node) []Node {
	switch tn := n.(type) {
	case *MemberAccess:
		return []Node{tn.Target}
	case *Call:
		if tn.Target != nil {
			return append([]Node{tn.Target}, tn.Args...)
		}

		return tn.Args
	case *Conditional:
		return []Node{tn.Test, tn.IfTrue, tn.IfFalse}
	case *Binary:
		return []Node{tn.Left, tn.Right}
	case *Unary:
		return []Node{tn.Operand}
	case *Convert:
		return []Node{tn.Operand}
	case *Aggregate:
		if tn.Arg != nil {
			return []Node{tn.Source, tn.Arg}
		}

		return []Node{tn.Source}
	case *New:
		return tn.Fields
	case *ArrayLiteral:
		return tn.Items
	}

	return nil
}
