package parser

import (
	"strings"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/tokenizer"
	"github.com/shibukawa/modelexpr/typeinference"
)

// Parse parses text against root. A nil root parses an expression without
// an "it" parameter, invocable without a root instance.
func Parse(root *model.Type, text string, opts Options) (*Tree, error) {
	if opts.Dialect == "" {
		opts.Dialect = modelexpr.DialectNative
	}

	tokens, err := tokenizer.Tokenize(text, opts.Dialect)
	if err != nil {
		return nil, err
	}

	p := newParser(tokens, opts)
	tree := &Tree{Source: text, Dialect: opts.Dialect}

	if root != nil {
		tree.Root = p.newParameter("it", typeinference.ModelOf(root), modelexpr.Position{Line: 1, Column: 1})
		p.scopes = append(p.scopes, tree.Root)
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.token.Type != tokenizer.EOF {
		return nil, p.unexpected()
	}

	if opts.Expected.IsValid() {
		promoted, ok := promote(body, opts.Expected, false)
		if !ok {
			return nil, modelexpr.NewError(modelexpr.ErrExpectedType, body.Position(), opts.Expected, body.ResultType())
		}

		body = promoted
	}

	tree.Body = body
	tree.Slots = p.slots

	return tree, nil
}

type parser struct {
	opts     Options
	tokens   []tokenizer.Token
	index    int
	token    tokenizer.Token
	depth    int
	maxDepth int
	scopes   []*Parameter
	slots    int
	values   map[string]any
}

func newParser(tokens []tokenizer.Token, opts Options) *parser {
	p := &parser{
		opts:     opts,
		tokens:   tokens,
		token:    tokens[0],
		maxDepth: opts.MaxDepth,
		values:   make(map[string]any, len(opts.Values)),
	}

	if p.maxDepth <= 0 {
		p.maxDepth = modelexpr.DefaultMaxDepth
	}

	for name, v := range opts.Values {
		if n, ok := v.(int); ok {
			v = int64(n)
		}

		p.values[typeinference.FoldName(name)] = v
	}

	return p
}

func (p *parser) next() {
	if p.index < len(p.tokens)-1 {
		p.index++
		p.token = p.tokens[p.index]
	}
}

func (p *parser) peek() tokenizer.Token {
	if p.index < len(p.tokens)-1 {
		return p.tokens[p.index+1]
	}

	return p.token
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return modelexpr.NewError(modelexpr.ErrDepthExceeded, p.token.Position, p.maxDepth)
	}

	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) newParameter(name string, t typeinference.Type, pos modelexpr.Position) *Parameter {
	param := &Parameter{baseNode: baseNode{pos: pos, result: t}, Name: name, Slot: p.slots}
	p.slots++

	return param
}

// unexpected reports the current token as out of place.
func (p *parser) unexpected() error {
	switch p.token.Type {
	case tokenizer.EOF:
		return modelexpr.NewError(modelexpr.ErrUnexpectedEndOfInput, p.token.Position)
	case tokenizer.CLOSED_PARENS, tokenizer.CLOSED_BRACKET:
		return modelexpr.NewError(modelexpr.ErrUnmatchedDelimiter, p.token.Position, p.token.Value)
	default:
		return modelexpr.NewError(modelexpr.ErrUnexpectedToken, p.token.Position, p.token.Value)
	}
}

// closing consumes the delimiter closing a group opened at open.
func (p *parser) closing(tt tokenizer.TokenType, open tokenizer.Token) error {
	if p.token.Type == tt {
		p.next()
		return nil
	}

	if p.token.Type == tokenizer.EOF {
		return modelexpr.NewError(modelexpr.ErrUnmatchedDelimiter, open.Position, open.Value)
	}

	return p.unexpected()
}

func (p *parser) isWord(word string) bool {
	return p.token.Type == tokenizer.IDENTIFIER && p.token.Is(word)
}

func (p *parser) odata() bool {
	return p.opts.Dialect == modelexpr.DialectOData
}

func (p *parser) isSeparator(tok tokenizer.Token) bool {
	if p.odata() {
		return tok.Type == tokenizer.SLASH
	}

	return tok.Type == tokenizer.DOT
}

// parseExpression parses the lowest precedence level: if/then/else and ?:.
func (p *parser) parseExpression() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.isWord("if") {
		return p.parseIfThenElse()
	}

	expr, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	if p.token.Type != tokenizer.QUESTION {
		return expr, nil
	}

	pos := p.token.Position
	p.next()

	ifTrue, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.token.Type != tokenizer.COLON {
		return nil, p.unexpected()
	}

	p.next()

	ifFalse, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return conditional(pos, expr, ifTrue, ifFalse)
}

func (p *parser) parseIfThenElse() (Node, error) {
	pos := p.token.Position
	p.next()

	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.isWord("then") {
		return nil, p.unexpected()
	}

	p.next()

	ifTrue, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.isWord("else") {
		return nil, p.unexpected()
	}

	p.next()

	ifFalse, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return conditional(pos, test, ifTrue, ifFalse)
}

// binaryLevel parses operand (op operand)* for one precedence level.
func (p *parser) binaryLevel(operand func() (Node, error), operator func() (typeinference.Operator, bool)) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := operator()
		if !ok {
			return left, nil
		}

		pos := p.token.Position
		p.next()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left, err = p.binary(pos, op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseLogicalOr() (Node, error) {
	return p.binaryLevel(p.parseLogicalAnd, func() (typeinference.Operator, bool) {
		return typeinference.OpOr, p.token.Type == tokenizer.DOUBLE_BAR || p.isWord("or")
	})
}

func (p *parser) parseLogicalAnd() (Node, error) {
	return p.binaryLevel(p.parseComparison, func() (typeinference.Operator, bool) {
		return typeinference.OpAnd, p.token.Type == tokenizer.DOUBLE_AMPERSAND || p.isWord("and")
	})
}

var comparisonWords = map[string]typeinference.Operator{
	"eq": typeinference.OpEqual,
	"ne": typeinference.OpNotEqual,
	"lt": typeinference.OpLess,
	"le": typeinference.OpLessEqual,
	"gt": typeinference.OpGreater,
	"ge": typeinference.OpGreaterEqual,
}

func (p *parser) comparisonOperator() (typeinference.Operator, bool) {
	switch p.token.Type {
	case tokenizer.EQUAL:
		return typeinference.OpEqual, true
	case tokenizer.NOT_EQUAL:
		return typeinference.OpNotEqual, true
	case tokenizer.LESS_THAN:
		return typeinference.OpLess, true
	case tokenizer.LESS_EQUAL:
		return typeinference.OpLessEqual, true
	case tokenizer.GREATER_THAN:
		return typeinference.OpGreater, true
	case tokenizer.GREATER_EQUAL:
		return typeinference.OpGreaterEqual, true
	case tokenizer.IDENTIFIER:
		if p.odata() {
			op, ok := comparisonWords[strings.ToLower(p.token.Value)]
			return op, ok
		}
	}

	return 0, false
}

func (p *parser) parseComparison() (Node, error) {
	return p.binaryLevel(p.parseAdditive, p.comparisonOperator)
}

func (p *parser) parseAdditive() (Node, error) {
	return p.binaryLevel(p.parseMultiplicative, func() (typeinference.Operator, bool) {
		switch {
		case p.token.Type == tokenizer.PLUS:
			return typeinference.OpAdd, true
		case p.token.Type == tokenizer.MINUS:
			return typeinference.OpSubtract, true
		case p.token.Type == tokenizer.AMPERSAND:
			return typeinference.OpConcat, true
		case p.odata() && p.isWord("add"):
			return typeinference.OpAdd, true
		case p.odata() && p.isWord("sub"):
			return typeinference.OpSubtract, true
		}

		return 0, false
	})
}

func (p *parser) parseMultiplicative() (Node, error) {
	return p.binaryLevel(p.parseUnary, func() (typeinference.Operator, bool) {
		switch {
		case p.token.Type == tokenizer.ASTERISK:
			return typeinference.OpMultiply, true
		case p.token.Type == tokenizer.SLASH && !p.odata():
			return typeinference.OpDivide, true
		case p.token.Type == tokenizer.PERCENT, p.isWord("mod"):
			return typeinference.OpModulo, true
		case p.odata() && p.isWord("mul"):
			return typeinference.OpMultiply, true
		case p.odata() && p.isWord("div"):
			return typeinference.OpDivide, true
		}

		return 0, false
	})
}

func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos := p.token.Position

	switch {
	case p.token.Type == tokenizer.MINUS:
		p.next()

		if p.token.Type == tokenizer.INTEGER_LITERAL || p.token.Type == tokenizer.REAL_LITERAL {
			literal, err := p.parseNumber("-", pos)
			if err != nil {
				return nil, err
			}

			return p.parsePostfix(literal)
		}

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return unary(pos, typeinference.OpNegate, operand)

	case p.token.Type == tokenizer.EXCLAMATION || p.isWord("not"):
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return unary(pos, typeinference.OpNot, operand)
	}

	return p.parsePrimary()
}

func unary(pos modelexpr.Position, op typeinference.Operator, operand Node) (Node, error) {
	m, outcome := typeinference.Resolve(typeinference.OperatorSignatures(op), arguments([]Node{operand}))
	if outcome != typeinference.Resolved {
		return nil, modelexpr.NewError(modelexpr.ErrIncompatibleOperands, pos, op.String(), operand.ResultType())
	}

	converted, _ := promote(operand, m.Params[0], m.Unwrapped)

	return &Unary{
		baseNode: baseNode{pos: pos, result: liftResult(m)},
		Op:       op,
		Operand:  converted,
		Lifted:   m.Unwrapped,
	}, nil
}

// liftResult returns the result type of a match, nullable when a nullable
// argument was unwrapped to reach it.
func liftResult(m typeinference.Match) typeinference.Type {
	if m.Unwrapped && m.Signature.Result.IsValue() {
		return typeinference.NullableOf(m.Signature.Result)
	}

	return m.Signature.Result
}

func (p *parser) binary(pos modelexpr.Position, op typeinference.Operator, left, right Node) (Node, error) {
	lt, rt := left.ResultType(), right.ResultType()

	switch {
	case op == typeinference.OpConcat, op == typeinference.OpAdd && (lt.IsString() || rt.IsString()):
		return &Binary{
			baseNode: baseNode{pos: pos, result: typeinference.String},
			Op:       typeinference.OpConcat,
			Left:     left,
			Right:    right,
		}, nil

	case op.IsComparison():
		n, err := comparison(pos, op, left, right)
		if err != nil {
			return nil, err
		}

		if p.odata() && op.IsEquality() {
			return dropBoolComparison(n), nil
		}

		return n, nil
	}

	return resolveOperator(pos, op, left, right)
}

func isReferenceLike(t typeinference.Type) bool {
	return t.IsNull() || !t.IsValue()
}

func comparison(pos modelexpr.Position, op typeinference.Operator, left, right Node) (*Binary, error) {
	lt, rt := left.ResultType(), right.ResultType()

	if op.IsEquality() && isReferenceLike(lt) && isReferenceLike(rt) {
		if !typeinference.IsCompatibleWith(rt, lt) && !typeinference.IsCompatibleWith(lt, rt) {
			return nil, modelexpr.NewError(modelexpr.ErrIncompatibleOperands, pos, op.String(), lt, rt)
		}

		return &Binary{baseNode: baseNode{pos: pos, result: typeinference.Bool}, Op: op, Left: left, Right: right}, nil
	}

	if lt.IsEnum() || rt.IsEnum() {
		if n, ok := enumComparison(pos, op, left, right); ok {
			return n, nil
		}
	}

	return resolveOperator(pos, op, left, right)
}

// enumComparison compares enumeration values, converting string literals
// and null to the enumeration type of the other operand.
func enumComparison(pos modelexpr.Position, op typeinference.Operator, left, right Node) (*Binary, bool) {
	lt, rt := left.ResultType(), right.ResultType()

	target := lt
	if !lt.IsEnum() || (rt.IsEnum() && rt.Nullable) {
		target = rt
	}

	if lt.IsEnum() && rt.IsEnum() && lt.Enum != rt.Enum {
		return nil, false
	}

	if lt.IsNull() || rt.IsNull() || lt.Nullable || rt.Nullable {
		target = typeinference.NullableOf(target.Underlying())
	}

	l, ok := promote(left, target, false)
	if !ok {
		return nil, false
	}

	r, ok := promote(right, target, false)
	if !ok {
		return nil, false
	}

	return &Binary{baseNode: baseNode{pos: pos, result: typeinference.Bool}, Op: op, Left: l, Right: r}, true
}

func resolveOperator(pos modelexpr.Position, op typeinference.Operator, left, right Node) (*Binary, error) {
	m, outcome := typeinference.Resolve(typeinference.OperatorSignatures(op), arguments([]Node{left, right}))
	if outcome != typeinference.Resolved {
		return nil, modelexpr.NewError(modelexpr.ErrIncompatibleOperands, pos, op.String(), left.ResultType(), right.ResultType())
	}

	l, _ := promote(left, m.Params[0], m.Unwrapped)
	r, _ := promote(right, m.Params[1], m.Unwrapped)

	result := liftResult(m)
	if op.IsComparison() {
		result = typeinference.Bool
	}

	return &Binary{
		baseNode:  baseNode{pos: pos, result: result},
		Op:        op,
		Left:      l,
		Right:     r,
		Signature: m.Signature,
		Lifted:    m.Unwrapped,
	}, nil
}

// dropBoolComparison rewrites x eq true and x ne false to x, and x eq false
// and x ne true to not x, for a non-nullable boolean x on either side.
func dropBoolComparison(n *Binary) Node {
	operand, b, ok := boolComparison(n.Left, n.Right)
	if !ok {
		operand, b, ok = boolComparison(n.Right, n.Left)
	}

	if !ok {
		return n
	}

	if b == (n.Op == typeinference.OpEqual) {
		return operand
	}

	return &Unary{
		baseNode: baseNode{pos: n.pos, result: typeinference.Bool},
		Op:       typeinference.OpNot,
		Operand:  operand,
	}
}

// boolComparison reports whether other is an unnamed boolean literal and
// operand a non-nullable boolean.
func boolComparison(operand, other Node) (Node, bool, bool) {
	lit, ok := other.(*Literal)
	if !ok || lit.Name != "" {
		return nil, false, false
	}

	b, ok := lit.Value.(bool)
	if !ok || !operand.ResultType().Equal(typeinference.Bool) {
		return nil, false, false
	}

	return operand, b, true
}

func conditional(pos modelexpr.Position, test, ifTrue, ifFalse Node) (Node, error) {
	if !test.ResultType().IsBool() {
		return nil, modelexpr.NewError(modelexpr.ErrConditionNotBool, test.Position(), test.ResultType())
	}

	t, ok := commonType(ifTrue, ifFalse)
	if !ok {
		return nil, modelexpr.NewError(modelexpr.ErrIncompatibleBranches, pos, ifTrue.ResultType(), ifFalse.ResultType())
	}

	ifTrue, _ = promote(ifTrue, t, false)
	ifFalse, _ = promote(ifFalse, t, false)

	return &Conditional{
		baseNode: baseNode{pos: pos, result: t},
		Test:     test,
		IfTrue:   ifTrue,
		IfFalse:  ifFalse,
	}, nil
}
