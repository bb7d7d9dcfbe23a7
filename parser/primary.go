package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/tokenizer"
	"github.com/shibukawa/modelexpr/typeinference"
	"github.com/shopspring/decimal"
)

func (p *parser) parsePrimary() (Node, error) {
	expr, err := p.parsePrimaryStart()
	if err != nil {
		return nil, err
	}

	return p.parsePostfix(expr)
}

func (p *parser) parsePostfix(expr Node) (Node, error) {
	var err error

	for {
		switch {
		case p.isSeparator(p.token):
			p.next()

			expr, err = p.parseMemberAccess(expr)
		case p.token.Type == tokenizer.OPENED_BRACKET:
			expr, err = p.parseIndexer(expr)
		default:
			return expr, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parsePrimaryStart() (Node, error) {
	switch p.token.Type {
	case tokenizer.IDENTIFIER:
		return p.parseIdentifier()
	case tokenizer.INTEGER_LITERAL, tokenizer.REAL_LITERAL:
		return p.parseNumber("", p.token.Position)
	case tokenizer.STRING_LITERAL:
		tok := p.token
		p.next()

		return literal(tok.Position, tokenizer.Unquote(tok)), nil
	case tokenizer.CHAR_LITERAL:
		tok := p.token
		p.next()

		runes := []rune(tokenizer.Unquote(tok))
		if len(runes) != 1 {
			return nil, modelexpr.NewError(modelexpr.ErrInvalidCharLiteral, tok.Position, tok.Value)
		}

		return literal(tok.Position, model.Char(runes[0])), nil
	case tokenizer.OPENED_PARENS:
		open := p.token
		p.next()

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if err := p.closing(tokenizer.CLOSED_PARENS, open); err != nil {
			return nil, err
		}

		return expr, nil
	case tokenizer.OPENED_BRACKET:
		return p.parseArrayLiteral()
	}

	return nil, p.unexpected()
}

func literal(pos modelexpr.Position, v any) *Literal {
	return &Literal{baseNode: baseNode{pos: pos, result: typeinference.TypeOfValue(v)}, Value: v}
}

// parseNumber types integer literals by magnitude (int, uint, long, ulong)
// and real literals by suffix: f float, m decimal, otherwise double.
func (p *parser) parseNumber(sign string, pos modelexpr.Position) (Node, error) {
	tok := p.token
	text := sign + tok.Value
	p.next()

	invalid := modelexpr.NewError(modelexpr.ErrInvalidNumber, pos, text)

	if tok.Type == tokenizer.INTEGER_LITERAL {
		if sign == "" {
			u, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return nil, invalid
			}

			switch {
			case u <= math.MaxInt32:
				return literal(pos, int32(u)), nil
			case u <= math.MaxUint32:
				return literal(pos, uint32(u)), nil
			case u <= math.MaxInt64:
				return literal(pos, int64(u)), nil
			default:
				return literal(pos, u), nil
			}
		}

		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, invalid
		}

		if i >= math.MinInt32 {
			return literal(pos, int32(i)), nil
		}

		return literal(pos, i), nil
	}

	body := text
	suffix := strings.ToLower(text[len(text)-1:])

	if suffix == "f" || suffix == "m" || suffix == "d" {
		body = text[:len(text)-1]
	}

	switch suffix {
	case "m":
		d, err := decimal.NewFromString(body)
		if err != nil {
			return nil, invalid
		}

		return literal(pos, d), nil
	case "f":
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return nil, invalid
		}

		return literal(pos, float32(f)), nil
	}

	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, invalid
	}

	return literal(pos, f), nil
}

// parseIdentifier resolves a name: keywords first, then type keywords,
// externally supplied values and functions, then members of the innermost
// "it" that has one.
func (p *parser) parseIdentifier() (Node, error) {
	tok := p.token

	switch {
	case tok.Is("true"), tok.Is("false"):
		p.next()
		return literal(tok.Position, tok.Is("true")), nil
	case tok.Is("null"):
		p.next()
		return literal(tok.Position, nil), nil
	case tok.Is("it"):
		if len(p.scopes) == 0 {
			return nil, modelexpr.NewError(modelexpr.ErrNoItParameter, tok.Position)
		}

		p.next()

		return p.scopes[len(p.scopes)-1], nil
	case tok.Is("iif"):
		return p.parseIif()
	case tok.Is("new"):
		return p.parseNew()
	}

	next := p.peek()

	if k, ok := typeinference.LookupTypeKeyword(tok.Value); ok &&
		(next.Type == tokenizer.OPENED_PARENS || p.isSeparator(next)) {
		return p.parseTypeAccess(k)
	}

	if v, ok := p.values[typeinference.FoldName(tok.Value)]; ok {
		p.next()

		n := literal(tok.Position, v)
		n.Name = tok.Value

		return n, nil
	}

	if next.Type == tokenizer.OPENED_PARENS && p.opts.Functions != nil {
		if sigs := p.opts.Functions.Signatures(tok.Value); len(sigs) > 0 {
			p.next()

			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}

			return call(tok.Position, callSite{kind: CallFunction, name: tok.Value}, sigs, args)
		}
	}

	if len(p.scopes) == 0 {
		return nil, modelexpr.NewError(modelexpr.ErrUnknownIdentifier, tok.Position, tok.Value)
	}

	invoked := next.Type == tokenizer.OPENED_PARENS
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if hasMember(p.scopes[i].ResultType(), tok.Value, invoked) {
			return p.parseMemberAccess(p.scopes[i])
		}
	}

	return p.parseMemberAccess(p.scopes[len(p.scopes)-1])
}

func hasMember(t typeinference.Type, name string, call bool) bool {
	if call {
		if t.IsList() {
			if _, ok := typeinference.LookupAggregate(name); ok {
				return true
			}
		}

		return len(methods(typeinference.Members(t, name))) > 0
	}

	switch {
	case t.IsModel():
		if _, ok := t.Model.Property(name); ok {
			return true
		}
	case t.IsRecord():
		if _, ok := t.Record.Field(name); ok {
			return true
		}
	}

	return len(properties(typeinference.Members(t, name))) > 0
}

func methods(sigs []typeinference.Signature) []typeinference.Signature {
	var result []typeinference.Signature

	for _, s := range sigs {
		if !s.Property {
			result = append(result, s)
		}
	}

	return result
}

func properties(sigs []typeinference.Signature) []typeinference.Signature {
	var result []typeinference.Signature

	for _, s := range sigs {
		if s.Property {
			result = append(result, s)
		}
	}

	return result
}

// parseMemberAccess parses the member name at the current token, applied
// to target, including a following argument list.
func (p *parser) parseMemberAccess(target Node) (Node, error) {
	if p.token.Type != tokenizer.IDENTIFIER {
		return nil, modelexpr.NewError(modelexpr.ErrIdentifierExpected, p.token.Position, p.token.Value)
	}

	name, pos := p.token.Value, p.token.Position
	p.next()

	t := target.ResultType()

	if p.token.Type == tokenizer.OPENED_PARENS {
		if t.IsList() {
			if op, ok := typeinference.LookupAggregate(name); ok {
				return p.parseAggregate(pos, target, op)
			}
		}

		candidates := methods(typeinference.Members(t, name))
		if len(candidates) == 0 {
			return nil, modelexpr.NewError(modelexpr.ErrUnknownMethod, pos, name, t)
		}

		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		return call(pos, callSite{kind: CallMember, target: target, name: name}, candidates, args)
	}

	switch {
	case t.IsModel():
		if prop, ok := t.Model.Property(name); ok {
			return &MemberAccess{
				baseNode: baseNode{pos: pos, result: typeinference.PropertyType(prop)},
				Target:   target,
				Property: prop,
				Field:    -1,
				Name:     prop.Name,
			}, nil
		}
	case t.IsRecord():
		if i, ok := t.Record.Field(name); ok {
			return &MemberAccess{
				baseNode: baseNode{pos: pos, result: t.Record.Fields[i].Type},
				Target:   target,
				Field:    i,
				Name:     name,
			}, nil
		}
	}

	props := properties(typeinference.Members(t, name))
	if len(props) == 0 {
		return nil, modelexpr.NewError(modelexpr.ErrUnknownProperty, pos, name, t)
	}

	sig := props[0]

	return &Call{
		baseNode:  baseNode{pos: pos, result: sig.Result},
		Kind:      CallMember,
		Target:    target,
		Signature: &sig,
		Match:     typeinference.Match{Signature: &sig, RestIndex: -1},
	}, nil
}

func (p *parser) parseTypeAccess(k typeinference.TypeKeyword) (Node, error) {
	pos := p.token.Position
	p.next()

	if p.token.Type == tokenizer.OPENED_PARENS {
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		return call(pos, callSite{kind: CallConstructor, owner: k.Name, name: k.Name}, typeinference.Constructors(k), args)
	}

	p.next()

	if p.token.Type != tokenizer.IDENTIFIER {
		return nil, modelexpr.NewError(modelexpr.ErrIdentifierExpected, p.token.Position, p.token.Value)
	}

	name, namePos := p.token.Value, p.token.Position
	p.next()

	members := typeinference.StaticMembers(k, name)

	if p.token.Type == tokenizer.OPENED_PARENS {
		candidates := methods(members)
		if len(candidates) == 0 {
			return nil, modelexpr.NewError(modelexpr.ErrUnknownMethod, namePos, name, k.Name)
		}

		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		return call(namePos, callSite{kind: CallStatic, owner: k.Name, name: name}, candidates, args)
	}

	props := properties(members)
	if len(props) == 0 {
		return nil, modelexpr.NewError(modelexpr.ErrUnknownProperty, namePos, name, k.Name)
	}

	sig := props[0]

	return &Call{
		baseNode:  baseNode{pos: namePos, result: sig.Result},
		Kind:      CallStatic,
		Owner:     k.Name,
		Signature: &sig,
		Match:     typeinference.Match{Signature: &sig, RestIndex: -1},
	}, nil
}

// parseArguments parses a parenthesized, comma separated argument list.
func (p *parser) parseArguments() ([]Node, error) {
	open := p.token
	if open.Type != tokenizer.OPENED_PARENS {
		return nil, p.unexpected()
	}

	p.next()

	return p.parseList(tokenizer.CLOSED_PARENS, open)
}

func (p *parser) parseList(closer tokenizer.TokenType, open tokenizer.Token) ([]Node, error) {
	var items []Node

	if p.token.Type == closer {
		p.next()
		return items, nil
	}

	for {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		if p.token.Type != tokenizer.COMMA {
			break
		}

		p.next()
	}

	if err := p.closing(closer, open); err != nil {
		return nil, err
	}

	return items, nil
}

type callSite struct {
	kind   CallKind
	target Node
	owner  string
	name   string
}

var callErrors = map[CallKind][2]error{
	CallMember:      {modelexpr.ErrNoApplicableMethod, modelexpr.ErrAmbiguousMethod},
	CallStatic:      {modelexpr.ErrNoApplicableMethod, modelexpr.ErrAmbiguousMethod},
	CallFunction:    {modelexpr.ErrNoApplicableMethod, modelexpr.ErrAmbiguousMethod},
	CallConstructor: {modelexpr.ErrNoApplicableConstructor, modelexpr.ErrAmbiguousConstructor},
	CallIndexer:     {modelexpr.ErrNoApplicableIndexer, modelexpr.ErrAmbiguousIndexer},
}

// call resolves args against candidates and builds the Call node with each
// argument converted to its matched parameter type.
func call(pos modelexpr.Position, site callSite, candidates []typeinference.Signature, args []Node) (Node, error) {
	m, outcome := typeinference.Resolve(candidates, arguments(args))

	switch outcome {
	case typeinference.NoneApplicable:
		if !arityMatches(candidates, len(args)) {
			return nil, modelexpr.NewError(modelexpr.ErrArgumentCount, pos, site.name, len(args))
		}

		return nil, modelexpr.NewError(callErrors[site.kind][0], pos, site.name, argumentTypes(args))
	case typeinference.Ambiguous:
		return nil, modelexpr.NewError(callErrors[site.kind][1], pos, site.name, argumentTypes(args))
	}

	converted := make([]Node, len(args))
	for i, arg := range args {
		converted[i], _ = promote(arg, m.Params[i], m.Unwrapped)
	}

	return &Call{
		baseNode:  baseNode{pos: pos, result: liftResult(m)},
		Kind:      site.kind,
		Target:    site.target,
		Owner:     site.owner,
		Signature: m.Signature,
		Match:     m,
		Args:      converted,
		Lifted:    m.Unwrapped,
	}, nil
}

func arityMatches(candidates []typeinference.Signature, n int) bool {
	for _, s := range candidates {
		if len(s.Params) == n || (s.Variadic && n >= len(s.Params)-1) {
			return true
		}
	}

	return false
}

func argumentTypes(args []Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.ResultType().String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *parser) parseIndexer(target Node) (Node, error) {
	open := p.token
	p.next()

	args, err := p.parseList(tokenizer.CLOSED_BRACKET, open)
	if err != nil {
		return nil, err
	}

	t := target.ResultType()

	var candidates []typeinference.Signature

	switch {
	case t.IsString():
		candidates = typeinference.StringIndexer()
	case t.IsList():
		candidates = typeinference.ListIndexer(t.ElemType())
	default:
		return nil, modelexpr.NewError(modelexpr.ErrNotIndexable, open.Position, t)
	}

	if len(args) != 1 {
		return nil, modelexpr.NewError(modelexpr.ErrInvalidIndex, open.Position, len(args))
	}

	return call(open.Position, callSite{kind: CallIndexer, target: target, name: "[]"}, candidates, args)
}

func (p *parser) parseIif() (Node, error) {
	pos := p.token.Position
	p.next()

	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}

	if len(args) != 3 {
		return nil, modelexpr.NewError(modelexpr.ErrArgumentCount, pos, "iif", len(args))
	}

	return conditional(pos, args[0], args[1], args[2])
}

// parseNew parses new(expr as Name, ...). A member access may omit the
// name and takes the member's.
func (p *parser) parseNew() (Node, error) {
	pos := p.token.Position
	p.next()

	open := p.token
	if open.Type != tokenizer.OPENED_PARENS {
		return nil, p.unexpected()
	}

	p.next()

	var (
		fields []typeinference.RecordField
		values []Node
	)

	seen := make(map[string]bool)

	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		var name string

		if p.isWord("as") {
			p.next()

			if p.token.Type != tokenizer.IDENTIFIER {
				return nil, modelexpr.NewError(modelexpr.ErrMemberNameExpected, p.token.Position)
			}

			name = p.token.Value
			p.next()
		} else {
			name = memberName(expr)
			if name == "" {
				return nil, modelexpr.NewError(modelexpr.ErrMemberNameExpected, expr.Position())
			}
		}

		if seen[name] {
			return nil, modelexpr.NewError(modelexpr.ErrDuplicateMemberName, expr.Position(), name)
		}

		seen[name] = true
		fields = append(fields, typeinference.RecordField{Name: name, Type: expr.ResultType()})
		values = append(values, expr)

		if p.token.Type != tokenizer.COMMA {
			break
		}

		p.next()
	}

	if err := p.closing(tokenizer.CLOSED_PARENS, open); err != nil {
		return nil, err
	}

	record := typeinference.RecordTypeOf(fields)

	return &New{
		baseNode: baseNode{pos: pos, result: typeinference.RecordOf(record)},
		Record:   record,
		Fields:   values,
	}, nil
}

func memberName(n Node) string {
	switch tn := n.(type) {
	case *MemberAccess:
		return tn.Name
	case *Call:
		if tn.Kind == CallMember && tn.Signature.Property {
			return tn.Signature.Name
		}
	}

	return ""
}

// parseArrayLiteral parses [a, b, c]; the element type is the common type
// of the items, object for an empty literal.
func (p *parser) parseArrayLiteral() (Node, error) {
	open := p.token
	p.next()

	items, err := p.parseList(tokenizer.CLOSED_BRACKET, open)
	if err != nil {
		return nil, err
	}

	elem := typeinference.Object

	if len(items) > 0 {
		common := items[0]

		for _, item := range items[1:] {
			t, ok := commonType(common, item)
			if !ok {
				return nil, modelexpr.NewError(modelexpr.ErrIncompatibleOperands, item.Position(), "[]", common.ResultType(), item.ResultType())
			}

			if !t.Equal(common.ResultType()) {
				common = &Convert{baseNode: baseNode{pos: item.Position(), result: t}, Operand: item}
			}
		}

		elem = common.ResultType()
		if elem.IsNull() {
			elem = typeinference.Object
		}

		for i, item := range items {
			items[i], _ = promote(item, elem, false)
		}
	}

	return &ArrayLiteral{
		baseNode: baseNode{pos: open.Position, result: typeinference.ListOf(elem)},
		Items:    items,
	}, nil
}

// parseAggregate parses the argument list of a list operator. Element
// scoped operators see a fresh "it" bound to each element.
func (p *parser) parseAggregate(pos modelexpr.Position, source Node, op typeinference.AggregateOp) (Node, error) {
	elem := source.ResultType().ElemType()

	var param *Parameter

	if op.ElementScoped() {
		param = p.newParameter("it", elem, pos)
		p.scopes = append(p.scopes, param)
	}

	args, err := p.parseArguments()

	if param != nil {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}

	if err != nil {
		return nil, err
	}

	if len(args) > 1 {
		return nil, modelexpr.NewError(modelexpr.ErrArgumentCount, pos, op.String(), len(args))
	}

	var arg Node

	switch {
	case len(args) == 1:
		arg = args[0]
	case param != nil && elem.IsValue() && implicitSelector(op):
		arg = param
	}

	var argNodes []Node
	if arg != nil {
		argNodes = []Node{arg}
	}

	m, outcome := typeinference.Resolve(typeinference.AggregateSignatures(op), arguments(argNodes))

	switch outcome {
	case typeinference.NoneApplicable:
		return nil, modelexpr.NewError(modelexpr.ErrNoApplicableAggregate, pos, op.String(), argumentTypes(argNodes))
	case typeinference.Ambiguous:
		return nil, modelexpr.NewError(modelexpr.ErrAmbiguousAggregate, pos, op.String(), argumentTypes(argNodes))
	}

	argType := typeinference.Invalid

	if arg != nil {
		argType = arg.ResultType()

		var ok bool

		switch {
		case op == typeinference.AggContains:
			arg, ok = promote(arg, elem, false)
		case op == typeinference.AggExcept:
			ok = typeinference.IsCompatibleWith(argType, source.ResultType()) ||
				typeinference.IsCompatibleWith(source.ResultType(), argType)
		case m.Params[0].IsObject():
			ok = !op.NeedsOrdering() || argType.IsValue()
		default:
			arg, ok = promote(arg, m.Params[0], m.Unwrapped)
		}

		if !ok {
			return nil, modelexpr.NewError(modelexpr.ErrIncompatibleOperands, pos, op.String(), source.ResultType(), argType)
		}
	}

	return &Aggregate{
		baseNode:  baseNode{pos: pos, result: typeinference.AggregateResultType(op, elem, m, argType)},
		Source:    source,
		Op:        op,
		Element:   param,
		Arg:       arg,
		Signature: m.Signature,
	}, nil
}

// implicitSelector reports whether the operator selects the element itself
// when called without an argument on a list of values.
func implicitSelector(op typeinference.AggregateOp) bool {
	switch op {
	case typeinference.AggMin, typeinference.AggMax, typeinference.AggSum, typeinference.AggAverage:
		return true
	default:
		return false
	}
}
