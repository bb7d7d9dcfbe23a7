package path

import (
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/tokenizer"
	pc "github.com/shibukawa/parsercombinator"
)

// segment is one textual step: a property name with an optional type
// filter, or a { } group of alternative chains.
type segment struct {
	name      string
	pos       modelexpr.Position
	filter    string
	filterPos modelexpr.Position
	group     [][]*segment
}

// item is the token type the path grammar runs on. Raw tokens carry tok;
// reduced tokens carry the segment or chain they stand for.
type item struct {
	tok   tokenizer.Token
	seg   *segment
	chain []*segment
}

func primitive(types ...tokenizer.TokenType) pc.Parser[item] {
	return func(pctx *pc.ParseContext[item], tokens []pc.Token[item]) (int, []pc.Token[item], error) {
		if len(tokens) > 0 && tokens[0].Val.seg == nil && tokens[0].Val.chain == nil {
			for _, tt := range types {
				if tokens[0].Val.tok.Type == tt {
					return 1, tokens[:1], nil
				}
			}
		}

		return 0, nil, pc.ErrNotMatch
	}
}

var (
	identifier  = primitive(tokenizer.IDENTIFIER)
	dot         = pc.Drop(primitive(tokenizer.DOT))
	comma       = pc.Drop(primitive(tokenizer.COMMA))
	openBrace   = pc.Drop(primitive(tokenizer.OPENED_BRACE))
	closeBrace  = pc.Drop(primitive(tokenizer.CLOSED_BRACE))
	openFilter  = pc.Drop(primitive(tokenizer.LESS_THAN))
	closeFilter = pc.Drop(primitive(tokenizer.GREATER_THAN))
)

// pathGrammar parses
//
//	Path := Step ('.' Step)*
//	Step := Identifier ('<' Identifier '>')? | '{' Path (',' Path)* '}'
var pathGrammar = newPathGrammar()

func newPathGrammar() pc.Parser[item] {
	var chain pc.Parser[item]

	var lazyChain pc.Parser[item] = func(pctx *pc.ParseContext[item], tokens []pc.Token[item]) (int, []pc.Token[item], error) {
		return chain(pctx, tokens)
	}

	step := pc.Trans(
		pc.Seq(identifier, pc.Optional(pc.Seq(openFilter, identifier, closeFilter))),
		reduceStep,
	)

	group := pc.Trans(
		pc.Seq(openBrace, lazyChain, pc.ZeroOrMore("alternatives", pc.Seq(comma, lazyChain)), closeBrace),
		reduceGroup,
	)

	element := pc.Or(step, group)

	chain = pc.Trans(
		pc.Seq(element, pc.ZeroOrMore("steps", pc.Seq(dot, element))),
		reduceChain,
	)

	return chain
}

func reduced(src []pc.Token[item], typeName string, val item) []pc.Token[item] {
	return []pc.Token[item]{{Type: typeName, Pos: src[0].Pos, Val: val}}
}

func reduceStep(pctx *pc.ParseContext[item], src []pc.Token[item]) ([]pc.Token[item], error) {
	name := src[0].Val.tok
	seg := &segment{name: name.Value, pos: name.Position}

	if len(src) > 1 {
		seg.filter = src[1].Val.tok.Value
		seg.filterPos = src[1].Val.tok.Position
	}

	return reduced(src, "step", item{seg: seg}), nil
}

func reduceGroup(pctx *pc.ParseContext[item], src []pc.Token[item]) ([]pc.Token[item], error) {
	seg := &segment{}

	for _, t := range src {
		seg.group = append(seg.group, t.Val.chain)
	}

	seg.pos = seg.group[0][0].pos

	return reduced(src, "group", item{seg: seg}), nil
}

func reduceChain(pctx *pc.ParseContext[item], src []pc.Token[item]) ([]pc.Token[item], error) {
	chain := make([]*segment, 0, len(src))
	for _, t := range src {
		chain = append(chain, t.Val.seg)
	}

	return reduced(src, "chain", item{chain: chain}), nil
}

func toItems(tokens []tokenizer.Token) []pc.Token[item] {
	items := make([]pc.Token[item], len(tokens))

	for i, t := range tokens {
		items[i] = pc.Token[item]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  t.Position.Line,
				Col:   t.Position.Column,
				Index: t.Position.Offset,
			},
			Val: item{tok: t},
			Raw: t.Value,
		}
	}

	return items
}
