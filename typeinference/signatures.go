package typeinference

import (
	"strings"

	"golang.org/x/text/cases"
)

// Invoker evaluates a resolved member. For instance members args[0] is the
// receiver; variadic arguments arrive packed into a trailing []any.
type Invoker func(args []any) (any, error)

// Signature is one callable candidate: an operator form, a host member, a
// list operator, a constructor or an external function.
type Signature struct {
	Name     string
	Params   []Type
	Variadic bool // the last parameter is the element type of a rest array
	Result   Type
	Property bool // parameterless member accessed without parentheses
	Invoke   Invoker
	// AcceptsNull marks instance members that are invoked on a null
	// receiver instead of propagating null.
	AcceptsNull bool
}

// String renders the signature as Name(p1, p2) : result.
func (s *Signature) String() string {
	var sb strings.Builder

	sb.WriteString(s.Name)

	if !s.Property {
		sb.WriteString("(")

		for i, p := range s.Params {
			if i > 0 {
				sb.WriteString(", ")
			}

			if s.Variadic && i == len(s.Params)-1 {
				sb.WriteString("params ")
			}

			sb.WriteString(p.String())
		}

		sb.WriteString(")")
	}

	sb.WriteString(" : ")
	sb.WriteString(s.Result.String())

	return sb.String()
}

// Argument describes an argument expression for resolution. Literal arguments
// carry their constant value so narrowing literal conversions can be checked.
type Argument struct {
	Type    Type
	Literal bool
	Value   any
}

// SignatureProvider supplies candidate signatures by name. The resolution
// algorithm runs unchanged against the built-in operator sets, the host
// member catalog and pluggable external catalogs.
type SignatureProvider interface {
	Signatures(name string) []Signature
}

// FoldName returns the case-folded form used for case-insensitive lookup.
// A Caser keeps state, so one is created per call.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

// SignatureTable is a SignatureProvider with case-insensitive names.
type SignatureTable map[string][]Signature

// NewSignatureTable builds a table from signatures.
func NewSignatureTable(signatures ...Signature) SignatureTable {
	table := make(SignatureTable)
	table.Add(signatures...)

	return table
}

// Add registers signatures under their names.
func (t SignatureTable) Add(signatures ...Signature) {
	for _, s := range signatures {
		key := FoldName(s.Name)
		t[key] = append(t[key], s)
	}
}

// Signatures implements SignatureProvider.
func (t SignatureTable) Signatures(name string) []Signature {
	return t[FoldName(name)]
}

// Providers chains several providers; the first one with candidates wins.
type Providers []SignatureProvider

// Signatures implements SignatureProvider.
func (p Providers) Signatures(name string) []Signature {
	for _, provider := range p {
		if provider == nil {
			continue
		}

		if sigs := provider.Signatures(name); len(sigs) > 0 {
			return sigs
		}
	}

	return nil
}
