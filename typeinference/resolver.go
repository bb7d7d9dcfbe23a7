package typeinference

// Outcome is the result category of overload resolution.
type Outcome int

const (
	// Resolved means exactly one best candidate exists.
	Resolved Outcome = iota
	// NoneApplicable means no candidate accepts the arguments.
	NoneApplicable
	// Ambiguous means several applicable candidates remain after narrowing.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case NoneApplicable:
		return "none"
	default:
		return "ambiguous"
	}
}

// Match is a candidate applied to a concrete argument list.
type Match struct {
	Signature *Signature
	// Params holds the parameter type for each argument, with rest
	// arguments expanded to the variadic element type.
	Params []Type
	// RestIndex is the index of the first rest argument, or -1 when the
	// signature was applied in its normal form.
	RestIndex int
	// Spread is set when a single list argument was passed as the whole
	// rest array.
	Spread bool
	// Unwrapped is set when some argument needed a nullable unwrap.
	Unwrapped bool
}

// Resolve picks the best candidate for args.
//
// Candidates are tried in three phases, each only when the previous one
// found nothing applicable: implicit conversions only, then additionally
// unwrapping nullable arguments, then the expanded form of variadic
// candidates. Among applicable candidates one is chosen when it is better
// than every other; otherwise the call is ambiguous. The result depends only
// on the candidate list and argument types.
func Resolve(candidates []Signature, args []Argument) (Match, Outcome) {
	phases := []func(*Signature) (Match, bool){
		func(s *Signature) (Match, bool) { return applyNormal(s, args, false) },
		func(s *Signature) (Match, bool) { return applyNormal(s, args, true) },
		func(s *Signature) (Match, bool) { return applyExpanded(s, args) },
	}

	for _, apply := range phases {
		var applicable []Match

		for i := range candidates {
			if m, ok := apply(&candidates[i]); ok {
				applicable = append(applicable, m)
			}
		}

		if len(applicable) == 0 {
			continue
		}

		return pickBest(applicable, args)
	}

	return Match{}, NoneApplicable
}

func applyNormal(s *Signature, args []Argument, allowUnwrap bool) (Match, bool) {
	if len(s.Params) != len(args) {
		return Match{}, false
	}

	m := Match{Signature: s, Params: s.Params, RestIndex: -1}

	for i, arg := range args {
		p := s.Params[i]
		if s.Variadic && i == len(args)-1 {
			// normal form of a variadic signature takes an explicit list
			p = ListOf(p)
		}

		if !CanConvertArgument(arg, p, allowUnwrap) {
			return Match{}, false
		}

		if NeedsUnwrap(arg.Type, p) {
			m.Unwrapped = true
		}
	}

	if s.Variadic {
		params := append([]Type(nil), s.Params...)
		params[len(params)-1] = ListOf(params[len(params)-1])
		m.Params = params
		m.Spread = true
		m.RestIndex = len(args) - 1
	}

	return m, true
}

func applyExpanded(s *Signature, args []Argument) (Match, bool) {
	if !s.Variadic {
		return Match{}, false
	}

	fixed := len(s.Params) - 1
	if len(args) < fixed {
		return Match{}, false
	}

	elem := s.Params[fixed]
	params := make([]Type, len(args))
	m := Match{Signature: s, RestIndex: fixed}

	for i, arg := range args {
		p := elem
		if i < fixed {
			p = s.Params[i]
		}

		if !CanConvertArgument(arg, p, true) {
			return Match{}, false
		}

		if NeedsUnwrap(arg.Type, p) {
			m.Unwrapped = true
		}

		params[i] = p
	}

	m.Params = params

	return m, true
}

func pickBest(applicable []Match, args []Argument) (Match, Outcome) {
	if len(applicable) == 1 {
		return applicable[0], Resolved
	}

	var best []Match

	for i, m := range applicable {
		better := true

		for j, n := range applicable {
			if i != j && !isBetterThan(args, m, n) {
				better = false
				break
			}
		}

		if better {
			best = append(best, m)
		}
	}

	if len(best) == 1 {
		return best[0], Resolved
	}

	return Match{}, Ambiguous
}

// isBetterThan reports whether m is at least as good as n at every argument
// position and strictly better at one.
func isBetterThan(args []Argument, m, n Match) bool {
	better := false

	for i, arg := range args {
		c := CompareConversions(arg, m.Params[i], n.Params[i])
		if c < 0 {
			return false
		}

		if c > 0 {
			better = true
		}
	}

	return better
}
