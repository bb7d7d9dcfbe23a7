package modelexpr

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every structured error produced while tokenizing, parsing,
// resolving or building paths wraps exactly one of these.
var (
	// ErrLex is the category of tokenizer failures.
	ErrLex = errors.New("lexical error")
	// ErrSyntax is the category of grammar failures.
	ErrSyntax = errors.New("syntax error")
	// ErrSemantic is the category of name, type and overload failures.
	ErrSemantic = errors.New("semantic error")
	// ErrPath is the category of path construction failures.
	ErrPath = errors.New("path error")
	// ErrInvalidArgument is returned when an expression is invoked against the wrong root.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEvaluation is returned when a compiled expression faults at runtime.
	ErrEvaluation = errors.New("evaluation error")
)

// Lexical errors
var (
	ErrUnterminatedString = fmt.Errorf("%w: unterminated string literal", ErrLex)
	ErrInvalidCharacter   = fmt.Errorf("%w: invalid character", ErrLex)
	ErrDigitExpected      = fmt.Errorf("%w: digit expected", ErrLex)
)

// Syntax errors
var (
	ErrUnexpectedToken      = fmt.Errorf("%w: unexpected token", ErrSyntax)
	ErrUnmatchedDelimiter   = fmt.Errorf("%w: unmatched grouping delimiter", ErrSyntax)
	ErrInvalidCharLiteral   = fmt.Errorf("%w: character literal must contain exactly one character", ErrSyntax)
	ErrInvalidNumber        = fmt.Errorf("%w: invalid numeric literal", ErrSyntax)
	ErrDepthExceeded        = fmt.Errorf("%w: nesting depth exceeded", ErrSyntax)
	ErrIdentifierExpected   = fmt.Errorf("%w: identifier expected", ErrSyntax)
	ErrMemberNameExpected   = fmt.Errorf("%w: 'as' and a member name expected", ErrSyntax)
	ErrDuplicateMemberName  = fmt.Errorf("%w: duplicate projection member name", ErrSyntax)
	ErrUnexpectedEndOfInput = fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
)

// Semantic errors
var (
	ErrUnknownIdentifier       = fmt.Errorf("%w: unknown identifier", ErrSemantic)
	ErrUnknownProperty         = fmt.Errorf("%w: no property or field exists in type", ErrSemantic)
	ErrUnknownMethod           = fmt.Errorf("%w: no applicable method exists in type", ErrSemantic)
	ErrUnknownType             = fmt.Errorf("%w: unknown type", ErrSemantic)
	ErrAmbiguousMethod         = fmt.Errorf("%w: ambiguous invocation of method", ErrSemantic)
	ErrAmbiguousConstructor    = fmt.Errorf("%w: ambiguous invocation of constructor", ErrSemantic)
	ErrAmbiguousIndexer        = fmt.Errorf("%w: ambiguous invocation of indexer", ErrSemantic)
	ErrAmbiguousAggregate      = fmt.Errorf("%w: ambiguous invocation of list operator", ErrSemantic)
	ErrNoApplicableMethod      = fmt.Errorf("%w: no applicable method", ErrSemantic)
	ErrNoApplicableAggregate   = fmt.Errorf("%w: no applicable list operator", ErrSemantic)
	ErrNoApplicableIndexer     = fmt.Errorf("%w: no applicable indexer", ErrSemantic)
	ErrNoApplicableConstructor = fmt.Errorf("%w: no applicable constructor", ErrSemantic)
	ErrArgumentCount           = fmt.Errorf("%w: wrong number of arguments", ErrSemantic)
	ErrExpectedType            = fmt.Errorf("%w: expression result type mismatch", ErrSemantic)
	ErrConditionNotBool        = fmt.Errorf("%w: condition must be a boolean expression", ErrSemantic)
	ErrIncompatibleOperands    = fmt.Errorf("%w: operator incompatible with operand types", ErrSemantic)
	ErrIncompatibleBranches    = fmt.Errorf("%w: type of conditional expression cannot be determined", ErrSemantic)
	ErrInvalidIndex            = fmt.Errorf("%w: indexer requires exactly one integer argument", ErrSemantic)
	ErrNotIndexable            = fmt.Errorf("%w: expression cannot be indexed", ErrSemantic)
	ErrNoItParameter           = fmt.Errorf("%w: no 'it' is in scope", ErrSemantic)
)

// Path errors
var (
	ErrNotReference       = fmt.Errorf("%w: cannot navigate through a value property", ErrPath)
	ErrIncompatibleFilter = fmt.Errorf("%w: type filter is incompatible with the step", ErrPath)
	ErrUnknownFilterType  = fmt.Errorf("%w: unknown type in filter", ErrPath)
)

// Invocation errors
var (
	ErrMissingRoot   = fmt.Errorf("%w: expression requires a root instance", ErrInvalidArgument)
	ErrWrongRootType = fmt.Errorf("%w: root instance has the wrong model type", ErrInvalidArgument)
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// ErrorKind classifies a structured error.
type ErrorKind int

const (
	KindLex ErrorKind = iota + 1
	KindSyntax
	KindSemantic
	KindPath
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindSyntax:
		return "SyntaxError"
	case KindSemantic:
		return "SemanticError"
	case KindPath:
		return "PathError"
	default:
		return "Error"
	}
}

// Error is the structured error value returned by every parse-time operation.
// Err is one of the sentinels above; Args carry the names and types that
// complete the message.
type Error struct {
	Kind     ErrorKind
	Err      error
	Position Position
	Args     []any
}

// NewError creates an Error, deriving its Kind from the sentinel's category.
func NewError(sentinel error, pos Position, args ...any) *Error {
	return &Error{
		Kind:     kindOf(sentinel),
		Err:      sentinel,
		Position: pos,
		Args:     args,
	}
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrLex):
		return KindLex
	case errors.Is(err, ErrSyntax):
		return KindSyntax
	case errors.Is(err, ErrPath):
		return KindPath
	default:
		return KindSemantic
	}
}

// Message returns the error text without the position suffix.
func (e *Error) Message() string {
	var sb strings.Builder

	sb.WriteString(e.Err.Error())

	if len(e.Args) > 0 {
		sb.WriteString(" (")

		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			fmt.Fprintf(&sb, "%v", arg)
		}

		sb.WriteString(")")
	}

	return sb.String()
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message(), e.Position.String())
}

// Unwrap returns the sentinel so errors.Is matches both it and its category.
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError is a helper to extract *Error from error using errors.As.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
