package tokenizer

import (
	"fmt"
	"strings"

	"github.com/shibukawa/modelexpr"
)

// TokenType represents the type of token
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	WHITESPACE

	// Literals
	IDENTIFIER
	INTEGER_LITERAL
	REAL_LITERAL
	STRING_LITERAL
	CHAR_LITERAL

	// Operators
	EXCLAMATION      // !
	NOT_EQUAL        // != <>
	PERCENT          // %
	AMPERSAND        // &
	DOUBLE_AMPERSAND // &&
	ASTERISK         // *
	PLUS             // +
	MINUS            // -
	SLASH            // /
	LESS_THAN        // <
	LESS_EQUAL       // <=
	EQUAL            // = ==
	GREATER_THAN     // >
	GREATER_EQUAL    // >=
	QUESTION         // ?
	COLON            // :
	BAR              // |
	DOUBLE_BAR       // ||

	// Punctuation
	OPENED_PARENS  // (
	CLOSED_PARENS  // )
	OPENED_BRACKET // [
	CLOSED_BRACKET // ]
	OPENED_BRACE   // {
	CLOSED_BRACE   // }
	COMMA          // ,
	DOT            // .
)

var tokenTypeNames = [...]string{
	EOF:              "EOF",
	WHITESPACE:       "WHITESPACE",
	IDENTIFIER:       "IDENTIFIER",
	INTEGER_LITERAL:  "INTEGER_LITERAL",
	REAL_LITERAL:     "REAL_LITERAL",
	STRING_LITERAL:   "STRING_LITERAL",
	CHAR_LITERAL:     "CHAR_LITERAL",
	EXCLAMATION:      "EXCLAMATION",
	NOT_EQUAL:        "NOT_EQUAL",
	PERCENT:          "PERCENT",
	AMPERSAND:        "AMPERSAND",
	DOUBLE_AMPERSAND: "DOUBLE_AMPERSAND",
	ASTERISK:         "ASTERISK",
	PLUS:             "PLUS",
	MINUS:            "MINUS",
	SLASH:            "SLASH",
	LESS_THAN:        "LESS_THAN",
	LESS_EQUAL:       "LESS_EQUAL",
	EQUAL:            "EQUAL",
	GREATER_THAN:     "GREATER_THAN",
	GREATER_EQUAL:    "GREATER_EQUAL",
	QUESTION:         "QUESTION",
	COLON:            "COLON",
	BAR:              "BAR",
	DOUBLE_BAR:       "DOUBLE_BAR",
	OPENED_PARENS:    "OPENED_PARENS",
	CLOSED_PARENS:    "CLOSED_PARENS",
	OPENED_BRACKET:   "OPENED_BRACKET",
	CLOSED_BRACKET:   "CLOSED_BRACKET",
	OPENED_BRACE:     "OPENED_BRACE",
	CLOSED_BRACE:     "CLOSED_BRACE",
	COMMA:            "COMMA",
	DOT:              "DOT",
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}

	return "UNKNOWN"
}

// Token represents a token. Value holds the source text of the token,
// including quotes for string and char literals.
type Token struct {
	Type     TokenType
	Value    string
	Position modelexpr.Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return fmt.Sprintf("%s: %s", t.Type, t.Value)
}

// Is reports whether the token is the identifier word, compared
// case-insensitively. The OData word operators are matched this way.
func (t Token) Is(word string) bool {
	return t.Type == IDENTIFIER && strings.EqualFold(t.Value, word)
}
