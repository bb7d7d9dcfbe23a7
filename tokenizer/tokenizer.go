package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shibukawa/modelexpr"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// Tokenizer splits expression text into tokens for one dialect.
type Tokenizer struct {
	input   string
	dialect modelexpr.Dialect
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
}

// NewTokenizer creates a new Tokenizer
func NewTokenizer(input string, dialect modelexpr.Dialect, options ...TokenizerOptions) *Tokenizer {
	opts := TokenizerOptions{
		SkipWhitespace: true,
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &Tokenizer{
		input:   input,
		dialect: dialect,
		options: opts,
	}
}

// Tokens returns an iterator of tokens. Iteration stops after EOF or after
// the first lexical error.
func (t *Tokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := newScanner(t.input, t.dialect)

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice, ending with EOF.
func (t *Tokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 32)

	for token, err := range t.Tokens() {
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Tokenize is a shortcut for NewTokenizer(input, dialect).AllTokens().
func Tokenize(input string, dialect modelexpr.Dialect) ([]Token, error) {
	return NewTokenizer(input, dialect).AllTokens()
}

const eof = -1

type scanner struct {
	input   string
	dialect modelexpr.Dialect
	offset  int
	width   int
	current rune
	line    int
	column  int
}

func newScanner(input string, dialect modelexpr.Dialect) *scanner {
	s := &scanner{
		input:   input,
		dialect: dialect,
		line:    1,
		column:  1,
	}
	s.decode()

	return s
}

func (s *scanner) decode() {
	if s.offset >= len(s.input) {
		s.current, s.width = eof, 0
		return
	}

	s.current, s.width = utf8.DecodeRuneInString(s.input[s.offset:])
}

// readChar advances to the next character
func (s *scanner) readChar() {
	if s.current == eof {
		return
	}

	if s.current == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}

	s.offset += s.width
	s.decode()
}

// peekChar looks ahead at the character after the current one
func (s *scanner) peekChar() rune {
	next := s.offset + s.width
	if next >= len(s.input) {
		return eof
	}

	r, _ := utf8.DecodeRuneInString(s.input[next:])

	return r
}

func (s *scanner) position() modelexpr.Position {
	return modelexpr.Position{Offset: s.offset, Line: s.line, Column: s.column}
}

func (s *scanner) token(tokenType TokenType, start modelexpr.Position) Token {
	return Token{
		Type:     tokenType,
		Value:    s.input[start.Offset:s.offset],
		Position: start,
	}
}

// single consumes one character and returns it as a token
func (s *scanner) single(tokenType TokenType) (Token, error) {
	start := s.position()
	s.readChar()

	return s.token(tokenType, start), nil
}

// pair consumes one character, plus second when it follows, choosing the
// token type accordingly
func (s *scanner) pair(oneType TokenType, second rune, twoType TokenType) (Token, error) {
	start := s.position()
	s.readChar()

	if s.current == second {
		s.readChar()
		return s.token(twoType, start), nil
	}

	return s.token(oneType, start), nil
}

// nextToken gets the next token
func (s *scanner) nextToken() (Token, error) {
	switch s.current {
	case eof:
		return s.token(EOF, s.position()), nil
	case '(':
		return s.single(OPENED_PARENS)
	case ')':
		return s.single(CLOSED_PARENS)
	case '[':
		return s.single(OPENED_BRACKET)
	case ']':
		return s.single(CLOSED_BRACKET)
	case '{':
		return s.single(OPENED_BRACE)
	case '}':
		return s.single(CLOSED_BRACE)
	case ',':
		return s.single(COMMA)
	case '.':
		return s.single(DOT)
	case '%':
		return s.single(PERCENT)
	case '*':
		return s.single(ASTERISK)
	case '+':
		return s.single(PLUS)
	case '-':
		return s.single(MINUS)
	case '/':
		return s.single(SLASH)
	case ':':
		return s.single(COLON)
	case '?':
		return s.single(QUESTION)
	case '!':
		return s.pair(EXCLAMATION, '=', NOT_EQUAL)
	case '&':
		return s.pair(AMPERSAND, '&', DOUBLE_AMPERSAND)
	case '|':
		return s.pair(BAR, '|', DOUBLE_BAR)
	case '=':
		return s.pair(EQUAL, '=', EQUAL)
	case '>':
		return s.pair(GREATER_THAN, '=', GREATER_EQUAL)
	case '<':
		if s.peekChar() == '>' {
			start := s.position()
			s.readChar()
			s.readChar()

			return s.token(NOT_EQUAL, start), nil
		}

		return s.pair(LESS_THAN, '=', LESS_EQUAL)
	case '"':
		if s.dialect == modelexpr.DialectOData {
			return Token{}, modelexpr.NewError(modelexpr.ErrInvalidCharacter, s.position(), string(s.current))
		}

		return s.readString(STRING_LITERAL)
	case '\'':
		if s.dialect == modelexpr.DialectOData {
			return s.readString(STRING_LITERAL)
		}

		return s.readString(CHAR_LITERAL)
	}

	switch {
	case unicode.IsSpace(s.current):
		return s.readWhitespace(), nil
	case unicode.IsLetter(s.current) || s.current == '_':
		return s.readWord(), nil
	case unicode.IsDigit(s.current):
		return s.readNumber()
	default:
		return Token{}, modelexpr.NewError(modelexpr.ErrInvalidCharacter, s.position(), string(s.current))
	}
}

// readWhitespace reads whitespace characters
func (s *scanner) readWhitespace() Token {
	start := s.position()

	for s.current != eof && unicode.IsSpace(s.current) {
		s.readChar()
	}

	return s.token(WHITESPACE, start)
}

// readWord reads identifiers. Keywords are recognized by the parser.
func (s *scanner) readWord() Token {
	start := s.position()

	for s.current != eof && (unicode.IsLetter(s.current) || unicode.IsDigit(s.current) || s.current == '_') {
		s.readChar()
	}

	return s.token(IDENTIFIER, start)
}

// readString reads a quoted literal. A doubled quote character stands for
// one quote inside the literal.
func (s *scanner) readString(tokenType TokenType) (Token, error) {
	start := s.position()
	quote := s.current

	for {
		s.readChar()

		for s.current != eof && s.current != quote {
			s.readChar()
		}

		if s.current == eof {
			return Token{}, modelexpr.NewError(modelexpr.ErrUnterminatedString, start)
		}

		s.readChar() // closing quote

		if s.current != quote {
			return s.token(tokenType, start), nil
		}
	}
}

// readNumber reads integer and real literals
func (s *scanner) readNumber() (Token, error) {
	start := s.position()
	tokenType := INTEGER_LITERAL

	s.readDigits()

	if s.current == '.' {
		tokenType = REAL_LITERAL

		s.readChar()

		if err := s.expectDigit(); err != nil {
			return Token{}, err
		}

		s.readDigits()
	}

	if s.current == 'e' || s.current == 'E' {
		tokenType = REAL_LITERAL

		s.readChar()

		if s.current == '+' || s.current == '-' {
			s.readChar()
		}

		if err := s.expectDigit(); err != nil {
			return Token{}, err
		}

		s.readDigits()
	}

	switch s.current {
	case 'f', 'F', 'd', 'D', 'm', 'M':
		tokenType = REAL_LITERAL

		s.readChar()
	}

	return s.token(tokenType, start), nil
}

func (s *scanner) readDigits() {
	for s.current != eof && unicode.IsDigit(s.current) {
		s.readChar()
	}
}

func (s *scanner) expectDigit() error {
	if s.current == eof || !unicode.IsDigit(s.current) {
		return modelexpr.NewError(modelexpr.ErrDigitExpected, s.position())
	}

	return nil
}

// Unquote returns the content of a string or char literal token with doubled
// quotes collapsed.
func Unquote(t Token) string {
	if len(t.Value) < 2 {
		return ""
	}

	quote := t.Value[:1]

	return strings.ReplaceAll(t.Value[1:len(t.Value)-1], quote+quote, quote)
}
