// Package annotation implements the textual grammar of Modelica graphical
// annotations: tokenizing record-constructor argument lists, unwrapping
// nested braces and quotes, and encoding the literal values (reals, points,
// colors, strings and enumeration literals) that shape fields are made of.
package annotation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenComma
	TokenEquals
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenLeftBrace:
		return "'{'"
	case TokenRightBrace:
		return "'}'"
	case TokenComma:
		return "','"
	case TokenEquals:
		return "'='"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset of the first character
	End   int // byte offset just past the last character
}

// Lexer tokenizes an annotation string
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken reads the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	// Skip whitespace
	for {
		ch, ok := l.peek()
		if !ok {
			return Token{Type: TokenEOF, Pos: l.pos, End: l.pos}, nil
		}
		if !unicode.IsSpace(ch) {
			break
		}
		l.read()
	}

	start := l.pos
	ch, _ := l.peek()

	single := func(t TokenType) (Token, error) {
		l.read()
		return Token{Type: t, Value: string(ch), Pos: start, End: l.pos}, nil
	}

	switch ch {
	case '(':
		return single(TokenLeftParen)
	case ')':
		return single(TokenRightParen)
	case '{':
		return single(TokenLeftBrace)
	case '}':
		return single(TokenRightBrace)
	case ',':
		return single(TokenComma)
	case '=':
		return single(TokenEquals)
	case '"':
		return l.readString()
	default:
		return l.readSymbol()
	}
}

// peek looks at the next rune without consuming it
func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return ch, true
}

// read consumes and returns the next rune
func (l *Lexer) read() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return ch, true
}

// readString reads a quoted string, resolving escape sequences
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	// Consume opening quote
	l.read()

	var result []rune
	for {
		ch, ok := l.read()
		if !ok {
			return Token{}, &GrammarError{Input: l.input, Offset: start, Msg: "unterminated string"}
		}

		if ch == '"' {
			break
		}

		if ch == '\\' {
			next, ok := l.read()
			if !ok {
				return Token{}, &GrammarError{Input: l.input, Offset: start, Msg: "unterminated escape sequence"}
			}
			switch next {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			default:
				// \\, \" and \' map to themselves, unknown escapes too
				result = append(result, next)
			}
			continue
		}

		result = append(result, ch)
	}

	return Token{Type: TokenString, Value: string(result), Pos: start, End: l.pos}, nil
}

// readSymbol reads an unquoted symbol (identifier, number, enum literal)
func (l *Lexer) readSymbol() (Token, error) {
	start := l.pos
	for {
		ch, ok := l.peek()
		if !ok || unicode.IsSpace(ch) || isDelimiter(ch) {
			break
		}
		l.read()
	}

	if l.pos == start {
		return Token{}, &GrammarError{Input: l.input, Offset: start, Msg: "empty symbol"}
	}

	return Token{Type: TokenSymbol, Value: l.input[start:l.pos], Pos: start, End: l.pos}, nil
}

func isDelimiter(ch rune) bool {
	switch ch {
	case '(', ')', '{', '}', ',', '=', '"':
		return true
	}
	return false
}

// isIdent reports whether s is a plain Modelica identifier
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if ch == '_' || unicode.IsLetter(ch) {
			continue
		}
		if i > 0 && unicode.IsDigit(ch) {
			continue
		}
		return false
	}
	return true
}
