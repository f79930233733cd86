package annotation

import (
	"strings"
)

// GetStrings splits an argument list at its top-level commas. Commas nested
// inside braces, parentheses or quoted strings do not separate fields.
// Each returned field is the trimmed source text of that argument.
//
// Malformed input (unbalanced brackets or an unterminated string) returns
// the fields completed before the problem together with a *GrammarError.
func GetStrings(s string) ([]string, error) {
	fields, _, err := GetStringsTail(s)
	return fields, err
}

// GetStringsTail is GetStrings that also returns, on error, the trimmed
// text of the field that was being read when the problem was found. The
// tail is empty when the input is well formed.
func GetStringsTail(s string) ([]string, string, error) {
	var fields []string
	if strings.TrimSpace(s) == "" {
		return fields, "", nil
	}

	lex := NewLexer(s)
	depth := 0
	start := 0
	var stack []TokenType
	tail := func() string { return strings.TrimSpace(s[start:]) }

	for {
		tok, err := lex.NextToken()
		if err != nil {
			return fields, tail(), err
		}

		switch tok.Type {
		case TokenEOF:
			if depth != 0 {
				return fields, tail(), &GrammarError{Input: s, Offset: tok.Pos, Msg: "unbalanced brackets"}
			}
			fields = append(fields, strings.TrimSpace(s[start:]))
			return fields, "", nil

		case TokenLeftBrace, TokenLeftParen:
			depth++
			stack = append(stack, tok.Type)

		case TokenRightBrace, TokenRightParen:
			if depth == 0 {
				return fields, tail(), &GrammarError{Input: s, Offset: tok.Pos, Msg: "unexpected " + tok.Type.String()}
			}
			open := stack[len(stack)-1]
			if (open == TokenLeftBrace) != (tok.Type == TokenRightBrace) {
				return fields, tail(), &GrammarError{Input: s, Offset: tok.Pos, Msg: "mismatched " + tok.Type.String()}
			}
			stack = stack[:len(stack)-1]
			depth--

		case TokenComma:
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:tok.Pos]))
				start = tok.End
			}
		}
	}
}

// RemoveFirstLastCurlBrackets strips one pair of enclosing braces if the
// first brace matches the last one. Otherwise s is returned trimmed.
func RemoveFirstLastCurlBrackets(s string) string {
	return removeEnclosing(s, TokenLeftBrace, TokenRightBrace)
}

// RemoveFirstLastParentheses strips one pair of enclosing parentheses
func RemoveFirstLastParentheses(s string) string {
	return removeEnclosing(s, TokenLeftParen, TokenRightParen)
}

// RemoveFirstLastQuotes strips enclosing double quotes without resolving
// escapes. Use ParseString to obtain the unescaped value.
func RemoveFirstLastQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func removeEnclosing(s string, open, closing TokenType) string {
	s = strings.TrimSpace(s)
	lex := NewLexer(s)

	first, err := lex.NextToken()
	if err != nil || first.Type != open {
		return s
	}

	depth := 1
	for {
		tok, err := lex.NextToken()
		if err != nil || tok.Type == TokenEOF {
			return s
		}
		switch tok.Type {
		case TokenLeftBrace, TokenLeftParen:
			depth++
		case TokenRightBrace, TokenRightParen:
			depth--
		}
		if depth == 0 {
			// The outer pair only encloses everything if we are at the end
			if tok.Type != closing || tok.End != len(s) {
				return s
			}
			return strings.TrimSpace(s[first.End:tok.Pos])
		}
	}
}

// SplitCall splits `Name(args)` into the record name and the raw argument
// text between the outer parentheses.
func SplitCall(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	lex := NewLexer(s)

	name, err := lex.NextToken()
	if err != nil {
		return "", "", err
	}
	if name.Type != TokenSymbol {
		return "", "", &GrammarError{Input: s, Offset: name.Pos, Msg: "expected record name"}
	}

	rest := strings.TrimSpace(s[name.End:])
	if rest == "" {
		// A bare record name has no arguments
		return name.Value, "", nil
	}
	inner := RemoveFirstLastParentheses(rest)
	if inner != rest {
		return name.Value, inner, nil
	}
	if !strings.HasPrefix(rest, "(") {
		return "", "", &GrammarError{Input: s, Offset: name.End, Msg: "expected parenthesized argument list"}
	}
	// Unbalanced argument list: hand back what follows the opening
	// parenthesis so the caller can keep the fields that do parse.
	args := strings.TrimSuffix(rest[1:], ")")
	return name.Value, args, &GrammarError{Input: s, Offset: name.End, Msg: "unbalanced argument list"}
}

// SplitNamed recognizes a named argument `ident = value` and returns its
// parts. Positional arguments report ok=false.
func SplitNamed(field string) (name, value string, ok bool) {
	lex := NewLexer(field)

	ident, err := lex.NextToken()
	if err != nil || ident.Type != TokenSymbol || !isIdent(ident.Value) {
		return "", field, false
	}
	eq, err := lex.NextToken()
	if err != nil || eq.Type != TokenEquals {
		return "", field, false
	}
	return ident.Value, strings.TrimSpace(field[eq.End:]), true
}
