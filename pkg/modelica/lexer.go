package modelica

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// AnnotationLexer defines the tokens of Modelica annotation expressions:
// record constructor calls, array literals, named arguments and literals.
var AnnotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments - C style
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},

	// Whitespace
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// String literals with escape sequences
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Numbers, with the sign folded in so {-10,-10} needs no unary minus
	{Name: "Number", Pattern: `[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?`},

	// Dotted names such as FillPattern.Solid or Modelica.Blocks.Icons
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*`},

	// Punctuation
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Equals", Pattern: `=`},
})
