package modelica

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Parser represents an annotation expression parser
type Parser struct {
	parser *participle.Parser[Expr]
}

// NewParser creates a new annotation parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Expr](
		participle.Lexer(AnnotationLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// ParseString parses one expression
func (p *Parser) ParseString(input string) (*Expr, error) {
	expr, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return expr, nil
}

// ParseCall parses an expression that must be a call
func (p *Parser) ParseCall(input string) (*Call, error) {
	expr, err := p.ParseString(input)
	if err != nil {
		return nil, err
	}
	if expr.Call == nil {
		return nil, fmt.Errorf("parse error: %w", ErrNotCall)
	}
	return expr.Call, nil
}

// ErrNotCall is returned when a call was expected
var ErrNotCall = errors.New("expression is not a call")

var defaultParser = sync.OnceValues(NewParser)

// ParseCall parses a call with a shared parser
func ParseCall(input string) (*Call, error) {
	p, err := defaultParser()
	if err != nil {
		return nil, err
	}
	return p.ParseCall(input)
}

// ErrType is returned when an expression has the wrong shape for a value
var ErrType = errors.New("unexpected expression type")

// Real returns the numeric value of a number literal
func (e *Expr) Real() (float64, error) {
	if e == nil || e.Number == nil {
		return 0, fmt.Errorf("%w: want number, got %s", ErrType, e.String())
	}
	return annotation.ParseReal(*e.Number)
}

// Bool returns the value of true or false
func (e *Expr) Bool() (bool, error) {
	if e == nil || e.Ref == nil {
		return false, fmt.Errorf("%w: want boolean, got %s", ErrType, e.String())
	}
	return annotation.ParseBool(*e.Ref)
}

// Text returns the unescaped value of a string literal
func (e *Expr) Text() (string, error) {
	if e == nil || e.Str == nil {
		return "", fmt.Errorf("%w: want string, got %s", ErrType, e.String())
	}
	return annotation.ParseString(*e.Str)
}

// Reals returns the values of an array of numbers
func (e *Expr) Reals() ([]float64, error) {
	if e == nil || e.Array == nil {
		return nil, fmt.Errorf("%w: want array, got %s", ErrType, e.String())
	}
	out := make([]float64, 0, len(e.Array.Elems))
	for _, el := range e.Array.Elems {
		v, err := el.Real()
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Point returns the value of {x,y}
func (e *Expr) Point() (geom.Point, error) {
	v, err := e.Reals()
	if err != nil {
		return geom.Point{}, err
	}
	if len(v) != 2 {
		return geom.Point{}, fmt.Errorf("%w: want {x,y}, got %s", ErrType, e.String())
	}
	return geom.Pt(v[0], v[1]), nil
}

// Points returns the value of {{x1,y1},{x2,y2},...}
func (e *Expr) Points() ([]geom.Point, error) {
	if e == nil || e.Array == nil {
		return nil, fmt.Errorf("%w: want array, got %s", ErrType, e.String())
	}
	out := make([]geom.Point, 0, len(e.Array.Elems))
	for _, el := range e.Array.Elems {
		p, err := el.Point()
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}
