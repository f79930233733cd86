// Package modelica parses Modelica annotation expressions such as
//
//	Icon(coordinateSystem(extent={{-100,-100},{100,100}}), graphics={Rectangle(...)})
//	Placement(transformation(origin={10,0}, extent={{-10,-10},{10,10}}, rotation=90))
//
// into a small expression tree. Literals keep their source text so that an
// expression renders back exactly as written, modulo whitespace.
package modelica

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is one annotation expression
type Expr struct {
	Pos lexer.Position

	Call   *Call   `parser:"  @@"`
	Array  *Array  `parser:"| @@"`
	Str    *string `parser:"| @String"`
	Number *string `parser:"| @Number"`
	Ref    *string `parser:"| @Ident"`
}

// Call is a record constructor or function call: Name(args)
// Example: coordinateSystem(extent={{-100,-100},{100,100}}, grid={2,2})
type Call struct {
	Name string `parser:"@Ident LParen"`
	Args []*Arg `parser:"( @@ ( Comma @@ )* )? RParen"`
}

// Arg is a positional or named argument
type Arg struct {
	Name  string `parser:"( @Ident Equals )?"`
	Value *Expr  `parser:"@@"`
}

// Array is a brace-delimited list: {a, b, c}
type Array struct {
	Elems []*Expr `parser:"LBrace ( @@ ( Comma @@ )* )? RBrace"`
}

// Named returns the value of the named argument, or nil
func (c *Call) Named(name string) *Expr {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}

// Positional returns the i-th unnamed argument, or nil
func (c *Call) Positional(i int) *Expr {
	n := 0
	for _, a := range c.Args {
		if a.Name != "" {
			continue
		}
		if n == i {
			return a.Value
		}
		n++
	}
	return nil
}

// Arg returns the named argument or, failing that, the positional one
func (c *Call) Arg(name string, pos int) *Expr {
	if e := c.Named(name); e != nil {
		return e
	}
	if pos < 0 {
		return nil
	}
	return c.Positional(pos)
}

// Calls returns the nested calls named name, in order
func (c *Call) Calls(name string) []*Call {
	var out []*Call
	for _, a := range c.Args {
		if a.Value != nil && a.Value.Call != nil && a.Value.Call.Name == name {
			out = append(out, a.Value.Call)
		}
	}
	return out
}

// Call returns the first nested call named name, or nil
func (c *Call) Call(name string) *Call {
	if calls := c.Calls(name); len(calls) > 0 {
		return calls[0]
	}
	return nil
}

// String renders the call without insignificant whitespace
func (c *Call) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c *Call) write(sb *strings.Builder) {
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		if a.Name != "" {
			sb.WriteString(a.Name)
			sb.WriteByte('=')
		}
		a.Value.write(sb)
	}
	sb.WriteByte(')')
}

// String renders the expression without insignificant whitespace
func (e *Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	switch {
	case e == nil:
	case e.Call != nil:
		e.Call.write(sb)
	case e.Array != nil:
		sb.WriteByte('{')
		for i, el := range e.Array.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			el.write(sb)
		}
		sb.WriteByte('}')
	case e.Str != nil:
		sb.WriteString(*e.Str)
	case e.Number != nil:
		sb.WriteString(*e.Number)
	case e.Ref != nil:
		sb.WriteString(*e.Ref)
	}
}
