// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expression

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tombee/flowgen/pkg/errors"
)

// Kind discriminates the variants of Expression.
type Kind int

const (
	// KindLiteral is a null, boolean, number or string constant.
	KindLiteral Kind = iota + 1
	// KindPath is a symbolic reference into a runtime namespace.
	KindPath
	// KindComposite is an operator applied to child expressions.
	KindComposite
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindPath:
		return "path"
	case KindComposite:
		return "composite"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Expression is a deferred value rendered into platform expression syntax.
// The set of implementations is closed: Literal, Path and *Composite.
type Expression interface {
	// Kind reports which variant the expression is.
	Kind() Kind

	// Bare renders the expression for embedding inside another expression.
	Bare() (string, error)

	// Wrapped renders the expression for an ordinary YAML string value,
	// normally as ${{ <bare> }}.
	Wrapped() (string, error)

	sealed()
}

// Literal is a constant embedded verbatim in an expression.
type Literal struct {
	value any // nil, bool, int64, uint64, float64 or string
}

// Null returns the null literal.
func Null() Literal { return Literal{} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{value: b} }

// Int returns an integer literal.
func Int(i int64) Literal { return Literal{value: i} }

// Float returns a floating point literal.
func Float(f float64) Literal { return Literal{value: f} }

// String returns a string literal.
func String(s string) Literal { return Literal{value: s} }

// Kind implements Expression.
func (l Literal) Kind() Kind { return KindLiteral }

func (l Literal) sealed() {}

// Value returns the underlying Go value.
func (l Literal) Value() any { return l.value }

// IsNull reports whether the literal is null.
func (l Literal) IsNull() bool { return l.value == nil }

// Bare renders the literal in expression syntax. Strings are single-quoted
// with embedded quotes doubled.
func (l Literal) Bare() (string, error) {
	switch v := l.value.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return quote(v), nil
	default:
		return formatNumber(v)
	}
}

// Wrapped renders the literal as plain text, which is how a constant
// appears in a YAML value or inside an interpolated string.
func (l Literal) Wrapped() (string, error) {
	return l.text()
}

func (l Literal) text() (string, error) {
	switch v := l.value.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	default:
		return formatNumber(v)
	}
}

// String implements fmt.Stringer.
func (l Literal) String() string {
	s, err := l.text()
	if err != nil {
		return fmt.Sprintf("%%!(%v)", err)
	}
	return s
}

// MarshalYAML emits the literal as a native YAML scalar.
func (l Literal) MarshalYAML() (interface{}, error) {
	return l.value, nil
}

// MarshalJSON emits the literal as a native JSON scalar.
func (l Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.value)
}

func formatNumber(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot render number %v: %w", v, err)
	}
	return string(b), nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Of lifts a Go value into an Expression. Expressions are returned as is.
// nil becomes Null. Strings, booleans and numeric types become literals.
// Any other type yields an expression whose rendering fails with
// *errors.UnsupportedOperandError.
func Of(v any) Expression {
	switch v := v.(type) {
	case nil:
		return Null()
	case Expression:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Literal{value: uint64(v)}
	case uint8:
		return Literal{value: uint64(v)}
	case uint16:
		return Literal{value: uint64(v)}
	case uint32:
		return Literal{value: uint64(v)}
	case uint64:
		return Literal{value: v}
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	default:
		typ := fmt.Sprintf("%T", v)
		return newComposite("invalid", nil, func() (string, error) {
			return "", &errors.UnsupportedOperandError{Type: typ}
		})
	}
}

// IsExpression reports whether v is an Expression, as opposed to a plain
// Go value.
func IsExpression(v any) bool {
	_, ok := v.(Expression)
	return ok
}

func lift(values []any) []Expression {
	exprs := make([]Expression, len(values))
	for i, v := range values {
		exprs[i] = Of(v)
	}
	return exprs
}

// Composite is an operator applied to child expressions. It is created by
// the operator functions of this package.
type Composite struct {
	op     string
	args   []Expression
	render func() (string, error)

	// inline overrides the ${{ }} wrapping; set for string joins, which
	// render as literal text with interpolated segments.
	inline func() (string, error)

	// parts is non-nil for the result of JoinStrings and Interpolate so
	// that joining a join splices its parts instead of nesting calls.
	parts []Expression
}

func newComposite(op string, args []Expression, render func() (string, error)) *Composite {
	return &Composite{op: op, args: args, render: render}
}

// Kind implements Expression.
func (c *Composite) Kind() Kind { return KindComposite }

func (c *Composite) sealed() {}

// Op returns the operator name, e.g. "==", "&&" or "contains".
func (c *Composite) Op() string { return c.op }

// Args returns the operands the composite was built from.
func (c *Composite) Args() []Expression { return c.args }

// Parts returns the flattened parts of a string join, or nil when the
// composite is not a join.
func (c *Composite) Parts() []Expression { return c.parts }

// Bare implements Expression.
func (c *Composite) Bare() (string, error) {
	s, err := c.render()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Wrapped implements Expression.
func (c *Composite) Wrapped() (string, error) {
	if c.inline != nil {
		return c.inline()
	}
	s, err := c.Bare()
	if err != nil {
		return "", err
	}
	return interpolationMarker(s), nil
}

// String implements fmt.Stringer with the wrapped rendering.
func (c *Composite) String() string {
	s, err := c.Wrapped()
	if err != nil {
		return fmt.Sprintf("%%!(%v)", err)
	}
	return s
}

// MarshalYAML emits the wrapped rendering.
func (c *Composite) MarshalYAML() (interface{}, error) {
	return c.Wrapped()
}

// MarshalJSON emits the wrapped rendering as a JSON string.
func (c *Composite) MarshalJSON() ([]byte, error) {
	s, err := c.Wrapped()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func interpolationMarker(bare string) string {
	return "${{ " + bare + " }}"
}

// atomic renders an operand that must be syntactically a single term.
// Composite renderings containing an unguarded space are parenthesized;
// literals and paths are always atomic.
func atomic(e Expression) (string, error) {
	s, err := e.Bare()
	if err != nil {
		return "", err
	}
	if e.Kind() == KindComposite && needsBrackets(s) {
		return "(" + s + ")", nil
	}
	return s, nil
}

// needsBrackets reports whether s contains a space outside of quotes and
// parentheses. Calls and literals keep their spaces inside quotes or
// parens, so a top-level space means s is a compound expression.
func needsBrackets(s string) bool {
	var stack []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if n := len(stack); n > 0 && stack[n-1] == '\'' {
			if c == '\'' {
				stack = stack[:n-1]
			}
			continue
		}
		switch c {
		case '\'', '(':
			stack = append(stack, c)
		case ')':
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		case ' ':
			if len(stack) == 0 {
				return true
			}
		}
	}
	return false
}
