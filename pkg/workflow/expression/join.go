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
	"strconv"
	"strings"
)

// Interpolate concatenates literal text and expressions into one string,
// e.g. Interpolate(Runner.Field("os"), "-", HashFiles("go.sum")).
func Interpolate(parts ...any) Expression {
	return JoinStrings(parts, "")
}

// JoinStrings concatenates parts with separator (default ","). When every
// part is a literal the result is a string Literal. Otherwise it renders
// with format(), escaping braces in literal text, and its wrapped form is
// the literal text with ${{ }} segments for each expression.
//
// Joining the result of a join splices its parts in place, so repeated
// concatenation never nests format() calls.
func JoinStrings(parts []any, separator ...string) Expression {
	sep := ","
	if len(separator) > 0 {
		sep = separator[0]
	}

	var flat []Expression
	for i, p := range parts {
		if i > 0 {
			flat = append(flat, String(sep))
		}
		e := Of(p)
		if c, ok := e.(*Composite); ok && c.parts != nil {
			flat = append(flat, c.parts...)
			continue
		}
		flat = append(flat, e)
	}

	folded := foldText(flat)
	switch {
	case len(folded) == 0:
		return String("")
	case len(folded) == 1:
		if l, ok := folded[0].(Literal); ok && isText(l) {
			return l
		}
	}
	return newJoin(folded)
}

// isText reports whether l contributes plain text to a join. Null is
// passed to format() as an argument instead.
func isText(l Literal) bool {
	return l.value != nil
}

// foldText merges adjacent text literals into one string literal and
// drops empty ones.
func foldText(parts []Expression) []Expression {
	var (
		out []Expression
		buf strings.Builder
		has bool
	)
	flush := func() {
		if has && buf.Len() > 0 {
			out = append(out, String(buf.String()))
		}
		buf.Reset()
		has = false
	}
	for _, p := range parts {
		if l, ok := p.(Literal); ok && isText(l) {
			// text() only fails for non-finite floats; keep those as
			// arguments so the error surfaces when rendered.
			if s, err := l.text(); err == nil {
				buf.WriteString(s)
				has = true
				continue
			}
		}
		flush()
		out = append(out, p)
	}
	flush()
	return out
}

func newJoin(parts []Expression) *Composite {
	c := newComposite("join", parts, func() (string, error) {
		var (
			tmpl   strings.Builder
			params []string
		)
		for _, p := range parts {
			if l, ok := p.(Literal); ok && isText(l) {
				s, err := l.text()
				if err != nil {
					return "", err
				}
				tmpl.WriteString(escapeBraces(s))
				continue
			}
			s, err := p.Bare()
			if err != nil {
				return "", err
			}
			tmpl.WriteString("{" + strconv.Itoa(len(params)) + "}")
			params = append(params, s)
		}
		return "format(" + quote(tmpl.String()) + ", " + strings.Join(params, ", ") + ")", nil
	})
	c.inline = func() (string, error) {
		var b strings.Builder
		for _, p := range parts {
			if l, ok := p.(Literal); ok && isText(l) {
				s, err := l.text()
				if err != nil {
					return "", err
				}
				b.WriteString(s)
				continue
			}
			s, err := p.Bare()
			if err != nil {
				return "", err
			}
			b.WriteString(interpolationMarker(s))
		}
		return b.String(), nil
	}
	c.parts = parts
	return c
}

func escapeBraces(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}
