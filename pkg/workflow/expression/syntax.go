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
	"fmt"
	"strings"

	"github.com/expr-lang/expr/parser"
	"github.com/tombee/flowgen/pkg/errors"
)

// exprKeywords are identifiers the expr-lang grammar reserves. Platform
// expressions may use them as function or field names.
var exprKeywords = map[string]bool{
	"and":        true,
	"contains":   true,
	"else":       true,
	"endsWith":   true,
	"if":         true,
	"in":         true,
	"let":        true,
	"matches":    true,
	"not":        true,
	"or":         true,
	"startsWith": true,
}

// CheckSyntax reports whether a bare expression is syntactically well
// formed. It only checks shape: names, functions and types are not
// resolved.
//
// The expression is translated to the expr-lang dialect and parsed. Single
// quoted strings switch from doubled-quote to backslash escaping, wildcard
// selectors become index access, and every function name is renamed so
// expr-lang builtins with special grammar do not apply.
func CheckSyntax(source string) error {
	if strings.TrimSpace(source) == "" {
		return &errors.ValidationError{
			Field:   "expression",
			Message: "expression is empty",
		}
	}
	if _, err := parser.Parse(toExprDialect(source)); err != nil {
		return &errors.ValidationError{
			Field:   "expression",
			Message: fmt.Sprintf("invalid expression %q: %s", source, firstLine(err.Error())),
			Hint:    "check operator placement, parentheses and quoting",
		}
	}
	return nil
}

func toExprDialect(source string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(source); i++ {
		c := source[i]
		if inString {
			switch {
			case c == '\'' && i+1 < len(source) && source[i+1] == '\'':
				b.WriteString(`\'`)
				i++
			case c == '\'':
				b.WriteByte(c)
				inString = false
			case c == '\\':
				b.WriteString(`\\`)
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '\'':
			inString = true
			b.WriteByte(c)
		case c == '.' && i+1 < len(source) && source[i+1] == '*':
			b.WriteString("[0]")
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(source) && isIdentPart(source[j]) {
				j++
			}
			ident := source[i:j]
			isCall := j < len(source) && source[j] == '('
			if isCall || exprKeywords[ident] {
				ident = "fn_" + ident
			}
			b.WriteString(ident)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
