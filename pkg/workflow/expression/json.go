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
	"strings"
)

const fromJSONCall = "fromJSON("

// ToJSON renders toJSON(value). When value renders as fromJSON(X) and X is
// a single balanced sub-expression, the pair cancels out and X is rendered
// instead. If the scan is inconclusive the full form is kept.
func ToJSON(value any) *Composite {
	v := Of(value)
	return newComposite("toJSON", []Expression{v}, func() (string, error) {
		s, err := v.Bare()
		if err != nil {
			return "", err
		}
		if inner, ok := fromJSONArgument(s); ok {
			return inner, nil
		}
		return "toJSON(" + s + ")", nil
	})
}

// fromJSONArgument returns X when s is exactly fromJSON(X). The argument
// must close only at the final parenthesis, keep quotes, brackets and
// braces balanced, and contain no top-level comma.
func fromJSONArgument(s string) (string, bool) {
	if !strings.HasPrefix(s, fromJSONCall) || !strings.HasSuffix(s, ")") {
		return "", false
	}
	inner := s[len(fromJSONCall) : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return "", false
	}

	var (
		stack []byte
		quote byte
	)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			stack = append(stack, ')')
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ')', ']', '}':
			n := len(stack)
			if n == 0 || stack[n-1] != c {
				return "", false
			}
			stack = stack[:n-1]
		case ',':
			if len(stack) == 0 {
				return "", false
			}
		}
	}
	if quote != 0 || len(stack) != 0 {
		return "", false
	}
	return inner, true
}
