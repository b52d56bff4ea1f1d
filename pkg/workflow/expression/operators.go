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

// Eq renders left == right.
func Eq(left, right any) *Composite { return infix("==", left, right) }

// Neq renders left != right.
func Neq(left, right any) *Composite { return infix("!=", left, right) }

// Gt renders left > right.
func Gt(left, right any) *Composite { return infix(">", left, right) }

// Gteq renders left >= right.
func Gteq(left, right any) *Composite { return infix(">=", left, right) }

// Lt renders left < right.
func Lt(left, right any) *Composite { return infix("<", left, right) }

// Lteq renders left <= right.
func Lteq(left, right any) *Composite { return infix("<=", left, right) }

func infix(op string, left, right any) *Composite {
	l, r := Of(left), Of(right)
	return newComposite(op, []Expression{l, r}, func() (string, error) {
		ls, err := atomic(l)
		if err != nil {
			return "", err
		}
		rs, err := atomic(r)
		if err != nil {
			return "", err
		}
		return ls + " " + op + " " + rs, nil
	})
}

// And renders the conjunction of conditions. A single condition renders as
// itself; no conditions render as true.
func And(conditions ...any) *Composite {
	return joinConditions("&&", "true", conditions)
}

// Or renders the disjunction of conditions. A single condition renders as
// itself; no conditions render as false.
func Or(conditions ...any) *Composite {
	return joinConditions("||", "false", conditions)
}

func joinConditions(op, empty string, conditions []any) *Composite {
	args := lift(conditions)
	return newComposite(op, args, func() (string, error) {
		switch len(args) {
		case 0:
			return empty, nil
		case 1:
			return args[0].Bare()
		}
		parts := make([]string, len(args))
		for i, arg := range args {
			s, err := atomic(arg)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, " "+op+" "), nil
	})
}

// Not renders the negation of value.
func Not(value any) *Composite {
	v := Of(value)
	return newComposite("!", []Expression{v}, func() (string, error) {
		s, err := atomic(v)
		if err != nil {
			return "", err
		}
		return "!" + s, nil
	})
}

// Contains renders contains(search, item).
func Contains(search, item any) *Composite {
	return call("contains", search, item)
}

// StartsWith renders startsWith(search, item).
func StartsWith(search, item any) *Composite {
	return call("startsWith", search, item)
}

// EndsWith renders endsWith(search, item).
func EndsWith(search, item any) *Composite {
	return call("endsWith", search, item)
}

// Format renders format(template, args...). Placeholders in template are
// written {0}, {1} and so on.
func Format(template string, args ...any) *Composite {
	return call("format", append([]any{template}, args...)...)
}

// Join renders join(array, separator). The separator defaults to ", ".
func Join(array any, separator ...string) *Composite {
	sep := ", "
	if len(separator) > 0 {
		sep = separator[0]
	}
	return call("join", array, sep)
}

// HashFiles renders hashFiles(paths...). At least one path is required.
func HashFiles(path any, more ...any) *Composite {
	return call("hashFiles", append([]any{path}, more...)...)
}

// Success renders success(): true when no previous step failed.
func Success() *Composite { return call("success") }

// Always renders always(): true even when the workflow is cancelled.
func Always() *Composite { return call("always") }

// Cancelled renders cancelled(): true when the workflow was cancelled.
func Cancelled() *Composite { return call("cancelled") }

// Failure renders failure(): true when a previous step failed.
func Failure() *Composite { return call("failure") }

// FromJSON renders fromJSON(value), parsing a JSON-encoded string.
func FromJSON(value any) *Composite {
	return call("fromJSON", value)
}

func call(name string, args ...any) *Composite {
	exprs := lift(args)
	return newComposite(name, exprs, func() (string, error) {
		parts := make([]string, len(exprs))
		for i, arg := range exprs {
			s, err := arg.Bare()
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return name + "(" + strings.Join(parts, ", ") + ")", nil
	})
}
