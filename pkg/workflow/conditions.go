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

package workflow

import (
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// conditionStack tracks the conditions of the When blocks currently open in
// one scope (the workflow, or a single job).
type conditionStack struct {
	items []expression.Expression
}

// current returns the conjunction of every open condition, or false when no
// block is open. The conjunction captures a copy of the stack.
func (s *conditionStack) current() (expression.Expression, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	snapshot := make([]any, len(s.items))
	for i, c := range s.items {
		snapshot[i] = c
	}
	return expression.And(snapshot...), true
}

func (s *conditionStack) depth() int {
	return len(s.items)
}

// when runs fn with cond pushed. The condition is popped on every exit path,
// including a panic inside fn.
func (s *conditionStack) when(cond any, fn func() error) error {
	s.items = append(s.items, expression.Of(cond))
	defer s.pop()
	return fn()
}

func (s *conditionStack) whenTrigger(name Trigger, fn func(event expression.Path) error) error {
	cond := expression.Eq(expression.Github.Field("event_name"), string(name))
	return s.when(cond, func() error {
		return fn(expression.Github.Field("event"))
	})
}

func (s *conditionStack) pop() {
	s.items = s.items[:len(s.items)-1]
}
