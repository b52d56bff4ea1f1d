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

// Package expression builds GitHub Actions expressions.
//
// Values that only exist while a workflow runs (step outputs, the event
// payload, matrix axes) are modelled as deferred nodes that render to the
// platform's expression syntax when the workflow document is serialized.
//
// There are three kinds of node:
//
//   - Literal: null, booleans, numbers and strings, quoted with the
//     platform's rules ('it''s').
//   - Path: a reference into a runtime namespace such as
//     steps.step_1.outputs.version. Paths are immutable; Field returns a
//     new Path.
//   - Composite: an operator applied to other nodes, for example
//     Eq(Github.Field("event_name"), "push").
//
// Every node renders two ways. Bare returns text that can be embedded in
// another expression, and Wrapped returns the ${{ ... }} form used in
// ordinary YAML strings:
//
//	cond := And(Eq(Github.Field("event_name"), "push"), Not(Cancelled()))
//	cond.Bare()    // github.event_name == 'push' && !cancelled()
//	cond.Wrapped() // ${{ github.event_name == 'push' && !cancelled() }}
//
// Operators accept Go literals (string, bool, integer and float types, nil)
// or Expressions. Any other operand type fails when it is rendered.
package expression
