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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowgen/pkg/errors"
)

func TestCheckSyntax_Valid(t *testing.T) {
	valid := []Expression{
		Eq(Github.Field("event_name"), "push"),
		And(Eq(1, 1), Not(Eq(2, 3))),
		Contains(Github.Field("ref"), "refs/tags"),
		StartsWith(Github.Field("ref"), "it's"),
		Neq(Steps.Get("step_1", "outputs", "cache-hit"), "true"),
		Interpolate(Runner.Field("os"), "-", HashFiles("go.sum")),
		ToJSON(Steps),
		ToJSON(Steps.All().Field("outcome")),
		Needs.Get("build", "outputs", "version"),
		Env.Field("my var"),
		Or(Failure(), Cancelled()),
	}

	for _, e := range valid {
		s, err := e.Bare()
		require.NoError(t, err)
		t.Run(s, func(t *testing.T) {
			assert.NoError(t, CheckSyntax(s))
		})
	}
}

func TestCheckSyntax_Invalid(t *testing.T) {
	invalid := []string{
		"github.event_name ==",
		"(github.ref == 'x'",
		"contains(github.ref, 'x'",
		"'unterminated",
		"   ",
	}

	for _, s := range invalid {
		t.Run(s, func(t *testing.T) {
			err := CheckSyntax(s)
			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "expression", verr.Field)
		})
	}
}

func TestToExprDialect(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "a == 'it''s'", want: `a == 'it\'s'`},
		{input: `'back\slash'`, want: `'back\\slash'`},
		{input: "steps.*.outcome", want: "steps[0].outcome"},
		{input: "contains(a, 'b')", want: "fn_contains(a, 'b')"},
		{input: "github.event.in", want: "github.event.fn_in"},
		{input: "'contains(x)'", want: "'contains(x)'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, toExprDialect(tt.input))
		})
	}
}
