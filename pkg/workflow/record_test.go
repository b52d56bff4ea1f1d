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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecord_InsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("c", 3)
	r.Set("b", 4)

	assert.Equal(t, []string{"b", "a", "c"}, r.Keys())
	assert.Equal(t, 3, r.Len())

	v, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	r.Delete("a")
	r.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, r.Keys())
	assert.False(t, r.Has("a"))
}

func TestRecord_MarshalJSON(t *testing.T) {
	inner := NewRecord()
	inner.Set("z", true)
	inner.Set("a", nil)

	r := NewRecord()
	r.Set("name", "ci")
	r.Set("inner", inner)
	r.Set("list", []any{1, "two"})

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ci","inner":{"z":true,"a":null},"list":[1,"two"]}`, string(out))

	empty, err := json.Marshal(NewRecord())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestRecord_MarshalYAML(t *testing.T) {
	inner := NewRecord()
	inner.Set("z", 1)
	inner.Set("a", 2)

	r := NewRecord()
	r.Set("name", "ci")
	r.Set("inner", inner)

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "name: ci\ninner:\n    z: 1\n    a: 2\n", string(out))
}

func TestSortKeys(t *testing.T) {
	r := NewRecord()
	r.Set("steps", 1)
	r.Set("zeta", 2)
	r.Set("runs-on", 3)
	r.Set("alpha", 4)
	r.Set("name", 5)

	sorted := SortKeys(r, "name", "needs", "runs-on", "steps")
	assert.Equal(t, []string{"name", "runs-on", "steps", "alpha", "zeta"}, sorted.Keys())

	// The input keeps its own order.
	assert.Equal(t, []string{"steps", "zeta", "runs-on", "alpha", "name"}, r.Keys())

	v, _ := sorted.Get("alpha")
	assert.Equal(t, 4, v)
}

func TestRecordFromMap(t *testing.T) {
	assert.Nil(t, recordFromMap(nil))
	assert.Nil(t, recordFromMap(map[string]any{"a": nil}))

	r := recordFromMap(map[string]any{"b": 1, "a": "x", "c": nil})
	require.NotNil(t, r)
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}
