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
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Record is an ordered set of named fields. It serializes to a YAML or JSON
// mapping with keys in insertion order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set assigns a field. New keys are appended; existing keys keep their
// position.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value of a field.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the field is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalYAML emits the record as a mapping node in field order.
func (r *Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		key := &yaml.Node{}
		key.SetString(k)

		value := &yaml.Node{}
		if err := value.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", k, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// MarshalJSON emits the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortKeys returns a copy of r with the priority fields first, in the given
// order, followed by every other field in ascending order. Priority fields
// that r does not have are skipped. Values are shared with r.
func SortKeys(r *Record, priority ...string) *Record {
	out := NewRecord()
	for _, k := range priority {
		if v, ok := r.values[k]; ok {
			out.Set(k, v)
		}
	}

	rest := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		if !slices.Contains(priority, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out.Set(k, r.values[k])
	}
	return out
}

// isUnset reports whether v is nil, including a nil pointer, map or slice
// stored in an interface.
func isUnset(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// recordFromMap converts m to a record with keys in ascending order,
// dropping nil values. It returns nil when nothing is left.
func recordFromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if !isUnset(v) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	r := NewRecord()
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}
