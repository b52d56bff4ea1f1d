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
	"reflect"
	"sort"
	"strconv"

	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// Document is a finished workflow. It is not modified after Build returns,
// apart from step ids attached when a step's path is first rendered.
type Document struct {
	root *Record
}

// Record returns the document's top-level record.
func (d *Document) Record() *Record {
	return d.root
}

// Name returns the workflow name, or "" when none was set.
func (d *Document) Name() string {
	v, _ := d.root.Get("name")
	s, _ := v.(string)
	return s
}

// JobIDs returns the job ids in the order they were added.
func (d *Document) JobIDs() []string {
	jobs, ok := d.jobs()
	if !ok {
		return nil
	}
	return jobs.Keys()
}

// Job returns the record of a job.
func (d *Document) Job(id string) (*Record, bool) {
	jobs, ok := d.jobs()
	if !ok {
		return nil, false
	}
	v, ok := jobs.Get(id)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Record)
	return r, ok
}

func (d *Document) jobs() (*Record, bool) {
	v, ok := d.root.Get("jobs")
	if !ok {
		return nil, false
	}
	r, ok := v.(*Record)
	return r, ok
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (interface{}, error) {
	return d.root.MarshalYAML()
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.root.MarshalJSON()
}

// WalkFunc is called for every expression in a document. at is the chain of
// keys and list indexes leading to the value.
type WalkFunc func(at []string, e expression.Expression) error

// Walk calls fn for every expression in the document, in document order.
// Walking stops at the first error.
func (d *Document) Walk(fn WalkFunc) error {
	return walk(d.root, nil, fn)
}

func walk(value any, at []string, fn WalkFunc) error {
	if isUnset(value) {
		return nil
	}
	switch v := value.(type) {
	case expression.Expression:
		return fn(at, v)
	case *Record:
		if v == nil {
			return nil
		}
		for _, k := range v.keys {
			if err := walk(v.values[k], appendKey(at, k), fn); err != nil {
				return err
			}
		}
	case []*Record:
		for i, r := range v {
			if err := walk(r, appendKey(at, strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range v {
			if err := walk(item, appendKey(at, strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := walk(v[k], appendKey(at, k), fn); err != nil {
				return err
			}
		}
	default:
		return walkReflect(reflect.ValueOf(value), at, fn)
	}
	return nil
}

// walkReflect covers typed containers such as []expression.Path or
// map[string]expression.Expression placed in option maps.
func walkReflect(rv reflect.Value, at []string, fn WalkFunc) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := range rv.Len() {
			if err := walk(rv.Index(i).Interface(), appendKey(at, strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			if err := walk(rv.MapIndex(k).Interface(), appendKey(at, k.String()), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendKey(at []string, key string) []string {
	out := make([]string, len(at), len(at)+1)
	copy(out, at)
	return append(out, key)
}
