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
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tombee/flowgen/pkg/errors"
)

// Wildcard is the segment that selects every element of an array.
const Wildcard = "*"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

type segment struct {
	name    string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

// Path is an immutable reference into a runtime namespace, such as
// steps.step_1.outputs.version. Extending a path returns a new Path; the
// receiver is never modified.
//
// Rendering a path fires its access hook. The workflow builder uses the
// hook to learn which steps are referenced so that only those steps get
// an id in the generated document.
type Path struct {
	segments  []segment
	jsonDepth int
	onAccess  func()
}

// PathOption configures a root Path.
type PathOption func(*Path)

// WithJSONDepth marks values at the given depth as JSON-encoded strings.
// Once a path has depth segments, those segments render wrapped in
// fromJSON(...) and any further segments are applied to the parsed value.
func WithJSONDepth(depth int) PathOption {
	return func(p *Path) {
		p.jsonDepth = depth
	}
}

// WithAccessHook registers fn to be called every time the path, or any
// path derived from it, is rendered.
func WithAccessHook(fn func()) PathOption {
	return func(p *Path) {
		p.onAccess = fn
	}
}

// Root creates a path rooted at the named namespace.
func Root(name string, opts ...PathOption) Path {
	p := Path{segments: []segment{{name: name}}}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Path) extend(s segment) Path {
	segments := make([]segment, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{
		segments:  append(segments, s),
		jsonDepth: p.jsonDepth,
		onAccess:  p.onAccess,
	}
}

// Field returns a new path selecting the named field.
func (p Path) Field(name string) Path {
	return p.extend(segment{name: name})
}

// Get returns a new path selecting each name in turn.
func (p Path) Get(names ...string) Path {
	for _, name := range names {
		p = p.Field(name)
	}
	return p
}

// Index returns a new path selecting the i-th array element.
func (p Path) Index(i int) Path {
	return p.extend(segment{index: i, isIndex: true})
}

// All returns a new path selecting every element of an array.
func (p Path) All() Path {
	return p.Field(Wildcard)
}

// IsZero reports whether p is the zero Path, which has no namespace.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// Segments returns the path's segments, namespace first. Indices are
// returned in decimal form.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	for i, s := range p.segments {
		out[i] = s.String()
	}
	return out
}

// JSONDepth returns the depth at which values are JSON-decoded, or 0.
func (p Path) JSONDepth() int {
	return p.jsonDepth
}

// Kind implements Expression.
func (p Path) Kind() Kind { return KindPath }

func (p Path) sealed() {}

// Bare implements Expression.
func (p Path) Bare() (string, error) {
	if p.IsZero() {
		return "", &errors.ValidationError{
			Field:   "path",
			Message: "cannot render an empty context path",
		}
	}
	if p.onAccess != nil {
		p.onAccess()
	}
	return renderSegments(p.segments, p.jsonDepth), nil
}

// Wrapped implements Expression.
func (p Path) Wrapped() (string, error) {
	s, err := p.Bare()
	if err != nil {
		return "", err
	}
	return interpolationMarker(s), nil
}

// String implements fmt.Stringer with the wrapped rendering.
func (p Path) String() string {
	s, err := p.Wrapped()
	if err != nil {
		return fmt.Sprintf("%%!(%v)", err)
	}
	return s
}

// MarshalYAML emits the wrapped rendering.
func (p Path) MarshalYAML() (interface{}, error) {
	return p.Wrapped()
}

// MarshalJSON emits the wrapped rendering as a JSON string.
func (p Path) MarshalJSON() ([]byte, error) {
	s, err := p.Wrapped()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Set always fails: paths are read-only.
func (p Path) Set(name string, value any) error {
	return p.immutable("set")
}

// Delete always fails: paths are read-only.
func (p Path) Delete(name string) error {
	return p.immutable("delete")
}

// Keys always fails: the fields of a runtime namespace are unknown until
// the workflow runs.
func (p Path) Keys() ([]string, error) {
	return nil, p.immutable("keys")
}

// Define always fails: paths are read-only.
func (p Path) Define(name string, value any) error {
	return p.immutable("define")
}

func (p Path) immutable(op string) error {
	return &errors.ImmutablePathError{Op: op, Path: p.Segments()}
}

func renderSegments(segments []segment, jsonDepth int) string {
	var b strings.Builder
	rest := segments[1:]
	if jsonDepth > 0 && len(segments) >= jsonDepth {
		b.WriteString("fromJSON(")
		b.WriteString(renderSegments(segments[:jsonDepth], 0))
		b.WriteString(")")
		rest = segments[jsonDepth:]
	} else {
		b.WriteString(segments[0].name)
	}
	for _, s := range rest {
		switch {
		case s.isIndex:
			b.WriteString("[" + strconv.Itoa(s.index) + "]")
		case s.name == Wildcard, identifierPattern.MatchString(s.name):
			b.WriteString("." + s.name)
		default:
			b.WriteString("[" + quote(s.name) + "]")
		}
	}
	return b.String()
}
