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

package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow"
)

// Entry is a registered workflow.
type Entry struct {
	// Name identifies the workflow and determines its file name.
	Name string
	// Source is shown in the generated file's banner.
	Source string
	// Build describes the workflow.
	Build workflow.BuildFunc
}

// FileName returns the generated file name for ext. Slashes in the name
// become underscores, so "deploy/prod" is written to "deploy_prod.yml".
func (e *Entry) FileName(ext string) string {
	return strings.ReplaceAll(e.Name, "/", "_") + ext
}

// Registry holds the workflows a generator can write.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a workflow. The caller's source file is recorded for the
// banner, relative to the working directory when possible.
func (r *Registry) Register(name string, fn workflow.BuildFunc) error {
	source := "unknown"
	if _, file, _, ok := runtime.Caller(1); ok {
		source = relativeSource(file)
	}
	return r.RegisterSource(name, source, fn)
}

// MustRegister is Register for package-level setup; it panics on error.
func (r *Registry) MustRegister(name string, fn workflow.BuildFunc) {
	source := "unknown"
	if _, file, _, ok := runtime.Caller(1); ok {
		source = relativeSource(file)
	}
	if err := r.RegisterSource(name, source, fn); err != nil {
		panic(err)
	}
}

// RegisterSource adds a workflow with an explicit source path.
func (r *Registry) RegisterSource(name, source string, fn workflow.BuildFunc) error {
	if err := validateName(name); err != nil {
		return err
	}
	if fn == nil {
		return &flowerrors.ValidationError{
			Field:   "workflow",
			Message: fmt.Sprintf("workflow %q has no build function", name),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return &flowerrors.ValidationError{
			Field:   "workflow",
			Message: fmt.Sprintf("workflow %q is already registered", name),
			Hint:    "workflow names must be unique",
		}
	}
	r.entries[name] = &Entry{Name: name, Source: source, Build: fn}
	return nil
}

// Lookup returns the workflow registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns all registered workflows sorted by name.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &flowerrors.ValidationError{Field: "workflow", Message: "workflow name is required"}
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "\\") {
		return &flowerrors.ValidationError{
			Field:   "workflow",
			Message: fmt.Sprintf("invalid workflow name %q", name),
			Hint:    "use names like \"test\" or \"deploy/prod\"",
		}
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return &flowerrors.ValidationError{
				Field:   "workflow",
				Message: fmt.Sprintf("invalid workflow name %q", name),
				Hint:    "use names like \"test\" or \"deploy/prod\"",
			}
		}
	}
	return nil
}

func relativeSource(file string) string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(wd, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
