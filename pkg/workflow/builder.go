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
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/tombee/flowgen/internal/log"
	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// ErrBuildInProgress is returned by Build when another build is running,
// including a Build called from inside a BuildFunc.
var ErrBuildInProgress = errors.New("only one workflow can be built at a time")

var building atomic.Bool

// BuildFunc describes a workflow by calling methods on w.
type BuildFunc func(w *Workflow) error

// BuildOption configures a Build call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives build diagnostics.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Build runs fn against a fresh workflow and returns the finished document.
// Any error, from fn or from finalization, means no document is produced.
func Build(fn BuildFunc, opts ...BuildOption) (*Document, error) {
	if !building.CompareAndSwap(false, true) {
		return nil, ErrBuildInProgress
	}
	defer building.Store(false)

	cfg := buildConfig{logger: log.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Workflow{
		logger:      cfg.logger,
		jobs:        NewRecord(),
		attachedIDs: new(atomic.Int64),
	}
	if err := fn(w); err != nil {
		return nil, err
	}

	doc := &Document{root: w.finalize()}
	if err := resolveIdentifiers(doc, w.attachedIDs); err != nil {
		return nil, err
	}
	cfg.logger.Debug("workflow built",
		log.String("name", w.name),
		log.Int("jobs", w.jobs.Len()),
		slog.Int64("step_ids", w.attachedIDs.Load()))
	return doc, nil
}

// Workflow is the build context handed to a BuildFunc.
type Workflow struct {
	conditions conditionStack
	logger     *slog.Logger

	name        string
	nameSet     bool
	triggers    *Record
	permissions *Permissions
	env         map[string]any
	defaults    *Defaults
	jobs        *Record

	// attachedIDs counts step ids attached by access hooks.
	attachedIDs *atomic.Int64
}

// SetName sets the workflow's display name. It may be called once.
func (w *Workflow) SetName(name string) error {
	if w.nameSet {
		return &flowerrors.DuplicateSettingError{Field: "workflow name"}
	}
	w.name = name
	w.nameSet = true
	return nil
}

// AddTrigger adds an event that starts the workflow. Each kind may be added
// once; a nil config is emitted as null. The returned path refers to the
// triggering event's payload.
func (w *Workflow) AddTrigger(name Trigger, config any) (expression.Path, error) {
	if w.triggers == nil {
		w.triggers = NewRecord()
	}
	if w.triggers.Has(string(name)) {
		return expression.Path{}, &flowerrors.DuplicateSettingError{Field: fmt.Sprintf("the %q trigger", name)}
	}
	w.triggers.Set(string(name), config)
	return expression.Github.Field("event"), nil
}

// SetPermissions sets the default token permissions for every job. A later
// call replaces an earlier one.
func (w *Workflow) SetPermissions(p Permissions) {
	w.permissions = &p
}

// SetEnv sets a workflow-level environment variable. A nil value removes it.
func (w *Workflow) SetEnv(name string, value any) {
	if w.env == nil {
		w.env = make(map[string]any)
	}
	w.env[name] = value
}

// SetDefaults sets the run defaults for every job. It may be called once.
func (w *Workflow) SetDefaults(d Defaults) error {
	if w.defaults != nil {
		return &flowerrors.DuplicateSettingError{Field: "workflow defaults"}
	}
	w.defaults = &d
	return nil
}

// When runs fn with cond applied to every job added inside it.
func (w *Workflow) When(cond any, fn func() error) error {
	return w.conditions.when(cond, fn)
}

// WhenTrigger runs fn with a condition that holds only for runs started by
// the named trigger. fn receives the event payload path.
func (w *Workflow) WhenTrigger(name Trigger, fn func(event expression.Path) error) error {
	return w.conditions.whenTrigger(name, fn)
}

// AddJob adds a job described by fn and returns a reference other jobs can
// depend on.
func (w *Workflow) AddJob(id string, fn JobFunc) (JobRef, error) {
	if id == "" {
		return JobRef{}, &flowerrors.ValidationError{Field: "job", Message: "job id must not be empty"}
	}
	if w.jobs.Has(id) {
		return JobRef{}, &flowerrors.DuplicateSettingError{Field: fmt.Sprintf("job %q", id)}
	}

	j := newJob(w, id)
	outputs, err := fn(j)
	if err != nil {
		return JobRef{}, flowerrors.Wrapf(err, "job %s", id)
	}
	w.jobs.Set(id, j.finalize(outputs))

	w.logger.Debug("job added",
		log.String("job", id),
		log.Int("steps", len(j.steps)),
		log.Int("conditions", w.conditions.depth()))
	return JobRef{ID: id}, nil
}

func (w *Workflow) finalize() *Record {
	r := NewRecord()
	if w.nameSet {
		r.Set("name", w.name)
	}
	if w.triggers != nil {
		r.Set("on", w.triggers)
	}
	if env := recordFromMap(w.env); env != nil {
		r.Set("env", env)
	}
	if w.defaults != nil {
		r.Set("defaults", w.defaults.value())
	}
	if w.permissions != nil {
		r.Set("permissions", w.permissions.value())
	}
	r.Set("jobs", w.jobs)
	return SortKeys(r, documentKeyOrder...)
}

var documentKeyOrder = []string{"name", "on", "env", "defaults", "jobs"}
