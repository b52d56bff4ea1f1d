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
	"fmt"
	"sort"

	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// DefaultMachineType is the runner label used when a job does not set one.
const DefaultMachineType = "ubuntu-latest"

// JobFunc describes a job by calling methods on j. The returned outputs are
// published to dependent jobs; nil entries are dropped.
type JobFunc func(j *Job) (Outputs, error)

// Outputs maps output names to the values a job publishes.
type Outputs map[string]any

// JobRef identifies a job added to a workflow.
type JobRef struct {
	ID string
}

// Steps is a reusable bundle of steps.
type Steps func(j *Job) error

// AddSteps applies a step bundle that also produces a value, such as the
// outputs of one of its steps.
func AddSteps[T any](j *Job, fn func(j *Job) (T, error)) (T, error) {
	return fn(j)
}

// Job is the build context handed to a JobFunc.
type Job struct {
	id         string
	workflow   *Workflow
	conditions conditionStack

	// condition is the workflow condition in force when the job was added.
	condition expression.Expression

	name            string
	nameSet         bool
	runsOn          any
	runsOnSet       bool
	permissions     *Permissions
	container       *Record
	env             map[string]any
	timeout         int
	continueOnError bool
	defaults        *Record
	strategy        *Record
	services        *Record
	needs           []string
	needsSet        bool
	steps           []*Record

	nextServiceID int
	nextStepID    int
}

func newJob(w *Workflow, id string) *Job {
	j := &Job{
		id:            id,
		workflow:      w,
		runsOn:        DefaultMachineType,
		nextServiceID: 1,
		nextStepID:    1,
	}
	if cond, ok := w.conditions.current(); ok {
		j.condition = cond
	}
	return j
}

// JobName returns the display name if one was set, otherwise the job id.
func (j *Job) JobName() string {
	if j.nameSet {
		return j.name
	}
	return j.id
}

// SetName sets the job's display name. It may be called once.
func (j *Job) SetName(name string) error {
	if j.nameSet {
		return &flowerrors.DuplicateSettingError{Field: "job name"}
	}
	j.name = name
	j.nameSet = true
	return nil
}

// SetMachineType selects the runner. label is a runner label, a list of
// labels, or an expression. It may be called once.
func (j *Job) SetMachineType(label any) error {
	if j.runsOnSet {
		return &flowerrors.DuplicateSettingError{Field: "machine type"}
	}
	j.runsOn = label
	j.runsOnSet = true
	return nil
}

// SetPermissions sets the job's token permissions. A later call replaces an
// earlier one.
func (j *Job) SetPermissions(p Permissions) {
	j.permissions = &p
}

// SetContainer runs the job inside a container. It may be called once.
func (j *Job) SetContainer(c Container) error {
	if j.container != nil {
		return &flowerrors.DuplicateSettingError{Field: "job container"}
	}
	j.container = c.value()
	return nil
}

// SetEnv sets a job-level environment variable. A nil value removes it.
func (j *Job) SetEnv(name string, value any) {
	if j.env == nil {
		j.env = make(map[string]any)
	}
	j.env[name] = value
}

// SetTimeout sets the job timeout in minutes. It may be called once.
func (j *Job) SetTimeout(minutes int) error {
	if j.timeout != 0 {
		return &flowerrors.DuplicateSettingError{Field: "job timeout"}
	}
	if minutes <= 0 {
		return &flowerrors.ValidationError{
			Field:   "timeout-minutes",
			Message: fmt.Sprintf("timeout must be positive, got %d", minutes),
		}
	}
	j.timeout = minutes
	return nil
}

// ContinueOnError lets the workflow succeed when this job fails. It may be
// called once.
func (j *Job) ContinueOnError() error {
	if j.continueOnError {
		return &flowerrors.DuplicateSettingError{Field: "continue-on-error"}
	}
	j.continueOnError = true
	return nil
}

// SetDefaults sets the run defaults for the job's steps. It may be called
// once.
func (j *Job) SetDefaults(d Defaults) error {
	if j.defaults != nil {
		return &flowerrors.DuplicateSettingError{Field: "job defaults"}
	}
	j.defaults = d.value()
	return nil
}

// SetBuildMatrix runs the job once per combination of axis values and
// returns the matrix context for referring to the current combination. It
// may be called once.
func (j *Job) SetBuildMatrix(axes Matrix, opts ...MatrixOptions) (expression.Path, error) {
	if j.strategy != nil {
		return expression.Path{}, &flowerrors.DuplicateSettingError{Field: "build matrix"}
	}
	j.strategy = matrixValue(axes, mergeMatrixOptions(opts))
	return expression.Matrix, nil
}

// AddService adds a sidecar container. Unnamed services are called
// service_1, service_2 and so on.
func (j *Job) AddService(s Service) {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("service_%d", j.nextServiceID)
		j.nextServiceID++
	}
	if j.services == nil {
		j.services = NewRecord()
	}
	j.services.Set(name, s.Container.value())
}

// AddDependencies makes this job wait for deps. It returns the outputs
// context of the first dependency, or a zero Path when deps is empty.
func (j *Job) AddDependencies(deps ...JobRef) expression.Path {
	j.needsSet = true
	for _, d := range deps {
		j.needs = append(j.needs, d.ID)
	}
	if len(deps) == 0 {
		return expression.Path{}
	}
	return expression.Needs.Field(deps[0].ID)
}

// Add applies a step bundle to the job.
func (j *Job) Add(steps Steps) error {
	return steps(j)
}

// When runs fn with cond applied to every step added inside it.
func (j *Job) When(cond any, fn func() error) error {
	return j.conditions.when(cond, fn)
}

// WhenTrigger runs fn with a condition that holds only for runs started by
// the named trigger.
func (j *Job) WhenTrigger(name Trigger, fn func(event expression.Path) error) error {
	return j.conditions.whenTrigger(name, fn)
}

func (j *Job) finalize(outputs Outputs) *Record {
	r := NewRecord()
	if j.condition != nil {
		r.Set("if", j.condition)
	}
	r.Set("runs-on", j.runsOn)

	steps := make([]*Record, len(j.steps))
	copy(steps, j.steps)
	r.Set("steps", steps)

	if j.nameSet {
		r.Set("name", j.name)
	}
	if j.needsSet {
		r.Set("needs", append([]string{}, j.needs...))
	}
	if env := recordFromMap(j.env); env != nil {
		r.Set("env", env)
	}
	if j.defaults != nil {
		r.Set("defaults", j.defaults)
	}
	if j.timeout != 0 {
		r.Set("timeout-minutes", j.timeout)
	}
	if j.strategy != nil {
		r.Set("strategy", j.strategy)
	}
	if j.continueOnError {
		r.Set("continue-on-error", true)
	}
	if j.container != nil {
		r.Set("container", j.container)
	}
	if j.services != nil {
		r.Set("services", j.services)
	}
	if j.permissions != nil {
		r.Set("permissions", j.permissions.value())
	}
	if out := outputsValue(outputs); out != nil {
		r.Set("outputs", out)
	}
	return SortKeys(r, jobKeyOrder...)
}

var jobKeyOrder = []string{
	"name",
	"needs",
	"runs-on",
	"env",
	"defaults",
	"if",
	"timeout-minutes",
	"strategy",
	"continue-on-error",
	"container",
	"services",
	"steps",
	"outputs",
}

func outputsValue(outputs Outputs) *Record {
	names := make([]string, 0, len(outputs))
	for name, v := range outputs {
		if !isUnset(v) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	r := NewRecord()
	for _, name := range names {
		r.Set(name, expression.ToJSON(outputs[name]))
	}
	return r
}
