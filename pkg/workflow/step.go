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
	"maps"

	"github.com/tombee/flowgen/internal/log"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// stepJSONDepth marks step outputs as JSON-encoded strings: the path
// steps.<id>.outputs.<name> is unwrapped with fromJSON.
const stepJSONDepth = 4

// RunOptions configure a run step. When several are given, later non-zero
// fields win and maps are merged.
type RunOptions struct {
	// JSONOutputs declares that the step writes JSON-encoded outputs.
	JSONOutputs      bool
	WorkingDirectory string
	Shell            Shell
	Env              map[string]any
	ContinueOnError  any
	TimeoutMinutes   any
}

// UseOptions configure an action step. When several are given, later
// non-zero fields win and maps are merged.
type UseOptions struct {
	// JSONOutputs declares that the action writes JSON-encoded outputs.
	JSONOutputs     bool
	With            map[string]any
	Env             map[string]any
	ContinueOnError any
	TimeoutMinutes  any
}

// Run adds a step that runs script in the runner's shell. The returned path
// refers to the step's context; using it gives the step an id.
func (j *Job) Run(script any, opts ...RunOptions) expression.Path {
	return j.RunNamed("", script, opts...)
}

// RunNamed is Run with a display name.
func (j *Job) RunNamed(name string, script any, opts ...RunOptions) expression.Path {
	o := mergeRunOptions(opts)

	step := j.newStep(name)
	step.Set("run", script)
	if o.WorkingDirectory != "" {
		step.Set("working-directory", o.WorkingDirectory)
	}
	if o.Shell != "" {
		step.Set("shell", string(o.Shell))
	}
	setCommon(step, o.Env, o.ContinueOnError, o.TimeoutMinutes)

	return j.addStep(step, o.JSONOutputs)
}

// Use adds a step that runs a published action.
func (j *Job) Use(action string, opts ...UseOptions) expression.Path {
	return j.UseNamed("", action, opts...)
}

// UseNamed is Use with a display name.
func (j *Job) UseNamed(name, action string, opts ...UseOptions) expression.Path {
	o := mergeUseOptions(opts)

	step := j.newStep(name)
	step.Set("uses", action)
	if with := recordFromMap(o.With); with != nil {
		step.Set("with", with)
	}
	setCommon(step, o.Env, o.ContinueOnError, o.TimeoutMinutes)

	return j.addStep(step, o.JSONOutputs)
}

func (j *Job) newStep(name string) *Record {
	step := NewRecord()
	if name != "" {
		step.Set("name", name)
	}
	if cond, ok := j.conditions.current(); ok {
		step.Set("if", cond)
	}
	return step
}

func setCommon(step *Record, env map[string]any, continueOnError, timeoutMinutes any) {
	if e := recordFromMap(env); e != nil {
		step.Set("env", e)
	}
	if continueOnError != nil {
		step.Set("continue-on-error", continueOnError)
	}
	if timeoutMinutes != nil {
		step.Set("timeout-minutes", timeoutMinutes)
	}
}

// addStep appends step and returns its context path. The id is reserved now
// and written into the step the first time the path is rendered.
func (j *Job) addStep(step *Record, jsonOutputs bool) expression.Path {
	id := fmt.Sprintf("step_%d", j.nextStepID)
	j.nextStepID++
	j.steps = append(j.steps, step)

	w := j.workflow
	job := j.id
	opts := []expression.PathOption{
		expression.WithAccessHook(func() {
			if step.Has("id") {
				return
			}
			step.Set("id", id)
			w.attachedIDs.Add(1)
			log.Trace(w.logger, "step id attached",
				log.String("job", job),
				log.String("step", id))
		}),
	}
	if jsonOutputs {
		opts = append(opts, expression.WithJSONDepth(stepJSONDepth))
	}
	return expression.Root("steps", opts...).Field(id)
}

func mergeRunOptions(opts []RunOptions) RunOptions {
	var out RunOptions
	for _, o := range opts {
		out.JSONOutputs = out.JSONOutputs || o.JSONOutputs
		if o.WorkingDirectory != "" {
			out.WorkingDirectory = o.WorkingDirectory
		}
		if o.Shell != "" {
			out.Shell = o.Shell
		}
		out.Env = mergeMaps(out.Env, o.Env)
		if o.ContinueOnError != nil {
			out.ContinueOnError = o.ContinueOnError
		}
		if o.TimeoutMinutes != nil {
			out.TimeoutMinutes = o.TimeoutMinutes
		}
	}
	return out
}

func mergeUseOptions(opts []UseOptions) UseOptions {
	var out UseOptions
	for _, o := range opts {
		out.JSONOutputs = out.JSONOutputs || o.JSONOutputs
		out.With = mergeMaps(out.With, o.With)
		out.Env = mergeMaps(out.Env, o.Env)
		if o.ContinueOnError != nil {
			out.ContinueOnError = o.ContinueOnError
		}
		if o.TimeoutMinutes != nil {
			out.TimeoutMinutes = o.TimeoutMinutes
		}
	}
	return out
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
