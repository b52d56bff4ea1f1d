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

/*
Package workflow builds CI workflow documents from Go code.

A workflow is described by a BuildFunc. Inside it, jobs are added with
AddJob, and each job adds steps with Run and Use:

	doc, err := workflow.Build(func(w *workflow.Workflow) error {
		if err := w.SetName("Test"); err != nil {
			return err
		}
		if _, err := w.AddTrigger(workflow.TriggerPush, workflow.PushTrigger{Branches: []string{"main"}}); err != nil {
			return err
		}
		_, err := w.AddJob("test", func(j *workflow.Job) (workflow.Outputs, error) {
			j.Use("actions/checkout@v4")
			j.Run("go test ./...")
			return nil, nil
		})
		return err
	})

# Step references

Run and Use return the step's context as an expression.Path. Reading an
output, for example step.Get("outputs", "version"), gives the step an id
(step_1, step_2, ...) the first time the path is rendered. Steps that are
never referenced stay anonymous.

# Conditions

When and WhenTrigger scope a condition over the jobs (at workflow level) or
steps (at job level) added inside the callback. Nested blocks are combined
with a logical AND.

# Serialization

Build returns a Document whose keys follow a fixed order, so equivalent
builds serialize identically. Documents implement yaml.Marshaler and
json.Marshaler.

Only one Build may run at a time in a process.
*/
package workflow
