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

// Runtime namespaces available to workflow expressions.
var (
	// Github is information about the workflow run and the triggering event.
	Github = Root("github")
	// Env holds variables set in the workflow, job or step env.
	Env = Root("env")
	// Job is information about the currently running job.
	Job = Root("job")
	// Steps holds outputs of steps with an id in the current job.
	Steps = Root("steps")
	// Runner is information about the machine executing the job.
	Runner = Root("runner")
	// Needs holds results and outputs of the jobs the current job depends
	// on. Job outputs are JSON-encoded by the builder, so values at
	// needs.<job>.outputs.<name> are decoded with fromJSON.
	Needs = Root("needs", WithJSONDepth(4))
	// Secrets holds repository and organization secrets.
	Secrets = Root("secrets")
	// Strategy is the matrix execution strategy of the current job.
	Strategy = Root("strategy")
	// Matrix holds the axis values of the current matrix combination.
	Matrix = Root("matrix")
)
