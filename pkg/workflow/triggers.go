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

// Trigger names an event that starts a workflow run.
type Trigger string

const (
	TriggerPush               Trigger = "push"
	TriggerPullRequest        Trigger = "pull_request"
	TriggerPullRequestTarget  Trigger = "pull_request_target"
	TriggerSchedule           Trigger = "schedule"
	TriggerWorkflowDispatch   Trigger = "workflow_dispatch"
	TriggerWorkflowCall       Trigger = "workflow_call"
	TriggerWorkflowRun        Trigger = "workflow_run"
	TriggerRepositoryDispatch Trigger = "repository_dispatch"
	TriggerRelease            Trigger = "release"
	TriggerCreate             Trigger = "create"
	TriggerDelete             Trigger = "delete"
	TriggerIssues             Trigger = "issues"
	TriggerIssueComment       Trigger = "issue_comment"
	TriggerMergeGroup         Trigger = "merge_group"
)

// PushTrigger filters push events.
type PushTrigger struct {
	Branches       []string `yaml:"branches,omitempty" json:"branches,omitempty"`
	BranchesIgnore []string `yaml:"branches-ignore,omitempty" json:"branches-ignore,omitempty"`
	Tags           []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	TagsIgnore     []string `yaml:"tags-ignore,omitempty" json:"tags-ignore,omitempty"`
	Paths          []string `yaml:"paths,omitempty" json:"paths,omitempty"`
	PathsIgnore    []string `yaml:"paths-ignore,omitempty" json:"paths-ignore,omitempty"`
}

// PullRequestTrigger filters pull_request and pull_request_target events.
type PullRequestTrigger struct {
	Types          []string `yaml:"types,omitempty" json:"types,omitempty"`
	Branches       []string `yaml:"branches,omitempty" json:"branches,omitempty"`
	BranchesIgnore []string `yaml:"branches-ignore,omitempty" json:"branches-ignore,omitempty"`
	Paths          []string `yaml:"paths,omitempty" json:"paths,omitempty"`
	PathsIgnore    []string `yaml:"paths-ignore,omitempty" json:"paths-ignore,omitempty"`
}

// Cron is one entry of a schedule trigger.
type Cron struct {
	Cron string `yaml:"cron" json:"cron"`
}

// ScheduleTrigger runs a workflow on one or more cron schedules.
type ScheduleTrigger []Cron

// RepositoryDispatchTrigger filters repository_dispatch events by type.
type RepositoryDispatchTrigger struct {
	Types []string `yaml:"types,omitempty" json:"types,omitempty"`
}

// ReleaseTrigger filters release events by activity type.
type ReleaseTrigger struct {
	Types []string `yaml:"types,omitempty" json:"types,omitempty"`
}

// WorkflowRunTrigger runs after other workflows.
type WorkflowRunTrigger struct {
	Workflows []string `yaml:"workflows" json:"workflows"`
	Types     []string `yaml:"types,omitempty" json:"types,omitempty"`
	Branches  []string `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// WorkflowDispatchTrigger allows manual runs with optional inputs.
type WorkflowDispatchTrigger struct {
	Inputs map[string]WorkflowInput `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// WorkflowInput describes one input of a manually dispatched workflow.
type WorkflowInput struct {
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Default     any      `yaml:"default,omitempty" json:"default,omitempty"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}
