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

package actions_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowgen/pkg/actions"
	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// stepsOf builds a single job with fn and returns its steps as JSON.
func stepsOf(t *testing.T, fn workflow.JobFunc) []string {
	t.Helper()
	doc, err := workflow.Build(func(w *workflow.Workflow) error {
		_, err := w.AddJob("job", fn)
		return err
	})
	require.NoError(t, err)

	job, ok := doc.Job("job")
	require.True(t, ok)
	v, _ := job.Get("steps")

	var out []string
	for _, step := range v.([]*workflow.Record) {
		b, err := json.Marshal(step)
		require.NoError(t, err)
		out = append(out, string(b))
	}
	return out
}

func TestStepBundles(t *testing.T) {
	tests := []struct {
		name  string
		steps workflow.Steps
		want  string
	}{
		{
			name:  "checkout defaults",
			steps: actions.Checkout(actions.CheckoutOptions{}),
			want:  `{"name":"Git Checkout","uses":"actions/checkout@v4"}`,
		},
		{
			name:  "checkout options",
			steps: actions.Checkout(actions.CheckoutOptions{FetchDepth: 0, Ref: expression.Github.Field("head_ref")}),
			want:  `{"name":"Git Checkout","uses":"actions/checkout@v4","with":{"fetch-depth":0,"ref":"${{ github.head_ref }}"}}`,
		},
		{
			name:  "setup node",
			steps: actions.SetupNode(actions.SetupNodeOptions{StepName: "Node", NodeVersion: "20.x"}),
			want:  `{"name":"Node","uses":"actions/setup-node@v4","with":{"node-version":"20.x"}}`,
		},
		{
			name:  "setup go",
			steps: actions.SetupGo(actions.SetupGoOptions{GoVersionFile: "go.mod", Cache: true}),
			want:  `{"name":"Setup Go","uses":"actions/setup-go@v5","with":{"cache":true,"go-version-file":"go.mod"}}`,
		},
		{
			name:  "download artifact",
			steps: actions.DownloadArtifact(actions.DownloadArtifactOptions{Name: "dist", Path: "out"}),
			want:  `{"name":"Download Artifact","uses":"actions/download-artifact@v4","with":{"name":"dist","path":"out"}}`,
		},
		{
			name:  "turnstyle",
			steps: actions.Turnstyle(actions.TurnstyleOptions{PollIntervalSeconds: 10, SameBranchOnly: true}),
			want:  `{"name":"Turnstyle","uses":"softprops/turnstyle@v2","with":{"poll-interval-seconds":10,"same-branch-only":true},"env":{"GITHUB_TOKEN":"${{ secrets.GITHUB_TOKEN }}"}}`,
		},
		{
			name: "asana comment",
			steps: actions.AsanaComment(actions.AsanaCommentOptions{
				AccessToken:     expression.Secrets.Field("ASANA_PAT"),
				TaskComment:     "Deployed",
				ContinueOnError: true,
			}),
			want: `{"name":"Comment on Asana Task","uses":"mavenoid/github-asana-action@4.0.0","with":{"asana-pat":"${{ secrets.ASANA_PAT }}","task-comment":"Deployed"},"continue-on-error":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stepsOf(t, func(j *workflow.Job) (workflow.Outputs, error) {
				return nil, j.Add(tt.steps)
			})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestCache(t *testing.T) {
	got := stepsOf(t, func(j *workflow.Job) (workflow.Outputs, error) {
		cache, err := workflow.AddSteps(j, actions.Cache(actions.CacheOptions{
			Paths: []any{"node_modules", "~/.npm"},
			Key:   expression.Interpolate(expression.Runner.Field("os"), "-", expression.HashFiles("package-lock.json")),
		}))
		if err != nil {
			return nil, err
		}
		return nil, j.When(cache.Miss, func() error {
			j.Run("npm ci")
			return nil
		})
	})

	require.Len(t, got, 2)
	assert.Equal(t,
		`{"name":"Enable Cache","uses":"actions/cache@v4","with":{"key":"${{ runner.os }}-${{ hashFiles('package-lock.json') }}","path":"node_modules\n~/.npm"},"id":"step_1"}`,
		got[0])
	assert.Equal(t,
		`{"if":"${{ steps.step_1.outputs.cache-hit != 'true' }}","run":"npm ci"}`,
		got[1])
}

func TestCache_RequiresKeyAndPaths(t *testing.T) {
	tests := []struct {
		name  string
		opts  actions.CacheOptions
		field string
	}{
		{name: "no key", opts: actions.CacheOptions{Paths: []any{"x"}}, field: "key"},
		{name: "no paths", opts: actions.CacheOptions{Key: "k"}, field: "paths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := workflow.Build(func(w *workflow.Workflow) error {
				_, err := w.AddJob("job", func(j *workflow.Job) (workflow.Outputs, error) {
					_, err := workflow.AddSteps(j, actions.Cache(tt.opts))
					return nil, err
				})
				return err
			})
			var verr *flowerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUploadArtifact(t *testing.T) {
	var name any
	got := stepsOf(t, func(j *workflow.Job) (workflow.Outputs, error) {
		var err error
		name, err = workflow.AddSteps(j, actions.UploadArtifact(actions.UploadArtifactOptions{
			Name:          "coverage",
			Paths:         []any{"coverage.out"},
			RetentionDays: 7,
		}))
		return nil, err
	})

	assert.Equal(t, "coverage", name)
	assert.Equal(t,
		`{"name":"Upload Artifact","uses":"actions/upload-artifact@v4","with":{"name":"coverage","path":"coverage.out","retention-days":7}}`,
		got[0])
}

func TestSlackNotify(t *testing.T) {
	got := stepsOf(t, func(j *workflow.Job) (workflow.Outputs, error) {
		id, err := workflow.AddSteps(j, actions.SlackNotify(actions.SlackNotifyOptions{
			SlackBotToken: expression.Secrets.Field("SLACK_BOT_TOKEN"),
			Channel:       "C123",
			Status:        "STARTED",
			Color:         "gray",
		}))
		if err != nil {
			return nil, err
		}
		return workflow.Outputs{"message": id}, nil
	})

	assert.Equal(t,
		`{"name":"Post to Slack","uses":"voxmedia/github-action-slack-notify-build@v1","with":{"channel_id":"C123","color":"#cccccc","status":"STARTED"},"env":{"SLACK_BOT_TOKEN":"${{ secrets.SLACK_BOT_TOKEN }}"},"id":"step_1"}`,
		got[0])
}
