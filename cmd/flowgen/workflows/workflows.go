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

// Package workflows defines this repository's own GitHub Actions workflows.
package workflows

import (
	"strings"

	"github.com/tombee/flowgen/pkg/actions"
	"github.com/tombee/flowgen/pkg/generate"
	"github.com/tombee/flowgen/pkg/workflow"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// GoVersions is the test matrix.
var GoVersions = []any{"1.24.x", "1.25.x"}

// ReleaseEvent is the repository_dispatch type that starts a release.
const ReleaseEvent = "release_approved"

// Registry returns a registry holding every workflow in this package.
func Registry() *generate.Registry {
	reg := generate.NewRegistry()
	reg.MustRegister("test", Test)
	reg.MustRegister("release", Release)
	reg.MustRegister("cron", Cron)
	return reg
}

// Test runs the test suite on pushes and pull requests to main.
func Test(w *workflow.Workflow) error {
	if err := w.SetName("Test"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerPush, workflow.PushTrigger{Branches: []string{"main"}}); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerPullRequest, workflow.PullRequestTrigger{Branches: []string{"main"}}); err != nil {
		return err
	}
	_, err := w.AddJob("test", TestJob)
	return err
}

// TestJob builds and tests the module on every supported Go version, then
// checks that the generated workflow files are current.
func TestJob(j *workflow.Job) (workflow.Outputs, error) {
	matrix, err := j.SetBuildMatrix(workflow.Matrix{"go-version": GoVersions})
	if err != nil {
		return nil, err
	}
	goVersion := matrix.Field("go-version")

	if err := j.Add(actions.Checkout(actions.CheckoutOptions{})); err != nil {
		return nil, err
	}
	if err := j.Add(actions.SetupGo(actions.SetupGoOptions{GoVersion: goVersion, Cache: false})); err != nil {
		return nil, err
	}
	if err := downloadModules(j, goVersion); err != nil {
		return nil, err
	}

	j.Run("go build ./...")
	j.Run("go test -race ./...")
	j.RunNamed("Check generated workflows", "go run ./cmd/flowgen check --cleanup")

	for _, ctx := range []expression.Path{expression.Job, expression.Steps, expression.Runner, expression.Strategy, expression.Matrix} {
		dumpContext(j, ctx)
	}
	return nil, nil
}

// Release tests and publishes a release when a release is approved.
func Release(w *workflow.Workflow) error {
	if err := w.SetName("Release"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerRepositoryDispatch, workflow.RepositoryDispatchTrigger{
		Types: []string{ReleaseEvent},
	}); err != nil {
		return err
	}

	test, err := w.AddJob("test", TestJob)
	if err != nil {
		return err
	}

	_, err = w.AddJob("publish", func(j *workflow.Job) (workflow.Outputs, error) {
		j.AddDependencies(test)
		if err := j.Add(actions.Checkout(actions.CheckoutOptions{FetchDepth: 0})); err != nil {
			return nil, err
		}
		if err := j.Add(actions.SetupGo(actions.SetupGoOptions{GoVersionFile: "go.mod"})); err != nil {
			return nil, err
		}
		if err := downloadModules(j, "stable"); err != nil {
			return nil, err
		}
		j.UseNamed("Publish", "goreleaser/goreleaser-action@v6", workflow.UseOptions{
			With: map[string]any{
				"version": "~> v2",
				"args":    "release --clean",
			},
			Env: map[string]any{
				"GITHUB_TOKEN": expression.Secrets.Field("GITHUB_TOKEN"),
			},
		})
		return nil, nil
	})
	return err
}

// Cron runs a scheduled smoke job every day at 18:00 UTC.
func Cron(w *workflow.Workflow) error {
	if err := w.SetName("CRON"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerSchedule, workflow.ScheduleTrigger{{Cron: "0 18 * * *"}}); err != nil {
		return err
	}
	_, err := w.AddJob("cron", func(j *workflow.Job) (workflow.Outputs, error) {
		j.Run(expression.Interpolate(`echo "hello world"`))
		return nil, nil
	})
	return err
}

// downloadModules restores the module cache and downloads modules when the
// cache missed.
func downloadModules(j *workflow.Job, goVersion any) error {
	cache, err := workflow.AddSteps(j, actions.Cache(actions.CacheOptions{
		Paths: []any{"~/go/pkg/mod"},
		Key: expression.Interpolate(
			expression.Runner.Field("os"), "-go-", goVersion, "-",
			expression.HashFiles("go.sum"),
		),
	}))
	if err != nil {
		return err
	}
	return j.When(cache.Miss, func() error {
		j.Run("go mod download")
		return nil
	})
}

func dumpContext(j *workflow.Job, ctx expression.Path) {
	name := strings.ToUpper(ctx.Segments()[0]) + "_CONTEXT"
	j.RunNamed("Dump "+ctx.Segments()[0]+" context", "echo \"$"+name+"\"", workflow.RunOptions{
		Env: map[string]any{name: expression.ToJSON(ctx)},
	})
}
