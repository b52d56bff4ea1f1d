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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

func testWorkflow(w *workflow.Workflow) error {
	if err := w.SetName("Test"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerPush, workflow.PushTrigger{Branches: []string{"main"}}); err != nil {
		return err
	}
	_, err := w.AddJob("build", func(j *workflow.Job) (workflow.Outputs, error) {
		j.Use("actions/checkout@v4")
		j.Run("go test ./...")
		return nil, nil
	})
	return err
}

func cronWorkflow(w *workflow.Workflow) error {
	if err := w.SetName("CRON"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerSchedule, workflow.ScheduleTrigger{{Cron: "0 18 * * *"}}); err != nil {
		return err
	}
	_, err := w.AddJob("cron", func(j *workflow.Job) (workflow.Outputs, error) {
		j.Run(`echo "hello world"`)
		return nil, nil
	})
	return err
}

func buildDoc(t *testing.T, fn workflow.BuildFunc) *workflow.Document {
	t.Helper()
	doc, err := workflow.Build(fn)
	require.NoError(t, err)
	return doc
}

func newTestGenerator(t *testing.T, workflows map[string]workflow.BuildFunc) *Generator {
	t.Helper()
	reg := NewRegistry()
	for name, fn := range workflows {
		require.NoError(t, reg.RegisterSource(name, "workflows/"+name+".go", fn))
	}
	return New(reg)
}

func defaultWorkflows() map[string]workflow.BuildFunc {
	return map[string]workflow.BuildFunc{
		"test":        testWorkflow,
		"cron":        cronWorkflow,
		"deploy/prod": cronWorkflow,
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerator_Run(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workflows")
	g := newTestGenerator(t, defaultWorkflows())

	result, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count(ActionWritten))
	assert.Equal(t, []string{"cron.yml", "deploy_prod.yml", "test.yml"}, listDir(t, dir))

	content, err := os.ReadFile(filepath.Join(dir, "cron.yml"))
	require.NoError(t, err)
	assert.Equal(t, `# !!! This file is auto-generated, do not edit by hand !!!
# To make changes, edit workflows/cron.go and then run:
#
#   go run ./cmd/flowgen

name: CRON
on:
  schedule:
    - cron: 0 18 * * *
jobs:
  cron:
    runs-on: ubuntu-latest
    steps:
      - run: echo "hello world"
`, string(content))
}

func TestGenerator_Idempotent(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(t, defaultWorkflows())

	_, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, "test.yml"))
	require.NoError(t, err)

	result, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count(ActionUnchanged))
	assert.Equal(t, 0, result.Count(ActionWritten))

	after, err := os.ReadFile(filepath.Join(dir, "test.yml"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestGenerator_Check(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(t, defaultWorkflows())

	result, err := g.Run(context.Background(), Options{OutputDir: dir, Check: true})
	require.ErrorIs(t, err, ErrOutOfDate)
	require.NotNil(t, result)
	assert.Len(t, result.OutOfDate(), 3)
	assert.Empty(t, listDir(t, dir), "check mode writes nothing")

	_, err = g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)

	_, err = g.Run(context.Background(), Options{OutputDir: dir, Check: true})
	require.NoError(t, err)

	// A hand edit makes the check fail again.
	path := filepath.Join(dir, "test.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: edited\n"), 0o644))
	result, err = g.Run(context.Background(), Options{OutputDir: dir, Check: true})
	require.ErrorIs(t, err, ErrOutOfDate)
	require.Len(t, result.OutOfDate(), 1)
	assert.Equal(t, path, result.OutOfDate()[0].Path)
	assert.Equal(t, "test", result.OutOfDate()[0].Workflow)
}

func TestGenerator_Cleanup(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(t, map[string]workflow.BuildFunc{"test": testWorkflow})

	stale := filepath.Join(dir, "old.yml")
	require.NoError(t, os.WriteFile(stale, []byte(bannerFirstLine+"\nname: old\n"), 0o644))
	manual := filepath.Join(dir, "manual.yml")
	require.NoError(t, os.WriteFile(manual, []byte("name: manual\n"), 0o644))
	other := filepath.Join(dir, "old.yaml")
	require.NoError(t, os.WriteFile(other, []byte(bannerFirstLine+"\n"), 0o644))

	_, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)

	// Check mode reports the stale file without deleting it.
	result, err := g.Run(context.Background(), Options{OutputDir: dir, Cleanup: true, Check: true})
	require.ErrorIs(t, err, ErrOutOfDate)
	require.Len(t, result.OutOfDate(), 1)
	assert.Equal(t, FileResult{Path: stale, Action: ActionStale}, result.OutOfDate()[0])
	assert.FileExists(t, stale)

	result, err = g.Run(context.Background(), Options{OutputDir: dir, Cleanup: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count(ActionRemoved))
	assert.NoFileExists(t, stale)
	assert.FileExists(t, manual, "files without the banner are never removed")
	assert.FileExists(t, other, "only files with the configured extension are considered")

	_, err = g.Run(context.Background(), Options{OutputDir: dir, Cleanup: true, Check: true})
	require.NoError(t, err)
}

func TestGenerator_CleanupKeepsUnselected(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(t, defaultWorkflows())

	_, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.NoError(t, err)

	result, err := g.Run(context.Background(), Options{OutputDir: dir, Cleanup: true, Only: []string{"test"}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count(ActionRemoved))
	assert.Len(t, listDir(t, dir), 3)
}

func TestGenerator_CleanupMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	g := newTestGenerator(t, map[string]workflow.BuildFunc{"test": testWorkflow})

	result, err := g.Run(context.Background(), Options{OutputDir: dir, Cleanup: true, Check: true})
	require.ErrorIs(t, err, ErrOutOfDate)
	assert.Len(t, result.OutOfDate(), 1)
}

func TestGenerator_Only(t *testing.T) {
	g := newTestGenerator(t, defaultWorkflows())

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "all", patterns: nil, want: []string{"cron", "deploy/prod", "test"}},
		{name: "exact", patterns: []string{"test"}, want: []string{"test"}},
		{name: "wildcard", patterns: []string{"deploy/*"}, want: []string{"deploy/prod"}},
		{name: "double star", patterns: []string{"**"}, want: []string{"cron", "deploy/prod", "test"}},
		{name: "several", patterns: []string{"cron", "te*"}, want: []string{"cron", "test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := g.Select(tt.patterns)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGenerator_OnlyErrors(t *testing.T) {
	g := newTestGenerator(t, defaultWorkflows())

	_, err := g.Run(context.Background(), Options{OutputDir: t.TempDir(), Only: []string{"[unclosed"}})
	var verr *flowerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "only", verr.Field)

	_, err = g.Run(context.Background(), Options{OutputDir: t.TempDir(), Only: []string{"nothing*"}})
	var nf *flowerrors.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGenerator_BuildErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	workflows := defaultWorkflows()
	workflows["zz-broken"] = func(w *workflow.Workflow) error { return boom }
	g := newTestGenerator(t, workflows)

	_, err := g.Run(context.Background(), Options{OutputDir: dir})
	require.ErrorIs(t, err, boom)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "zz-broken", werr.Workflow)
	assert.Empty(t, listDir(t, dir), "no file is written when any workflow fails")
}

func TestGenerator_Lint(t *testing.T) {
	broken := func(w *workflow.Workflow) error {
		_, err := w.AddJob("job", func(j *workflow.Job) (workflow.Outputs, error) {
			j.Run("echo", workflow.RunOptions{Env: map[string]any{
				"BAD": expression.Root("github.ref ==").Field("x"),
			}})
			return nil, nil
		})
		return err
	}
	g := newTestGenerator(t, map[string]workflow.BuildFunc{"broken": broken})

	_, err := g.Run(context.Background(), Options{OutputDir: t.TempDir(), Lint: true})
	var verr *flowerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "expression", verr.Field)
	assert.Contains(t, err.Error(), "jobs.job.steps.0.env.BAD")

	_, err = g.Run(context.Background(), Options{OutputDir: t.TempDir(), Lint: false})
	require.NoError(t, err)
}

func TestGenerator_LintAcceptsValidWorkflows(t *testing.T) {
	for name, fn := range defaultWorkflows() {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Lint(buildDoc(t, fn)))
		})
	}
}

func TestGenerator_Canceled(t *testing.T) {
	g := newTestGenerator(t, defaultWorkflows())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx, Options{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_Build(t *testing.T) {
	g := newTestGenerator(t, defaultWorkflows())

	doc, err := g.Build("test")
	require.NoError(t, err)
	assert.Equal(t, "Test", doc.Name())
	assert.Equal(t, []string{"build"}, doc.JobIDs())

	_, err = g.Build("missing")
	var nf *flowerrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestGenerator_Query(t *testing.T) {
	g := newTestGenerator(t, defaultWorkflows())

	tests := []struct {
		query string
		want  []any
	}{
		{query: ".name", want: []any{"Test"}},
		{query: ".jobs | keys", want: []any{[]any{"build"}}},
		{query: ".on.push.branches[]", want: []any{"main"}},
		{query: ".jobs.build.steps[].run // empty", want: []any{"go test ./..."}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := g.Query(context.Background(), "test", tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	whole, err := g.Query(context.Background(), "test", "")
	require.NoError(t, err)
	require.Len(t, whole, 1)
	assert.Contains(t, whole[0], "jobs")

	_, err = g.Query(context.Background(), "test", ".[")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "querying workflow test"))
}
