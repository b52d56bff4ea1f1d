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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/internal/config"
	"github.com/tombee/flowgen/pkg/generate"
	"github.com/tombee/flowgen/pkg/workflow"
)

func helloWorkflow(w *workflow.Workflow) error {
	if err := w.SetName("Hello"); err != nil {
		return err
	}
	if _, err := w.AddTrigger(workflow.TriggerPush, workflow.PushTrigger{Branches: []string{"main"}}); err != nil {
		return err
	}
	_, err := w.AddJob("hello", func(j *workflow.Job) (workflow.Outputs, error) {
		j.Run("echo hello")
		return nil, nil
	})
	return err
}

func brokenWorkflow(w *workflow.Workflow) error {
	if err := w.SetName("one"); err != nil {
		return err
	}
	return w.SetName("two")
}

// setup isolates a command test in an empty working directory with no
// configuration or global flags carried over.
func setup(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"FLOWGEN_OUTPUT_DIR", "FLOWGEN_EXTENSION", "FLOWGEN_COMMAND", "FLOWGEN_LINT", "FLOWGEN_INDENT", "LOG_LEVEL", "FLOWGEN_DEBUG", "FLOWGEN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)
	return dir
}

func newRegistry(t *testing.T, workflows map[string]workflow.BuildFunc) *generate.Registry {
	t.Helper()
	reg := generate.NewRegistry()
	for name, fn := range workflows {
		if err := reg.RegisterSource(name, "workflows/"+name+".go", fn); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	return reg
}

func TestGenerateCommand_Writes(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow, "deploy/prod": helloWorkflow})

	cmd := NewCommand(reg)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"hello.yml", "deploy_prod.yml"} {
		if _, err := os.Stat(filepath.Join(dir, ".github", "workflows", name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	out := stdout.String()
	if !strings.Contains(out, "written "+filepath.Join(".github", "workflows", "hello.yml")) {
		t.Errorf("expected written line in output, got %q", out)
	}
	if !strings.Contains(out, "2 workflows: 2 written, 0 unchanged, 0 removed") {
		t.Errorf("expected summary in output, got %q", out)
	}
}

func TestGenerateCommand_OutputFlag(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})

	cmd := NewCommand(reg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-o", "build"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "build", "hello.yml")); err != nil {
		t.Errorf("expected file in --output directory: %v", err)
	}
}

func TestGenerateCommand_ConfigFile(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})

	cfg := "output_dir: ci\nextension: .yaml\ncommand: make workflows\n"
	if err := os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := NewCommand(reg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "ci", "hello.yaml"))
	if err != nil {
		t.Fatalf("expected file from config output_dir: %v", err)
	}
	if !strings.Contains(string(content), "#   make workflows\n") {
		t.Errorf("expected configured command in banner, got:\n%s", content)
	}
}

func TestGenerateCommand_Only(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow, "deploy/prod": helloWorkflow})

	cmd := NewCommand(reg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--only", "deploy/*"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".github", "workflows"))
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "deploy_prod.yml" {
		t.Errorf("expected only deploy_prod.yml, got %v", entries)
	}
}

func TestCheckCommand(t *testing.T) {
	setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})

	check := NewCheckCommand(reg)
	var stderr bytes.Buffer
	check.SetOut(&bytes.Buffer{})
	check.SetErr(&stderr)
	check.SetArgs([]string{})

	err := check.Execute()
	if shared.ExitCode(err) != shared.ExitFailed {
		t.Fatalf("expected exit code %d before generating, got %d (%v)", shared.ExitFailed, shared.ExitCode(err), err)
	}
	if !strings.Contains(stderr.String(), "CREATE: "+filepath.Join(".github", "workflows", "hello.yml")) {
		t.Errorf("expected report of missing file, got %q", stderr.String())
	}
	if _, statErr := os.Stat(filepath.Join(".github", "workflows", "hello.yml")); statErr == nil {
		t.Error("check must not write files")
	}

	gen := NewCommand(reg)
	gen.SetOut(&bytes.Buffer{})
	gen.SetErr(&bytes.Buffer{})
	gen.SetArgs([]string{})
	if err := gen.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	check = NewCheckCommand(reg)
	var stdout bytes.Buffer
	check.SetOut(&stdout)
	check.SetErr(&bytes.Buffer{})
	check.SetArgs([]string{})
	if err := check.Execute(); err != nil {
		t.Fatalf("expected check to pass after generate, got %v", err)
	}
	if !strings.Contains(stdout.String(), "1 workflows up to date") {
		t.Errorf("unexpected check output: %q", stdout.String())
	}
}

func TestCheckCommand_Modified(t *testing.T) {
	setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})

	gen := NewCommand(reg)
	gen.SetOut(&bytes.Buffer{})
	gen.SetErr(&bytes.Buffer{})
	gen.SetArgs([]string{})
	if err := gen.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	path := filepath.Join(".github", "workflows", "hello.yml")
	if err := os.WriteFile(path, []byte("edited by hand\n"), 0644); err != nil {
		t.Fatalf("failed to modify file: %v", err)
	}

	cmd := NewCommand(reg)
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--check"})

	err := cmd.Execute()
	if shared.ExitCode(err) != shared.ExitFailed {
		t.Fatalf("expected exit code %d, got %d (%v)", shared.ExitFailed, shared.ExitCode(err), err)
	}
	if !strings.Contains(stderr.String(), "MODIFY: "+path+" (workflow hello)") {
		t.Errorf("expected modify report, got %q", stderr.String())
	}
}

func TestGenerateCommand_Cleanup(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow, "old": helloWorkflow})

	gen := NewCommand(reg)
	gen.SetOut(&bytes.Buffer{})
	gen.SetErr(&bytes.Buffer{})
	gen.SetArgs([]string{})
	if err := gen.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	reg = newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})
	old := filepath.Join(dir, ".github", "workflows", "old.yml")

	check := NewCheckCommand(reg)
	var stderr bytes.Buffer
	check.SetOut(&bytes.Buffer{})
	check.SetErr(&stderr)
	check.SetArgs([]string{"--cleanup"})
	if err := check.Execute(); shared.ExitCode(err) != shared.ExitFailed {
		t.Fatalf("expected stale file to fail check, got %v", err)
	}
	if !strings.Contains(stderr.String(), "DELETE: ") {
		t.Errorf("expected delete report, got %q", stderr.String())
	}

	gen = NewCommand(reg)
	gen.SetOut(&bytes.Buffer{})
	gen.SetErr(&bytes.Buffer{})
	gen.SetArgs([]string{"-C"})
	if err := gen.Execute(); err != nil {
		t.Fatalf("generate --cleanup failed: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err = %v", old, err)
	}
}

func TestGenerateCommand_InvalidWorkflow(t *testing.T) {
	dir := setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow, "broken": brokenWorkflow})

	cmd := NewCommand(reg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if shared.ExitCode(err) != shared.ExitInvalidWorkflow {
		t.Fatalf("expected exit code %d, got %d (%v)", shared.ExitInvalidWorkflow, shared.ExitCode(err), err)
	}
	if !strings.Contains(err.Error(), "workflow broken") {
		t.Errorf("expected error to name the workflow, got %q", err.Error())
	}
	if _, statErr := os.Stat(filepath.Join(dir, ".github", "workflows")); statErr == nil {
		t.Error("no files should be written when a workflow fails to build")
	}
}

func TestGenerateCommand_JSON(t *testing.T) {
	setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"hello": helloWorkflow})

	_, _, jsonFlag, _ := shared.RegisterFlagPointers()
	*jsonFlag = true

	cmd := NewCommand(reg)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if resp.Command != "generate" || !resp.Success {
		t.Errorf("unexpected envelope: %+v", resp.JSONResponse)
	}
	if len(resp.Files) != 1 || resp.Files[0].Workflow != "hello" || resp.Files[0].Action != generate.ActionWritten {
		t.Errorf("unexpected files: %+v", resp.Files)
	}
}

func TestGenerateCommand_JSONError(t *testing.T) {
	setup(t)
	reg := newRegistry(t, map[string]workflow.BuildFunc{"broken": brokenWorkflow})

	_, _, jsonFlag, _ := shared.RegisterFlagPointers()
	*jsonFlag = true

	cmd := NewCommand(reg)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if shared.ExitCode(err) != shared.ExitInvalidWorkflow {
		t.Fatalf("expected exit code %d, got %d", shared.ExitInvalidWorkflow, shared.ExitCode(err))
	}

	var resp struct {
		shared.JSONResponse
		Errors []shared.JSONError `json:"errors"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if resp.Success || len(resp.Errors) != 1 {
		t.Fatalf("unexpected error response: %+v", resp)
	}
	if resp.Errors[0].Workflow != "broken" {
		t.Errorf("expected workflow in error, got %+v", resp.Errors[0])
	}
}

func TestGeneratorOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Cleanup = true
	cfg.Only = []string{"a"}

	got := generatorOptions(cfg, options{output: "out", noLint: true})
	if got.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want out", got.OutputDir)
	}
	if got.Lint {
		t.Error("--no-lint should disable lint")
	}
	if !got.Cleanup {
		t.Error("cleanup from config should be kept")
	}
	if len(got.Only) != 1 || got.Only[0] != "a" {
		t.Errorf("Only = %v, want config value", got.Only)
	}

	got = generatorOptions(cfg, options{only: []string{"b", "c"}})
	if len(got.Only) != 2 || got.Only[0] != "b" {
		t.Errorf("Only = %v, want flag value", got.Only)
	}
	if !got.Lint {
		t.Error("lint should default to enabled")
	}
}
