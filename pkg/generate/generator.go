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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tombee/flowgen/internal/jq"
	"github.com/tombee/flowgen/internal/log"
	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// ErrOutOfDate is returned by a check run when any generated file would
// change or be removed.
var ErrOutOfDate = errors.New("generated workflows are out of date")

// Action is what a run did, or in check mode would do, to a file.
type Action string

const (
	// ActionWritten means the file was created or replaced.
	ActionWritten Action = "written"
	// ActionUnchanged means the file already had the generated content.
	ActionUnchanged Action = "unchanged"
	// ActionOutOfDate means a check run found the file would change.
	ActionOutOfDate Action = "out-of-date"
	// ActionRemoved means a stale generated file was deleted.
	ActionRemoved Action = "removed"
	// ActionStale means a check run found a file cleanup would delete.
	ActionStale Action = "stale"
)

// WorkflowError reports a registered workflow that failed to build or lint.
type WorkflowError struct {
	Workflow string
	Err      error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow %s: %v", e.Workflow, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Options control a generator run.
type Options struct {
	// OutputDir receives the generated files.
	OutputDir string
	// Extension is appended to each file name (.yml or .yaml).
	Extension string
	// Command is printed in each banner.
	Command string
	// Indent is the YAML indentation width.
	Indent int
	// Lint checks every expression before anything is written.
	Lint bool
	// Check compares instead of writing.
	Check bool
	// Cleanup removes generated files no registered workflow produces.
	Cleanup bool
	// Only restricts the run to workflows whose names match one of these
	// glob patterns.
	Only []string
}

// FileResult describes one file touched by a run.
type FileResult struct {
	Workflow string `json:"workflow,omitempty"`
	Path     string `json:"path"`
	Action   Action `json:"action"`
}

// Result summarizes a run.
type Result struct {
	Files    []FileResult  `json:"files"`
	Duration time.Duration `json:"-"`
}

// OutOfDate returns the files a check run found to differ.
func (r *Result) OutOfDate() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Action == ActionOutOfDate || f.Action == ActionStale {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many files had the given action.
func (r *Result) Count(action Action) int {
	n := 0
	for _, f := range r.Files {
		if f.Action == action {
			n++
		}
	}
	return n
}

// Generator builds registered workflows and writes them to disk.
type Generator struct {
	registry *Registry
	logger   *slog.Logger
	jq       *jq.Executor
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithQueryExecutor replaces the jq executor used by Query.
func WithQueryExecutor(executor *jq.Executor) Option {
	return func(g *Generator) {
		if executor != nil {
			g.jq = executor
		}
	}
}

// New creates a generator over reg.
func New(reg *Registry, opts ...Option) *Generator {
	g := &Generator{
		registry: reg,
		logger:   log.Discard(),
		jq:       jq.NewExecutor(0, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = log.WithComponent(g.logger, "generate")
	return g
}

// Registry returns the registry the generator reads from.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Select returns the registered workflows matching patterns, or all of
// them when patterns is empty.
func (g *Generator) Select(patterns []string) ([]*Entry, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, &flowerrors.ValidationError{
				Field:   "only",
				Message: fmt.Sprintf("invalid pattern %q", p),
			}
		}
	}

	entries := g.registry.Entries()
	if len(patterns) == 0 {
		return entries, nil
	}

	var selected []*Entry
	for _, e := range entries {
		for _, p := range patterns {
			if doublestar.MatchUnvalidated(p, e.Name) {
				selected = append(selected, e)
				break
			}
		}
	}
	if len(selected) == 0 {
		return nil, &flowerrors.NotFoundError{Resource: "workflow", ID: strings.Join(patterns, ", ")}
	}
	return selected, nil
}

// Build builds a single registered workflow.
func (g *Generator) Build(name string) (*workflow.Document, error) {
	entry, ok := g.registry.Lookup(name)
	if !ok {
		return nil, &flowerrors.NotFoundError{Resource: "workflow", ID: name}
	}
	return g.build(entry)
}

// Query builds a registered workflow and runs a jq query against its JSON
// form. An empty query returns the whole document.
func (g *Generator) Query(ctx context.Context, name, query string) ([]any, error) {
	doc, err := g.Build(name)
	if err != nil {
		return nil, err
	}
	results, err := g.jq.Execute(ctx, query, doc)
	if err != nil {
		return nil, fmt.Errorf("querying workflow %s: %w", name, err)
	}
	return results, nil
}

// Lint checks the syntax of every expression in doc.
func Lint(doc *workflow.Document) error {
	return doc.Walk(func(at []string, e expression.Expression) error {
		source, err := e.Bare()
		if err != nil {
			return err
		}
		if err := expression.CheckSyntax(source); err != nil {
			return flowerrors.Wrapf(err, "at %s", strings.Join(at, "."))
		}
		return nil
	})
}

// Run builds the selected workflows and writes them, or in check mode
// compares them against what is on disk. Every workflow is built and
// linted before any file is touched, so a broken workflow leaves the output
// directory as it was. A check run that finds differences returns the
// result together with ErrOutOfDate.
func (g *Generator) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	opts = withDefaults(opts)

	selected, err := g.Select(opts.Only)
	if err != nil {
		return nil, err
	}

	type rendered struct {
		entry   *Entry
		path    string
		content []byte
	}
	files := make([]rendered, 0, len(selected))
	for _, entry := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := g.build(entry)
		if err != nil {
			return nil, err
		}
		if opts.Lint {
			if err := Lint(doc); err != nil {
				return nil, &WorkflowError{Workflow: entry.Name, Err: err}
			}
		}
		content, err := RenderIndent(doc, Header{Source: entry.Source, Command: opts.Command}, opts.Indent)
		if err != nil {
			return nil, &WorkflowError{Workflow: entry.Name, Err: err}
		}
		files = append(files, rendered{
			entry:   entry,
			path:    filepath.Join(opts.OutputDir, entry.FileName(opts.Extension)),
			content: content,
		})
	}

	result := &Result{}
	for _, f := range files {
		changed, err := WriteFile(f.path, f.content, opts.Check)
		if err != nil {
			return nil, err
		}
		action := ActionUnchanged
		switch {
		case changed && opts.Check:
			action = ActionOutOfDate
		case changed:
			action = ActionWritten
		}
		result.Files = append(result.Files, FileResult{Workflow: f.entry.Name, Path: f.path, Action: action})
		g.logger.Debug("workflow file",
			log.WorkflowKey, f.entry.Name,
			log.FileKey, f.path,
			log.ActionKey, string(action))
	}

	if opts.Cleanup {
		stale, err := g.staleFiles(opts)
		if err != nil {
			return nil, err
		}
		for _, path := range stale {
			action := ActionStale
			if !opts.Check {
				if err := os.Remove(path); err != nil {
					return nil, fmt.Errorf("removing %s: %w", path, err)
				}
				action = ActionRemoved
			}
			result.Files = append(result.Files, FileResult{Path: path, Action: action})
			g.logger.Debug("stale workflow file", log.FileKey, path, log.ActionKey, string(action))
		}
	}

	result.Duration = time.Since(start)
	g.logger.Info("generation finished",
		log.Int("workflows", len(files)),
		log.Int("written", result.Count(ActionWritten)),
		log.Int("removed", result.Count(ActionRemoved)),
		log.Bool("check", opts.Check),
		log.Duration("duration", result.Duration))

	if opts.Check && len(result.OutOfDate()) > 0 {
		return result, ErrOutOfDate
	}
	return result, nil
}

func (g *Generator) build(entry *Entry) (*workflow.Document, error) {
	logger := log.WithWorkflow(g.logger, entry.Name)
	doc, err := workflow.Build(entry.Build, workflow.WithLogger(logger))
	if err != nil {
		logger.Debug("workflow build failed", log.Error(err))
		return nil, &WorkflowError{Workflow: entry.Name, Err: err}
	}
	return doc, nil
}

// staleFiles lists generated files in the output directory that no
// registered workflow produces. Workflows excluded by Only still count as
// produced. Files without the banner are never stale.
func (g *Generator) staleFiles(opts Options) ([]string, error) {
	if _, err := os.Stat(opts.OutputDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	produced := make(map[string]bool)
	for _, e := range g.registry.Entries() {
		produced[e.FileName(opts.Extension)] = true
	}

	matches, err := doublestar.Glob(os.DirFS(opts.OutputDir), "*"+opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", opts.OutputDir, err)
	}

	var stale []string
	for _, name := range matches {
		if produced[name] {
			continue
		}
		path := filepath.Join(opts.OutputDir, name)
		generated, err := isGenerated(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if generated {
			stale = append(stale, path)
		}
	}
	return stale, nil
}

func withDefaults(opts Options) Options {
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(".github", "workflows")
	}
	if opts.Extension == "" {
		opts.Extension = ".yml"
	}
	if opts.Command == "" {
		opts.Command = "go run ./cmd/flowgen"
	}
	if opts.Indent == 0 {
		opts.Indent = DefaultIndent
	}
	return opts
}
