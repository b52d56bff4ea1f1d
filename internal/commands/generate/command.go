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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/internal/config"
	"github.com/tombee/flowgen/pkg/generate"
)

type options struct {
	check   bool
	cleanup bool
	noLint  bool
	output  string
	only    []string
}

// Response is the JSON output of generate and check
type Response struct {
	shared.JSONResponse
	Check     bool                  `json:"check"`
	OutOfDate int                   `json:"out_of_date"`
	Files     []generate.FileResult `json:"files"`
}

// NewCommand creates the generate command
func NewCommand(reg *generate.Registry) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the registered workflows to YAML files",
		Annotations: map[string]string{
			"group": "generation",
		},
		Long: `Generate builds every registered workflow and writes it to the output
directory (default: .github/workflows). Files whose content is unchanged
are left alone, so running generate twice is a no-op.

Use --check in CI to fail when the committed files are out of date, and
--cleanup to remove generated files whose workflow is no longer registered.

See also: flowgen check, flowgen list, flowgen show`,
		Example: `  # Example 1: Regenerate all workflows
  flowgen generate

  # Example 2: Fail if any generated file is out of date
  flowgen generate --check --cleanup

  # Example 3: Regenerate only the deploy workflows into another directory
  flowgen generate --only 'deploy/*' -o build/workflows`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, reg, opts)
		},
	}

	addFlags(cmd, &opts, true)
	return cmd
}

// NewCheckCommand creates the check command, a shorthand for generate --check
func NewCheckCommand(reg *generate.Registry) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail if any generated workflow is out of date",
		Annotations: map[string]string{
			"group": "generation",
		},
		Long: `Check builds every registered workflow and compares it with the file on
disk without writing anything. It exits with status 1 when any file would
change, and with --cleanup also when a stale generated file would be removed.`,
		Example: `  # Example 1: Verify generated files in CI
  flowgen check --cleanup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.check = true
			return run(cmd, reg, opts)
		},
	}

	addFlags(cmd, &opts, false)
	return cmd
}

func addFlags(cmd *cobra.Command, opts *options, withCheck bool) {
	if withCheck {
		cmd.Flags().BoolVarP(&opts.check, "check", "c", false, "Compare with files on disk instead of writing")
	}
	cmd.Flags().BoolVarP(&opts.cleanup, "cleanup", "C", false, "Remove generated files whose workflow is no longer registered")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: .github/workflows)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Only process workflows matching these glob patterns")
	cmd.Flags().BoolVar(&opts.noLint, "no-lint", false, "Skip expression syntax checks")
}

// generatorOptions merges command flags over the loaded configuration
func generatorOptions(cfg *config.Config, opts options) generate.Options {
	out := generate.Options{
		OutputDir: cfg.OutputDir,
		Extension: cfg.Extension,
		Command:   cfg.Command,
		Indent:    cfg.Indent,
		Lint:      cfg.LintEnabled() && !opts.noLint,
		Check:     opts.check,
		Cleanup:   cfg.Cleanup || opts.cleanup,
		Only:      cfg.Only,
	}
	if opts.output != "" {
		out.OutputDir = opts.output
	}
	if len(opts.only) > 0 {
		out.Only = opts.only
	}
	return out
}

func run(cmd *cobra.Command, reg *generate.Registry, opts options) error {
	command := "generate"
	if opts.check {
		command = "check"
	}
	useJSON := shared.GetJSON()

	cfg, err := shared.LoadConfig()
	if err != nil {
		return fail(cmd, command, useJSON, err)
	}
	genOpts := generatorOptions(cfg, opts)

	g := generate.New(reg, generate.WithLogger(shared.NewLogger(cfg, cmd.ErrOrStderr())))
	result, err := g.Run(cmd.Context(), genOpts)
	outOfDate := errors.Is(err, generate.ErrOutOfDate)
	if err != nil && !outOfDate {
		return fail(cmd, command, useJSON, shared.ClassifyError("generation failed", err))
	}

	if useJSON {
		resp := Response{
			JSONResponse: shared.NewJSONResponse(command, !outOfDate),
			Check:        genOpts.Check,
			OutOfDate:    len(result.OutOfDate()),
			Files:        result.Files,
		}
		if resp.Files == nil {
			resp.Files = []generate.FileResult{}
		}
		if err := shared.EmitJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if outOfDate {
			return &shared.ExitError{Code: shared.ExitFailed}
		}
		return nil
	}

	if outOfDate {
		report := shared.NewDryRunOutput(genOpts.Command)
		for _, f := range result.OutOfDate() {
			switch {
			case f.Action == generate.ActionStale:
				report.DryRunDelete(f.Path)
			case fileMissing(f.Path):
				report.DryRunCreate(f.Path)
			default:
				report.DryRunModify(f.Path, "workflow "+f.Workflow)
			}
		}
		fmt.Fprintln(cmd.ErrOrStderr(), report.String())
		return shared.NewFailedError("generated workflows are out of date", nil)
	}

	printResult(cmd.OutOrStdout(), result, genOpts.Check)
	return nil
}

func printResult(w io.Writer, result *generate.Result, check bool) {
	if shared.GetQuiet() {
		return
	}

	styled := shared.IsTTY(w)
	for _, f := range result.Files {
		if f.Action == generate.ActionUnchanged && !shared.GetVerbose() {
			continue
		}
		if styled {
			fmt.Fprintln(w, shared.RenderAction(f.Action, f.Path))
		} else {
			fmt.Fprintf(w, "%s %s\n", f.Action, f.Path)
		}
	}

	workflows := result.Count(generate.ActionWritten) + result.Count(generate.ActionUnchanged) +
		result.Count(generate.ActionOutOfDate)
	if check {
		fmt.Fprintf(w, "%d workflows up to date\n", workflows)
		return
	}
	fmt.Fprintf(w, "%d workflows: %d written, %d unchanged, %d removed\n",
		workflows,
		result.Count(generate.ActionWritten),
		result.Count(generate.ActionUnchanged),
		result.Count(generate.ActionRemoved))
}

// fail reports err in the requested format and returns the error that sets
// the exit code.
func fail(cmd *cobra.Command, command string, useJSON bool, err error) error {
	if !useJSON {
		return err
	}
	if emitErr := shared.EmitJSONError(cmd.OutOrStdout(), command, []shared.JSONError{shared.NewJSONError(err)}); emitErr != nil {
		return emitErr
	}
	return &shared.ExitError{Code: shared.ExitCode(err)}
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}
