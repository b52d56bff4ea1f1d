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

package show

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/internal/jq"
	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/generate"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// Response is the JSON output of show
type Response struct {
	shared.JSONResponse
	Workflow string `json:"workflow"`
	Query    string `json:"query,omitempty"`
	Results  []any  `json:"results"`
}

// NewCommand creates the show command
func NewCommand(reg *generate.Registry) *cobra.Command {
	var query, format string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a generated workflow without writing it",
		Long: `Show builds a single registered workflow and prints it to stdout. With
--query, the workflow's JSON form is filtered through a jq expression and
each result is printed.`,
		Example: `  # Example 1: Print the YAML that generate would write
  flowgen show test

  # Example 2: List the job ids of a workflow
  flowgen show test --query '.jobs | keys'

  # Example 3: Print the push trigger branches as JSON
  flowgen show test --query '.on.push.branches' --format json`,
		Annotations: map[string]string{
			"group": "generation",
		},
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, e := range reg.Entries() {
				names = append(names, e.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, reg, args[0], query, format)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "jq expression applied to the workflow's JSON form")
	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "Output format (yaml, json)")
	return cmd
}

func runShow(cmd *cobra.Command, reg *generate.Registry, name, query, format string) error {
	out := cmd.OutOrStdout()
	useJSON := shared.GetJSON()
	if useJSON {
		format = formatJSON
	}
	if format != formatYAML && format != formatJSON {
		return shared.ClassifyError("invalid flag", &flowerrors.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q", format),
			Hint:    "use yaml or json",
		})
	}

	executor := jq.NewExecutor(0, 0)
	if err := executor.Validate(query); err != nil {
		return shared.ClassifyError("invalid query", &flowerrors.ValidationError{
			Field:   "query",
			Message: err.Error(),
		})
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	g := generate.New(reg,
		generate.WithLogger(shared.NewLogger(cfg, cmd.ErrOrStderr())),
		generate.WithQueryExecutor(executor))

	if query == "" && format == formatYAML {
		doc, err := g.Build(name)
		if err != nil {
			return shared.ClassifyError("showing workflow", err)
		}
		entry, _ := reg.Lookup(name)
		content, err := generate.RenderIndent(doc, generate.Header{Source: entry.Source, Command: cfg.Command}, cfg.Indent)
		if err != nil {
			return shared.ClassifyError("showing workflow", err)
		}
		_, err = out.Write(content)
		return err
	}

	results, err := g.Query(cmd.Context(), name, query)
	if err != nil {
		return shared.ClassifyError("showing workflow", err)
	}

	if useJSON {
		if results == nil {
			results = []any{}
		}
		return shared.EmitJSON(out, Response{
			JSONResponse: shared.NewJSONResponse("show", true),
			Workflow:     name,
			Query:        query,
			Results:      results,
		})
	}
	if format == formatJSON {
		for _, r := range results {
			if err := shared.EmitJSON(out, r); err != nil {
				return err
			}
		}
		return nil
	}
	return writeYAML(out, results, cfg.Indent)
}

// writeYAML prints each result as its own YAML document.
func writeYAML(w io.Writer, results []any, indent int) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(indent)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	}
	return enc.Close()
}
