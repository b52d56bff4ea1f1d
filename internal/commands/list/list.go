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

package list

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/pkg/generate"
)

// WorkflowInfo describes a registered workflow for display
type WorkflowInfo struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Source string `json:"source"`
}

// Response is the JSON output of list
type Response struct {
	shared.JSONResponse
	Workflows []WorkflowInfo `json:"workflows"`
}

// NewCommand creates the list command
func NewCommand(reg *generate.Registry) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered workflows",
		Long: `List shows every registered workflow with the file it generates and the
Go source file that registered it.`,
		Example: `  # Example 1: List all workflows
  flowgen list

  # Example 2: List deploy workflows as JSON
  flowgen list --only 'deploy/*' --json`,
		Annotations: map[string]string{
			"group": "generation",
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, reg, only)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Only list workflows matching these glob patterns")
	return cmd
}

func runList(cmd *cobra.Command, reg *generate.Registry, only []string) error {
	out := cmd.OutOrStdout()
	useJSON := shared.GetJSON()

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if len(only) == 0 {
		only = cfg.Only
	}

	entries, err := generate.New(reg).Select(only)
	if err != nil {
		return shared.ClassifyError("listing workflows", err)
	}

	workflows := make([]WorkflowInfo, 0, len(entries))
	for _, e := range entries {
		workflows = append(workflows, WorkflowInfo{
			Name:   e.Name,
			File:   filepath.Join(cfg.OutputDir, e.FileName(cfg.Extension)),
			Source: e.Source,
		})
	}

	if useJSON {
		return shared.EmitJSON(out, Response{
			JSONResponse: shared.NewJSONResponse("list", true),
			Workflows:    workflows,
		})
	}

	if len(workflows) == 0 {
		fmt.Fprintln(out, "No workflows registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFILE\tSOURCE")
	for _, wf := range workflows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", wf.Name, wf.File, wf.Source)
	}
	return w.Flush()
}
