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

package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/tombee/flowgen/internal/commands/generate"
	"github.com/tombee/flowgen/internal/commands/list"
	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/internal/commands/show"
	"github.com/tombee/flowgen/internal/commands/version"
	pkggenerate "github.com/tombee/flowgen/pkg/generate"
)

// defaultCommand runs when no subcommand is given
const defaultCommand = "generate"

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for flowgen with every
// subcommand attached. Workflows come from reg.
func NewRootCommand(reg *pkggenerate.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowgen",
		Short: "flowgen - GitHub Actions workflows written in Go",
		Long: `flowgen writes GitHub Actions workflow files from workflows defined in Go.

Each workflow is registered with a build function. Running the generator
renders every registered workflow to YAML under .github/workflows, and
'flowgen check' verifies in CI that the committed files are up to date.

Running flowgen without a command is the same as 'flowgen generate'.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, quiet, json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ./.flowgen.yaml)")

	cmd.AddCommand(
		generate.NewCommand(reg),
		generate.NewCheckCommand(reg),
		list.NewCommand(reg),
		show.NewCommand(reg),
		version.NewCommand(),
	)
	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// ResolveArgs returns args with the default command prepended when they
// would otherwise run the root command itself. Help requests and unknown
// commands are passed through so cobra can report them.
func ResolveArgs(root *cobra.Command, args []string) []string {
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		return args
	}
	target, _, err := root.Find(args)
	if err != nil || target != root {
		return args
	}
	return append([]string{defaultCommand}, args...)
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}
