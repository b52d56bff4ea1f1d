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

/*
Package cli provides the root command and shared configuration for flowgen's CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and the default command. Individual
commands are implemented in the internal/commands subpackages.

# Command Tree

The CLI is organized as:

	flowgen
	├── generate      Write the registered workflows (default command)
	├── check         Fail if any generated workflow is out of date
	├── list          List registered workflows
	├── show          Print a generated workflow without writing it
	├── version       Show version
	└── help          Show help

# Usage

From pkg/cli:

	root := cli.NewRootCommand(reg)
	root.SetArgs(cli.ResolveArgs(root, args))
	if err := root.ExecuteContext(ctx); err != nil {
	    shared.PrintError(stderr, err)
	    return shared.ExitCode(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v    Enable verbose output
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file

# Error Handling

Errors are handled centrally to ensure proper exit codes:

  - Exit 0: Success
  - Exit 1: Generation failed or generated files are out of date
  - Exit 2: A workflow failed to build or lint, or the configuration is invalid
*/
package cli
