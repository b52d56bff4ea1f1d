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

// Package cli runs the flowgen command line over a registry of workflows.
//
// A repository keeps its workflows in a small main package:
//
//	func main() {
//		reg := generate.NewRegistry()
//		reg.MustRegister("test", workflows.Test)
//		os.Exit(cli.Execute(reg, os.Args[1:]))
//	}
//
// and runs it with "go run ./cmd/flowgen" to regenerate the files, or
// "go run ./cmd/flowgen check" in CI.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	internalcli "github.com/tombee/flowgen/internal/cli"
	"github.com/tombee/flowgen/internal/commands/shared"
	"github.com/tombee/flowgen/pkg/generate"
)

// SetVersion sets the version reported by the version command.
func SetVersion(version, commit, buildDate string) {
	internalcli.SetVersion(version, commit, buildDate)
}

// Execute runs the command line with args against the process's standard
// streams and returns the exit code. Interrupts cancel the run.
func Execute(reg *generate.Registry, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Run(ctx, reg, args, os.Stdout, os.Stderr)
}

// Run runs the command line with args and returns the exit code. Errors are
// printed to stderr.
func Run(ctx context.Context, reg *generate.Registry, args []string, stdout, stderr io.Writer) int {
	root := internalcli.NewRootCommand(reg)
	root.SetArgs(internalcli.ResolveArgs(root, args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		shared.PrintError(stderr, err)
		return shared.ExitCode(err)
	}
	return shared.ExitSuccess
}
