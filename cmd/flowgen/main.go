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

// Command flowgen generates this repository's GitHub Actions workflows.
//
//	go run ./cmd/flowgen          # write .github/workflows
//	go run ./cmd/flowgen check    # fail if they are out of date
package main

import (
	"os"

	"github.com/tombee/flowgen/cmd/flowgen/workflows"
	"github.com/tombee/flowgen/pkg/cli"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)
	os.Exit(cli.Execute(workflows.Registry(), os.Args[1:]))
}
