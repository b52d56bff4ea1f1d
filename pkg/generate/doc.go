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
Package generate turns registered workflow definitions into YAML files.

A repository registers its workflows once and runs the generator from a
small main package:

	reg := generate.NewRegistry()
	reg.MustRegister("test", testWorkflow)
	reg.MustRegister("release", releaseWorkflow)
	os.Exit(cli.Execute(reg, os.Args[1:]))

Each workflow is written to <output dir>/<name>.yml behind a banner that
names its source file and the command that regenerates it. Files are only
rewritten when their content changes, so running the generator twice is a
no-op.

# Check mode

With Options.Check the generator writes nothing and returns ErrOutOfDate
when any file differs from what would be generated. CI runs this to catch
workflows that were edited by hand or not regenerated.

# Cleanup

With Options.Cleanup, generated files that no registered workflow produces
are removed. Only files that begin with the banner are considered, so
hand-written workflows in the same directory are left alone.
*/
package generate
