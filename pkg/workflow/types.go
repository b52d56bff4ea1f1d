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

package workflow

import (
	"slices"
	"sort"
)

// Access is the level granted to a single permission scope.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
	AccessNone  Access = "none"
)

// Permission scopes accepted by the platform.
const (
	ScopeActions            = "actions"
	ScopeChecks             = "checks"
	ScopeContents           = "contents"
	ScopeDeployments        = "deployments"
	ScopeIDToken            = "id-token"
	ScopeIssues             = "issues"
	ScopeDiscussions        = "discussions"
	ScopePackages           = "packages"
	ScopePages              = "pages"
	ScopePullRequests       = "pull-requests"
	ScopeRepositoryProjects = "repository-projects"
	ScopeSecurityEvents     = "security-events"
	ScopeStatuses           = "statuses"
)

// Permissions is either a blanket grant (ReadAll, WriteAll) or a set of
// per-scope access levels.
type Permissions struct {
	All    string
	Scopes map[string]Access
}

var (
	ReadAll  = Permissions{All: "read-all"}
	WriteAll = Permissions{All: "write-all"}
)

func (p Permissions) value() any {
	if p.All != "" {
		return p.All
	}
	scopes := make(map[string]any, len(p.Scopes))
	for k, v := range p.Scopes {
		scopes[k] = string(v)
	}
	if r := recordFromMap(scopes); r != nil {
		return r
	}
	return NewRecord()
}

// Shell selects the interpreter for run steps.
type Shell string

const (
	ShellBash       Shell = "bash"
	ShellPwsh       Shell = "pwsh"
	ShellPython     Shell = "python"
	ShellSh         Shell = "sh"
	ShellCmd        Shell = "cmd"
	ShellPowershell Shell = "powershell"
)

// Defaults apply to every run step in their scope.
type Defaults struct {
	Shell            Shell
	WorkingDirectory string
}

func (d Defaults) value() *Record {
	run := NewRecord()
	if d.Shell != "" {
		run.Set("shell", string(d.Shell))
	}
	if d.WorkingDirectory != "" {
		run.Set("working-directory", d.WorkingDirectory)
	}
	out := NewRecord()
	out.Set("run", run)
	return out
}

// Credentials authenticate against a container registry.
type Credentials struct {
	Username any
	Password any
}

// Container runs a job's steps inside a container image.
type Container struct {
	Image       any
	Credentials *Credentials
	Env         map[string]any
	Ports       []any
	Volumes     []any
	Options     string
}

func (c Container) value() *Record {
	r := NewRecord()
	r.Set("image", c.Image)
	if c.Credentials != nil {
		creds := NewRecord()
		if !isUnset(c.Credentials.Username) {
			creds.Set("username", c.Credentials.Username)
		}
		if !isUnset(c.Credentials.Password) {
			creds.Set("password", c.Credentials.Password)
		}
		if creds.Len() > 0 {
			r.Set("credentials", creds)
		}
	}
	if env := recordFromMap(c.Env); env != nil {
		r.Set("env", env)
	}
	if len(c.Ports) > 0 {
		r.Set("ports", slices.Clone(c.Ports))
	}
	if len(c.Volumes) > 0 {
		r.Set("volumes", slices.Clone(c.Volumes))
	}
	if c.Options != "" {
		r.Set("options", c.Options)
	}
	return r
}

// Service is a sidecar container for a job. An empty Name is replaced with
// service_N.
type Service struct {
	Name string
	Container
}

// Matrix maps each axis name to the values it takes.
type Matrix map[string][]any

// MatrixOptions refine a build matrix.
type MatrixOptions struct {
	Include     []map[string]any
	Exclude     []map[string]any
	FailFast    *bool
	MaxParallel int
}

func matrixValue(axes Matrix, opts MatrixOptions) *Record {
	names := make([]string, 0, len(axes))
	for name := range axes {
		names = append(names, name)
	}
	sort.Strings(names)

	m := NewRecord()
	for _, name := range names {
		m.Set(name, slices.Clone(axes[name]))
	}
	if len(opts.Include) > 0 {
		m.Set("include", rows(opts.Include))
	}
	if len(opts.Exclude) > 0 {
		m.Set("exclude", rows(opts.Exclude))
	}

	strategy := NewRecord()
	strategy.Set("matrix", m)
	if opts.FailFast != nil {
		strategy.Set("fail-fast", *opts.FailFast)
	}
	if opts.MaxParallel > 0 {
		strategy.Set("max-parallel", opts.MaxParallel)
	}
	return strategy
}

func rows(in []map[string]any) []any {
	out := make([]any, 0, len(in))
	for _, row := range in {
		if r := recordFromMap(row); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func mergeMatrixOptions(opts []MatrixOptions) MatrixOptions {
	var out MatrixOptions
	for _, o := range opts {
		out.Include = append(out.Include, o.Include...)
		out.Exclude = append(out.Exclude, o.Exclude...)
		if o.FailFast != nil {
			out.FailFast = o.FailFast
		}
		if o.MaxParallel > 0 {
			out.MaxParallel = o.MaxParallel
		}
	}
	return out
}
