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

package actions

import (
	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// Action references used by the bundles.
const (
	CheckoutAction         = "actions/checkout@v4"
	SetupNodeAction        = "actions/setup-node@v4"
	SetupGoAction          = "actions/setup-go@v5"
	CacheAction            = "actions/cache@v4"
	UploadArtifactAction   = "actions/upload-artifact@v4"
	DownloadArtifactAction = "actions/download-artifact@v4"
	TurnstyleAction        = "softprops/turnstyle@v2"
	SlackNotifyAction      = "voxmedia/github-action-slack-notify-build@v1"
	AsanaCommentAction     = "mavenoid/github-asana-action@4.0.0"
)

// Option values below are typed any so that they accept either a plain value
// or an expression. A nil value leaves the input unset.

// CheckoutOptions configure Checkout.
type CheckoutOptions struct {
	StepName           string
	Repository         any
	Ref                any
	Token              any
	SSHKey             any
	SSHKnownHosts      any
	SSHStrict          any
	PersistCredentials any
	Path               any
	Clean              any
	FetchDepth         any
	LFS                any
	Submodules         any
}

// Checkout checks out the repository.
func Checkout(opts CheckoutOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Git Checkout"), CheckoutAction, workflow.UseOptions{
			With: map[string]any{
				"repository":          opts.Repository,
				"ref":                 opts.Ref,
				"token":               opts.Token,
				"ssh-key":             opts.SSHKey,
				"ssh-known-hosts":     opts.SSHKnownHosts,
				"ssh-strict":          opts.SSHStrict,
				"persist-credentials": opts.PersistCredentials,
				"path":                opts.Path,
				"clean":               opts.Clean,
				"fetch-depth":         opts.FetchDepth,
				"lfs":                 opts.LFS,
				"submodules":          opts.Submodules,
			},
		})
		return nil
	}
}

// SetupNodeOptions configure SetupNode.
type SetupNodeOptions struct {
	StepName     string
	AlwaysAuth   any
	NodeVersion  any
	Architecture any
	CheckLatest  any
	RegistryURL  any
	Scope        any
	Token        any
	Cache        any
}

// SetupNode installs Node.js.
func SetupNode(opts SetupNodeOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Setup Node"), SetupNodeAction, workflow.UseOptions{
			With: map[string]any{
				"always-auth":  opts.AlwaysAuth,
				"node-version": opts.NodeVersion,
				"architecture": opts.Architecture,
				"check-latest": opts.CheckLatest,
				"registry-url": opts.RegistryURL,
				"scope":        opts.Scope,
				"token":        opts.Token,
				"cache":        opts.Cache,
			},
		})
		return nil
	}
}

// SetupGoOptions configure SetupGo.
type SetupGoOptions struct {
	StepName            string
	GoVersion           any
	GoVersionFile       any
	CheckLatest         any
	Cache               any
	CacheDependencyPath any
}

// SetupGo installs a Go toolchain.
func SetupGo(opts SetupGoOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Setup Go"), SetupGoAction, workflow.UseOptions{
			With: map[string]any{
				"go-version":            opts.GoVersion,
				"go-version-file":       opts.GoVersionFile,
				"check-latest":          opts.CheckLatest,
				"cache":                 opts.Cache,
				"cache-dependency-path": opts.CacheDependencyPath,
			},
		})
		return nil
	}
}

// CacheOptions configure Cache. Key and at least one path are required.
type CacheOptions struct {
	StepName    string
	Paths       []any
	Key         any
	RestoreKeys []any
}

// CacheResult holds conditions on the outcome of a cache restore.
type CacheResult struct {
	// Hit is true when the key matched exactly.
	Hit expression.Expression
	// Miss is the negation of Hit.
	Miss expression.Expression
}

// Cache restores and saves a dependency cache. Apply it with
// workflow.AddSteps to use the result:
//
//	cache, err := workflow.AddSteps(j, actions.Cache(opts))
//	j.When(cache.Miss, func() error { j.Run("npm ci"); return nil })
func Cache(opts CacheOptions) func(j *workflow.Job) (CacheResult, error) {
	return func(j *workflow.Job) (CacheResult, error) {
		if opts.Key == nil {
			return CacheResult{}, &flowerrors.ValidationError{Field: "key", Message: "cache key is required"}
		}
		if len(opts.Paths) == 0 {
			return CacheResult{}, &flowerrors.ValidationError{Field: "paths", Message: "at least one cache path is required"}
		}

		with := map[string]any{
			"key":  opts.Key,
			"path": expression.JoinStrings(opts.Paths, "\n"),
		}
		if len(opts.RestoreKeys) > 0 {
			with["restore-keys"] = expression.JoinStrings(opts.RestoreKeys, "\n")
		}

		step := j.UseNamed(stepName(opts.StepName, "Enable Cache"), CacheAction, workflow.UseOptions{With: with})
		hit := step.Get("outputs", "cache-hit")
		return CacheResult{
			Hit:  expression.Eq(hit, "true"),
			Miss: expression.Neq(hit, "true"),
		}, nil
	}
}

// UploadArtifactOptions configure UploadArtifact. Name and at least one path
// are required.
type UploadArtifactOptions struct {
	StepName       string
	Name           any
	Paths          []any
	IfNoFilesFound any
	RetentionDays  any
}

// UploadArtifact uploads files for later jobs or for download. It returns
// the artifact name.
func UploadArtifact(opts UploadArtifactOptions) func(j *workflow.Job) (any, error) {
	return func(j *workflow.Job) (any, error) {
		if opts.Name == nil {
			return nil, &flowerrors.ValidationError{Field: "name", Message: "artifact name is required"}
		}
		if len(opts.Paths) == 0 {
			return nil, &flowerrors.ValidationError{Field: "paths", Message: "at least one artifact path is required"}
		}
		j.UseNamed(stepName(opts.StepName, "Upload Artifact"), UploadArtifactAction, workflow.UseOptions{
			With: map[string]any{
				"name":              opts.Name,
				"path":              expression.JoinStrings(opts.Paths, "\n"),
				"if-no-files-found": opts.IfNoFilesFound,
				"retention-days":    opts.RetentionDays,
			},
		})
		return opts.Name, nil
	}
}

// DownloadArtifactOptions configure DownloadArtifact.
type DownloadArtifactOptions struct {
	StepName string
	Name     any
	Path     any
}

// DownloadArtifact downloads an artifact uploaded earlier in the run.
func DownloadArtifact(opts DownloadArtifactOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Download Artifact"), DownloadArtifactAction, workflow.UseOptions{
			With: map[string]any{
				"name": opts.Name,
				"path": opts.Path,
			},
		})
		return nil
	}
}

// TurnstyleOptions configure Turnstyle.
type TurnstyleOptions struct {
	StepName            string
	PollIntervalSeconds any
	SameBranchOnly      any
}

// Turnstyle waits for earlier runs of the same workflow to finish.
func Turnstyle(opts TurnstyleOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Turnstyle"), TurnstyleAction, workflow.UseOptions{
			With: map[string]any{
				"poll-interval-seconds": opts.PollIntervalSeconds,
				"same-branch-only":      opts.SameBranchOnly,
			},
			Env: map[string]any{"GITHUB_TOKEN": expression.Secrets.Field("GITHUB_TOKEN")},
		})
		return nil
	}
}

// SlackNotifyOptions configure SlackNotify.
type SlackNotifyOptions struct {
	StepName      string
	SlackBotToken any
	Channel       any
	// Status is free text shown in the message, e.g. STARTED or DEPLOYED.
	Status any
	// Color is good, warning, danger, gray or a hex color.
	Color any
	// ExistingMessageID updates a message posted earlier in the run.
	ExistingMessageID any
	ContinueOnError   any
	TimeoutMinutes    any
}

// SlackNotify posts or updates a build status message. It returns the
// message id for later updates.
func SlackNotify(opts SlackNotifyOptions) func(j *workflow.Job) (expression.Path, error) {
	return func(j *workflow.Job) (expression.Path, error) {
		color := opts.Color
		if color == "gray" {
			color = "#cccccc"
		}
		step := j.UseNamed(stepName(opts.StepName, "Post to Slack"), SlackNotifyAction, workflow.UseOptions{
			With: map[string]any{
				"status":     opts.Status,
				"channel_id": opts.Channel,
				"color":      color,
				"message_id": opts.ExistingMessageID,
			},
			Env:             map[string]any{"SLACK_BOT_TOKEN": opts.SlackBotToken},
			ContinueOnError: opts.ContinueOnError,
			TimeoutMinutes:  opts.TimeoutMinutes,
		})
		return step.Get("outputs", "message_id"), nil
	}
}

// AsanaCommentOptions configure AsanaComment.
type AsanaCommentOptions struct {
	StepName        string
	AccessToken     any
	TaskComment     any
	Env             map[string]any
	ContinueOnError any
	TimeoutMinutes  any
}

// AsanaComment comments on the Asana tasks linked from a pull request.
func AsanaComment(opts AsanaCommentOptions) workflow.Steps {
	return func(j *workflow.Job) error {
		j.UseNamed(stepName(opts.StepName, "Comment on Asana Task"), AsanaCommentAction, workflow.UseOptions{
			With: map[string]any{
				"asana-pat":    opts.AccessToken,
				"task-comment": opts.TaskComment,
			},
			Env:             opts.Env,
			ContinueOnError: opts.ContinueOnError,
			TimeoutMinutes:  opts.TimeoutMinutes,
		})
		return nil
	}
}

func stepName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
