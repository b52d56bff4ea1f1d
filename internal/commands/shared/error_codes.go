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

package shared

import (
	"errors"

	pkgerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/generate"
	"github.com/tombee/flowgen/pkg/workflow"
)

// Error codes for structured JSON output
const (
	// Workflow errors (E001-E099)
	ErrorCodeInvalidWorkflow  = "E001" // Workflow failed to build
	ErrorCodeInvalidValue     = "E002" // Invalid value or expression
	ErrorCodeDuplicateSetting = "E003" // Single-use setting assigned twice
	ErrorCodeBuildInProgress  = "E004" // Nested or concurrent build

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Invalid configuration

	// Generation errors (E300-E399)
	ErrorCodeOutOfDate = "E301" // Generated files are out of date

	// Resource errors (E400-E499)
	ErrorCodeNotFound = "E401" // Resource not found
	ErrorCodeInternal = "E402" // Internal error
)

// ErrorCode maps an error to its JSON error code. The most specific cause
// in the chain wins.
func ErrorCode(err error) string {
	var (
		duplicate   *pkgerrors.DuplicateSettingError
		validation  *pkgerrors.ValidationError
		configErr   *pkgerrors.ConfigError
		notFound    *pkgerrors.NotFoundError
		workflowErr *generate.WorkflowError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, generate.ErrOutOfDate):
		return ErrorCodeOutOfDate
	case errors.Is(err, workflow.ErrBuildInProgress):
		return ErrorCodeBuildInProgress
	case errors.As(err, &duplicate):
		return ErrorCodeDuplicateSetting
	case errors.As(err, &configErr):
		return ErrorCodeInvalidConfig
	case errors.As(err, &validation):
		return ErrorCodeInvalidValue
	case errors.As(err, &notFound):
		return ErrorCodeNotFound
	case errors.As(err, &workflowErr):
		return ErrorCodeInvalidWorkflow
	default:
		return ErrorCodeInternal
	}
}

// NewJSONError builds the JSON form of err
func NewJSONError(err error) JSONError {
	out := JSONError{
		Code:    ErrorCode(err),
		Message: err.Error(),
	}

	var workflowErr *generate.WorkflowError
	if errors.As(err, &workflowErr) {
		out.Workflow = workflowErr.Workflow
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if userErr, ok := e.(pkgerrors.UserVisibleError); ok && userErr.IsUserVisible() {
			out.Suggestion = userErr.Suggestion()
			break
		}
	}
	return out
}
