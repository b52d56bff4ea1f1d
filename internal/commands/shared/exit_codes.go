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
	"fmt"
	"io"

	"github.com/tombee/flowgen/internal/config"
	pkgerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/generate"
)

// Exit codes for flowgen commands
const (
	ExitSuccess         = 0
	ExitFailed          = 1 // generation failed, or check found out-of-date files
	ExitInvalidWorkflow = 2 // a workflow or the configuration is invalid
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailedError creates an error for runs that could not complete
func NewFailedError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidWorkflowError creates an error for workflows that fail to build
// or lint, and for invalid configuration
func NewInvalidWorkflowError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidWorkflow,
		Message: msg,
		Cause:   cause,
	}
}

// ClassifyError wraps err in an ExitError with the code its cause calls
// for. Errors that already carry a code are returned unchanged.
func ClassifyError(msg string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var workflowErr *generate.WorkflowError
	var validationErr *pkgerrors.ValidationError
	var configErr *pkgerrors.ConfigError
	switch {
	case errors.As(err, &workflowErr),
		errors.As(err, &validationErr),
		errors.As(err, &configErr),
		errors.Is(err, config.ErrInvalidConfig):
		return NewInvalidWorkflowError(msg, err)
	default:
		return NewFailedError(msg, err)
	}
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailed
}

// PrintError writes err and any suggestion it carries to w
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}
	printUserVisibleSuggestion(w, err)
}

// printUserVisibleSuggestion checks if an error implements UserVisibleError
// and prints the suggestion if available.
func printUserVisibleSuggestion(w io.Writer, err error) {
	// Walk the error chain to find a UserVisibleError
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				suggestion := userErr.Suggestion()
				if suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}

		err = errors.Unwrap(err)
	}
}
