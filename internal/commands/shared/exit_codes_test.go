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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tombee/flowgen/internal/config"
	pkgerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/generate"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "plain error", err: errors.New("disk full"), want: ExitFailed},
		{name: "out of date", err: generate.ErrOutOfDate, want: ExitFailed},
		{name: "not found", err: &pkgerrors.NotFoundError{Resource: "workflow", ID: "x"}, want: ExitFailed},
		{
			name: "workflow error",
			err:  &generate.WorkflowError{Workflow: "test", Err: errors.New("boom")},
			want: ExitInvalidWorkflow,
		},
		{
			name: "validation error",
			err:  fmt.Errorf("wrapped: %w", &pkgerrors.ValidationError{Field: "only", Message: "bad"}),
			want: ExitInvalidWorkflow,
		},
		{
			name: "config error",
			err:  &pkgerrors.ConfigError{Key: "validation", Reason: "bad", Cause: config.ErrInvalidConfig},
			want: ExitInvalidWorkflow,
		},
		{
			name: "already classified",
			err:  NewFailedError("kept", &generate.WorkflowError{Workflow: "x", Err: errors.New("y")}),
			want: ExitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCode(ClassifyError("failed", tt.err))
			if got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode_Unclassified(t *testing.T) {
	if got := ExitCode(errors.New("x")); got != ExitFailed {
		t.Errorf("expected ExitFailed for a plain error, got %d", got)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	err := NewInvalidWorkflowError("generation failed", &generate.WorkflowError{
		Workflow: "test",
		Err: &pkgerrors.DuplicateSettingError{
			Field: "workflow name",
		},
	})

	PrintError(&buf, err)

	out := buf.String()
	if !strings.HasPrefix(out, "Error: generation failed: workflow test: ") {
		t.Errorf("unexpected error line: %q", out)
	}
	if !strings.Contains(out, "\nSuggestion: ") {
		t.Errorf("expected the duplicate setting suggestion, got %q", out)
	}
}

func TestPrintError_NoSuggestion(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("some internal error"))

	if buf.String() != "Error: some internal error\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrintError_Nil(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestExitError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	exitErr := NewFailedError("generation failed", innerErr)

	unwrapped := errors.Unwrap(exitErr)
	if unwrapped != innerErr {
		t.Errorf("expected unwrapped error to be innerErr, got %v", unwrapped)
	}
}

func TestExitError_WithUserVisibleCause(t *testing.T) {
	cause := &pkgerrors.ValidationError{
		Field:   "extension",
		Message: "unknown extension",
		Hint:    "use .yml or .yaml",
	}

	exitErr := NewInvalidWorkflowError("invalid configuration", cause)

	var userErr pkgerrors.UserVisibleError
	if !errors.As(exitErr, &userErr) {
		t.Fatal("expected to unwrap UserVisibleError from ExitError")
	}

	if userErr.Suggestion() != "use .yml or .yaml" {
		t.Errorf("expected suggestion from cause error, got %q", userErr.Suggestion())
	}
}
