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

package errors

import (
	"fmt"
	"strings"
)

// ValidationError represents user input validation failures.
// Use this for invalid user input, malformed data, or constraint violations.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// IsUserVisible implements UserVisibleError.
func (e *ValidationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ValidationError) UserMessage() string { return e.Message }

// Suggestion implements UserVisibleError.
func (e *ValidationError) Suggestion() string { return e.Hint }

// NotFoundError represents a resource not found error.
// Use this when a requested resource does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "workflow", "job")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "output_dir")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// DuplicateSettingError is returned when a single-use workflow or job
// setting is assigned a second time. A repeated assignment of an identical
// value is still rejected.
type DuplicateSettingError struct {
	// Field names the setting, e.g. "workflow name" or "job timeout"
	Field string
}

// Error implements the error interface.
func (e *DuplicateSettingError) Error() string {
	return fmt.Sprintf("cannot set %s more than once", e.Field)
}

// IsUserVisible implements UserVisibleError.
func (e *DuplicateSettingError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *DuplicateSettingError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *DuplicateSettingError) Suggestion() string {
	return fmt.Sprintf("remove the repeated call that sets the %s", e.Field)
}

// ImmutablePathError is returned by the mutation methods of a symbolic
// context path. Paths only exist to be rendered.
type ImmutablePathError struct {
	// Op is the rejected operation: "set", "delete", "keys" or "define"
	Op string

	// Path is the segments of the path the operation was attempted on
	Path []string
}

// Error implements the error interface.
func (e *ImmutablePathError) Error() string {
	target := strings.Join(e.Path, ".")
	switch e.Op {
	case "keys":
		return fmt.Sprintf("cannot get keys on context path %s", target)
	case "define":
		return fmt.Sprintf("cannot define property on context path %s", target)
	}
	return fmt.Sprintf("cannot %s on context path %s", e.Op, target)
}

// UnsupportedOperandError is returned when an expression operand is neither
// a literal, a context path nor a composite expression.
type UnsupportedOperandError struct {
	// Type is the Go type of the rejected operand
	Type string
}

// Error implements the error interface.
func (e *UnsupportedOperandError) Error() string {
	return fmt.Sprintf("unsupported expression operand type: %s", e.Type)
}
