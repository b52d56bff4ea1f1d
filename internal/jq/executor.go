// Package jq evaluates jq queries against generated workflow documents.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single query (1 second)
	DefaultTimeout = 1 * time.Second

	// DefaultMaxInputSize is the largest document a query may run against (10MB)
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Executor runs jq queries with timeout and size limits.
type Executor struct {
	timeout      time.Duration
	maxInputSize int64
}

// NewExecutor creates a new jq executor. Zero values select the defaults.
func NewExecutor(timeout time.Duration, maxInputSize int64) *Executor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize == 0 {
		maxInputSize = DefaultMaxInputSize
	}

	return &Executor{
		timeout:      timeout,
		maxInputSize: maxInputSize,
	}
}

// Execute runs query against data and returns every value it emits.
// data may be any JSON-marshalable value; it is converted to plain maps and
// slices first, so types with custom JSON encodings (such as workflow
// documents) are queried by their JSON form. An empty query returns the
// converted data as the only result.
func (e *Executor) Execute(ctx context.Context, query string, data any) ([]any, error) {
	input, err := e.normalize(data)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return []any{input}, nil
	}

	code, err := compile(query)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(execCtx, input)
	for {
		if execCtx.Err() != nil {
			return nil, fmt.Errorf("execution timeout after %v", e.timeout)
		}
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("execution timeout after %v", e.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// Validate checks that query parses and compiles.
func (e *Executor) Validate(query string) error {
	if query == "" {
		return nil
	}
	_, err := compile(query)
	return err
}

func compile(query string) (*gojq.Code, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// normalize round-trips data through JSON, enforcing the size limit.
func (e *Executor) normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	if int64(len(raw)) > e.maxInputSize {
		return nil, fmt.Errorf("data size (%d bytes) exceeds maximum (%d bytes)",
			len(raw), e.maxInputSize)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}
