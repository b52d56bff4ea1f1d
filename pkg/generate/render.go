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

package generate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultIndent is the YAML indentation width of generated files.
const DefaultIndent = 2

// bannerFirstLine marks a file as generated. Cleanup only removes files
// that start with it.
const bannerFirstLine = "# !!! This file is auto-generated, do not edit by hand !!!"

// Header identifies where a generated file comes from.
type Header struct {
	// Source is the file that defines the workflow.
	Source string
	// Command regenerates the file.
	Command string
}

func (h Header) banner() string {
	return fmt.Sprintf("%s\n# To make changes, edit %s and then run:\n#\n#   %s\n\n",
		bannerFirstLine, h.Source, h.Command)
}

// Render serializes v (usually a *workflow.Document) as YAML preceded by
// the generated-file banner. The output for a given input is always the same.
func Render(v any, header Header) ([]byte, error) {
	return RenderIndent(v, header, DefaultIndent)
}

// RenderIndent is Render with an explicit indentation width.
func RenderIndent(v any, header Header, indent int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header.banner())

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes content to path unless the file already holds exactly
// that content. It reports whether the file differs (a missing file
// differs). With dryRun nothing is written.
func WriteFile(path string, content []byte, dryRun bool) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			return false, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if dryRun {
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// isGenerated reports whether the file at path starts with the banner.
func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(bannerFirstLine))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return string(head) == bannerFirstLine, nil
}
