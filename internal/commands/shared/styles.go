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
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/flowgen/pkg/generate"
)

var (
	StatusOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	Muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
)

const (
	SymbolOK    = "✓"
	SymbolError = "✗"
	SymbolInfo  = "•"
)

// RenderAction renders one generated file as a status line. Actions that
// fail a check are red, changes are green and untouched files are muted.
func RenderAction(action generate.Action, path string) string {
	switch action {
	case generate.ActionWritten:
		return StatusOK.Render(SymbolOK) + " wrote " + path
	case generate.ActionRemoved:
		return StatusOK.Render(SymbolOK) + " removed " + path
	case generate.ActionOutOfDate:
		return StatusError.Render(SymbolError) + " out of date " + path
	case generate.ActionStale:
		return StatusError.Render(SymbolError) + " stale " + path
	default:
		return Muted.Render(SymbolInfo + " unchanged " + path)
	}
}
