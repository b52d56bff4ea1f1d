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
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether lines written to w may carry lipgloss styling.
// Generated-file reports usually end up in CI logs, so any CI marker,
// NO_COLOR or a dumb terminal turns styling off.
func IsTTY(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || isCIEnvironment() {
		return false
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ciMarkers maps CI environment variables to whether any non-empty value
// counts, rather than only "true" or "1".
var ciMarkers = map[string]bool{
	"CI":             false,
	"GITHUB_ACTIONS": false,
	"GITLAB_CI":      false,
	"CIRCLECI":       false,
	"JENKINS_HOME":   true, // a path
}

func isCIEnvironment() bool {
	for key, anyValue := range ciMarkers {
		v := os.Getenv(key)
		if v == "true" || v == "1" || (anyValue && v != "") {
			return true
		}
	}
	return false
}
