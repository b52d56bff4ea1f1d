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

// Persistent flags bound by the root command. Commands read them through
// the getters so tests can reset them between runs.
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string

	// set by -ldflags in release builds
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns the verbose, quiet, json and config flag
// variables, in that order, for the root command to bind.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &configFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

func GetVerbose() bool { return verboseFlag }
func GetQuiet() bool   { return quietFlag }
func GetJSON() bool    { return jsonFlag }

// GetConfigPath returns --config, empty when the default .flowgen.yaml
// lookup applies.
func GetConfigPath() string { return configFlag }

// Verbosity returns the log level implied by --verbose and --quiet.
// --quiet wins when both are set.
func Verbosity() string {
	switch {
	case quietFlag:
		return "error"
	case verboseFlag:
		return "debug"
	default:
		return ""
	}
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// ResetFlagsForTest restores every global flag to its zero value
func ResetFlagsForTest() {
	verboseFlag = false
	quietFlag = false
	jsonFlag = false
	configFlag = ""
}

// SetConfigPathForTest sets the config path for testing purposes
func SetConfigPathForTest(path string) {
	configFlag = path
}
