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
	"log/slog"
	"os"

	"github.com/tombee/flowgen/internal/config"
	"github.com/tombee/flowgen/internal/log"
)

// LoadConfig loads configuration from --config, or from the default file in
// the working directory when it exists.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(GetConfigPath()))
	if err != nil {
		return nil, NewInvalidWorkflowError("invalid configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger writing to w. The config file sets
// the baseline, logging environment variables override it, and
// --verbose/--quiet override both.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logCfg := log.FromEnv()
	if !envLogLevelSet() {
		logCfg.Level = cfg.Log.Level
	}
	if os.Getenv("LOG_FORMAT") == "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	if level := Verbosity(); level != "" {
		logCfg.Level = level
	}
	logCfg.Output = w
	return log.New(logCfg)
}

func envLogLevelSet() bool {
	for _, key := range []string{"FLOWGEN_DEBUG", "FLOWGEN_LOG_LEVEL", "LOG_LEVEL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}
