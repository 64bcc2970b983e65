/*
Copyright 2021 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config reads the runtime configuration of the functions
// from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/sizing"
	"github.com/gravitational/provisioner/lib/utils"

	"github.com/gravitational/trace"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Prefix is the prefix of the environment variables
const Prefix = "PROVISIONER"

// EnvHandler is the environment variable with the handler
// name set by the Lambda runtime
const EnvHandler = "_HANDLER"

// Config is the runtime configuration
type Config struct {
	// LogLevel is the log level
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFormat is either json or text
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	// Debug enables debug logging
	Debug bool `envconfig:"DEBUG"`
	// WatchdogMargin is how long before the deadline the watchdog fires
	WatchdogMargin time.Duration `envconfig:"WATCHDOG_MARGIN" default:"500ms"`
	// SizingPolicy names the sizing policy
	SizingPolicy string `envconfig:"SIZING_POLICY" default:"aggregate"`
	// Function names the function this process serves.
	// Defaults to the base name of the Lambda handler if it names a function
	Function string `envconfig:"FUNCTION"`
}

// FromEnv reads the configuration from the environment
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, trace.BadParameter("invalid configuration: %v", err)
	}
	if cfg.Function == "" {
		if handler := filepath.Base(os.Getenv(EnvHandler)); isFunction(handler) {
			cfg.Function = handler
		}
	}
	if err := cfg.Check(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfg, nil
}

// Check validates the configuration
func (r *Config) Check() error {
	if _, err := r.Level(); err != nil {
		return trace.Wrap(err)
	}
	switch r.LogFormat {
	case constants.LogFormatJSON, constants.LogFormatText:
	default:
		return trace.BadParameter("unsupported log format %q", r.LogFormat)
	}
	if r.WatchdogMargin < 0 {
		return trace.BadParameter("watchdog margin must not be negative, got %v", r.WatchdogMargin)
	}
	if _, err := sizing.GetPolicy(r.SizingPolicy); err != nil {
		return trace.Wrap(err)
	}
	if r.Function != "" && !isFunction(r.Function) {
		return trace.BadParameter("unknown function %q, expected one of %v",
			r.Function, strings.Join(constants.Functions, ", "))
	}
	return nil
}

// Level returns the configured log level
func (r *Config) Level() (log.Level, error) {
	return utils.ParseLogLevel(r.LogLevel, r.Debug)
}

// Margin returns the watchdog margin
func (r *Config) Margin() time.Duration {
	if r.WatchdogMargin == 0 {
		return defaults.WatchdogMargin
	}
	return r.WatchdogMargin
}

func isFunction(name string) bool {
	for _, function := range constants.Functions {
		if function == name {
			return true
		}
	}
	return false
}
