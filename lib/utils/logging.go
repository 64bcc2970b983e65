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

package utils

import (
	"io"
	"os"

	"github.com/gravitational/provisioner/lib/constants"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// InitLogging configures the standard logger to log at the specified level
// in the specified format to stderr
func InitLogging(level log.Level, format string) error {
	return trace.Wrap(initLogging(log.StandardLogger(), os.Stderr, level, format))
}

func initLogging(logger *log.Logger, w io.Writer, level log.Level, format string) error {
	switch format {
	case constants.LogFormatJSON:
		logger.SetFormatter(&log.JSONFormatter{})
	case constants.LogFormatText, "":
		logger.SetFormatter(&log.TextFormatter{
			DisableTimestamp: true,
		})
	default:
		return trace.BadParameter("unsupported log format %q, expected one of %v",
			format, []string{constants.LogFormatJSON, constants.LogFormatText})
	}
	logger.SetLevel(level)
	logger.SetOutput(w)
	return nil
}

// ParseLogLevel parses the log level.
// Debug mode forces the debug level
func ParseLogLevel(level string, debug bool) (log.Level, error) {
	if debug {
		return log.DebugLevel, nil
	}
	if level == "" {
		return log.InfoLevel, nil
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return 0, trace.BadParameter("invalid log level %q", level)
	}
	return parsed, nil
}
