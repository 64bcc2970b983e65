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

package cli

import (
	"context"

	"github.com/gravitational/provisioner/lib/config"
	"github.com/gravitational/provisioner/lib/functions"
	"github.com/gravitational/provisioner/lib/utils"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gravitational/trace"
)

// serve configures the function from the environment and hands it
// to the Lambda runtime. It does not return unless configuration fails
func serve(function string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return trace.Wrap(err)
	}
	if function != "" {
		cfg.Function = function
		if err := cfg.Check(); err != nil {
			return trace.Wrap(err)
		}
	}
	if cfg.Function == "" {
		return trace.BadParameter("no function to serve: set %v_FUNCTION or --function", config.Prefix)
	}
	level, err := cfg.Level()
	if err != nil {
		return trace.Wrap(err)
	}
	if err := utils.InitLogging(level, cfg.LogFormat); err != nil {
		return trace.Wrap(err)
	}
	trace.SetDebug(cfg.Debug)

	handler, err := functions.New(cfg.Function, functions.Config{
		SizingPolicy:   cfg.SizingPolicy,
		WatchdogMargin: cfg.Margin(),
	})
	if err != nil {
		return trace.Wrap(err)
	}
	log.WithField("function", cfg.Function).Info("Serving.")
	lambda.Start(func(ctx context.Context, event cfn.Event) error {
		if err := handler.Handle(ctx, event); err != nil {
			// The runtime retries failed invocations
			log.WithError(err).Error("Failed to deliver response.")
		}
		return nil
	})
	return nil
}
