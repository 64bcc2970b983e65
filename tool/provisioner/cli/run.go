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

	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/utils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField(trace.Component, "cli")

// Run parses CLI arguments and executes an appropriate provisioner command
func Run(provisioner Application, args []string) error {
	cmd, err := provisioner.Parse(args)
	if err != nil {
		return trace.Wrap(err)
	}

	trace.SetDebug(*provisioner.Debug)
	if cmd == provisioner.ServeCmd.FullCommand() {
		return serve(*provisioner.ServeCmd.Function)
	}

	level, err := utils.ParseLogLevel("warn", *provisioner.Debug)
	if err != nil {
		return trace.Wrap(err)
	}
	if err := utils.InitLogging(level, constants.LogFormatText); err != nil {
		return trace.Wrap(err)
	}
	log.Debugf("Executing: %v.", args)

	switch cmd {
	case provisioner.SizeCmd.FullCommand():
		return size(context.Background(), sizeConfig{
			region:     *provisioner.SizeCmd.Region,
			multiNode:  *provisioner.SizeCmd.MultiNode,
			modules:    *provisioner.SizeCmd.Modules,
			gpu:        *provisioner.SizeCmd.GPU,
			robots:     *provisioner.SizeCmd.Robots,
			update:     *provisioner.SizeCmd.Update,
			policy:     *provisioner.SizeCmd.Policy,
			policyFile: *provisioner.SizeCmd.PolicyFile,
			offline:    *provisioner.SizeCmd.Offline,
			output:     *provisioner.SizeCmd.Output,
		})
	case provisioner.InvokeCmd.FullCommand():
		return invoke(context.Background(), invokeConfig{
			function:  *provisioner.InvokeCmd.Function,
			eventFile: *provisioner.InvokeCmd.EventFile,
			policy:    *provisioner.InvokeCmd.Policy,
			offline:   *provisioner.InvokeCmd.Offline,
			timeout:   *provisioner.InvokeCmd.Timeout,
		})
	case provisioner.PoliciesCmd.FullCommand():
		return listPolicies(*provisioner.PoliciesCmd.Output)
	}
	return trace.NotImplemented("command %v is not implemented", cmd)
}
