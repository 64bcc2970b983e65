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
	"fmt"
	"strings"

	"github.com/gravitational/provisioner/lib/config"
	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/sizing"
	"github.com/gravitational/provisioner/tool/common"

	"gopkg.in/alecthomas/kingpin.v2"
)

// RegisterCommands registers all provisioner flags, arguments and subcommands
func RegisterCommands(app *kingpin.Application) Application {
	provisioner := Application{
		Application: app,
	}

	provisioner.Debug = app.Flag("debug", "Enable debug mode.").Envar(config.Prefix + "_DEBUG").Bool()

	functions := strings.Join(constants.Functions, ", ")
	policies := strings.Join(sizing.PolicyNames(), ", ")

	provisioner.ServeCmd.CmdClause = app.Command("serve", "Serve a function as the Lambda handler.").Default()
	provisioner.ServeCmd.Function = provisioner.ServeCmd.Flag("function", fmt.Sprintf("Function to serve: %v. Defaults to the Lambda handler name.", functions)).String()

	provisioner.SizeCmd.CmdClause = app.Command("size", "Compute instance types and node counts of an installation.")
	provisioner.SizeCmd.Region = provisioner.SizeCmd.Flag("region", "AWS region to select instance types in.").Envar("AWS_REGION").Default(defaults.AWSRegion).String()
	provisioner.SizeCmd.MultiNode = provisioner.SizeCmd.Flag("multi-node", "Size a multi-node installation.").Bool()
	provisioner.SizeCmd.Modules = provisioner.SizeCmd.Flag("module", fmt.Sprintf("Enabled module, can be specified multiple times: %v.", sizing.Modules)).Short('m').Strings()
	provisioner.SizeCmd.GPU = provisioner.SizeCmd.Flag("gpu", "Add a GPU node.").Bool()
	provisioner.SizeCmd.Robots = provisioner.SizeCmd.Flag("robots", "Add a robot node.").Bool()
	provisioner.SizeCmd.Update = provisioner.SizeCmd.Flag("update", "Use the rules for resizing an existing installation.").Bool()
	provisioner.SizeCmd.Policy = provisioner.SizeCmd.Flag("policy", fmt.Sprintf("Sizing policy: %v.", policies)).Envar(config.Prefix + "_SIZING_POLICY").Default(defaults.SizingPolicy).String()
	provisioner.SizeCmd.PolicyFile = provisioner.SizeCmd.Flag("policy-file", "Path to a sizing policy definition, overrides --policy.").String()
	provisioner.SizeCmd.Offline = provisioner.SizeCmd.Flag("offline", "Use the built-in instance catalog instead of querying EC2.").Bool()
	provisioner.SizeCmd.Output = common.Format(provisioner.SizeCmd.Flag("output", fmt.Sprintf("Output format: %v.", constants.OutputFormats)).Short('o').Default(string(constants.EncodingText)))

	provisioner.InvokeCmd.CmdClause = app.Command("invoke", "Handle a custom resource event locally and print the response.")
	provisioner.InvokeCmd.Function = provisioner.InvokeCmd.Arg("function", fmt.Sprintf("Function to invoke: %v.", functions)).Required().Enum(constants.Functions...)
	provisioner.InvokeCmd.EventFile = provisioner.InvokeCmd.Arg("event", "Path to the event JSON file. Reads stdin if omitted.").String()
	provisioner.InvokeCmd.Policy = provisioner.InvokeCmd.Flag("policy", fmt.Sprintf("Sizing policy: %v.", policies)).Envar(config.Prefix + "_SIZING_POLICY").Default(defaults.SizingPolicy).String()
	provisioner.InvokeCmd.Offline = provisioner.InvokeCmd.Flag("offline", "Use the built-in instance catalog instead of querying EC2.").Bool()
	provisioner.InvokeCmd.Timeout = provisioner.InvokeCmd.Flag("timeout", "Invocation timeout, the watchdog fires shortly before it.").Default(defaults.InvokeTimeout.String()).Duration()

	provisioner.PoliciesCmd.CmdClause = app.Command("policies", "List sizing policies.")
	provisioner.PoliciesCmd.Output = common.Format(provisioner.PoliciesCmd.Flag("output", fmt.Sprintf("Output format: %v.", constants.OutputFormats)).Short('o').Default(string(constants.EncodingText)))

	return provisioner
}
