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
	"time"

	"github.com/gravitational/provisioner/lib/constants"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Application represents the command-line "provisioner" application and contains
// definitions of all its flags, arguments and subcommands
type Application struct {
	*kingpin.Application
	// Debug allows to run the command in debug mode
	Debug *bool
	// ServeCmd serves a function as the Lambda handler
	ServeCmd ServeCmd
	// SizeCmd sizes an installation
	SizeCmd SizeCmd
	// InvokeCmd handles a single event locally
	InvokeCmd InvokeCmd
	// PoliciesCmd lists the sizing policies
	PoliciesCmd PoliciesCmd
}

// ServeCmd serves a function as the Lambda handler
type ServeCmd struct {
	*kingpin.CmdClause
	// Function names the function to serve
	Function *string
}

// SizeCmd sizes an installation
type SizeCmd struct {
	*kingpin.CmdClause
	// Region is the AWS region
	Region *string
	// MultiNode selects the multi-node topology
	MultiNode *bool
	// Modules lists the enabled modules
	Modules *[]string
	// GPU requests a GPU node
	GPU *bool
	// Robots requests a robot node
	Robots *bool
	// Update sizes a resize of an existing installation
	Update *bool
	// Policy names the sizing policy
	Policy *string
	// PolicyFile is a path to a policy definition
	PolicyFile *string
	// Offline sizes with the built-in instance catalog
	Offline *bool
	// Output is output format
	Output *constants.Format
}

// InvokeCmd handles a single event locally
type InvokeCmd struct {
	*kingpin.CmdClause
	// Function names the function
	Function *string
	// EventFile is a path to the event. Reads stdin if empty
	EventFile *string
	// Policy names the sizing policy
	Policy *string
	// Offline sizes with the built-in instance catalog
	Offline *bool
	// Timeout bounds the invocation
	Timeout *time.Duration
}

// PoliciesCmd lists the sizing policies
type PoliciesCmd struct {
	*kingpin.CmdClause
	// Output is output format
	Output *constants.Format
}
