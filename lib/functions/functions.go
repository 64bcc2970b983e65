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

// Package functions assembles the custom resource functions by name.
package functions

import (
	"time"

	"github.com/gravitational/provisioner/lib/cfn"
	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/inventory"
	"github.com/gravitational/provisioner/lib/resources/computesize"
	"github.com/gravitational/provisioner/lib/resources/emptybucket"
	"github.com/gravitational/provisioner/lib/resources/findami"
	"github.com/gravitational/provisioner/lib/resources/installconfig"
	"github.com/gravitational/provisioner/lib/resources/patchasg"
	"github.com/gravitational/provisioner/lib/schema"
	"github.com/gravitational/provisioner/lib/sizing"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Config defines the common function configuration
type Config struct {
	// SizingPolicy names the sizing policy of ComputeResourceSize.
	// Defaults to the aggregate policy
	SizingPolicy string
	// Lookup resolves instance types for ComputeResourceSize.
	// Defaults to EC2
	Lookup inventory.Lookup
	// Sender delivers responses
	Sender cfn.Sender
	// Clock is used by the watchdog
	Clock clockwork.Clock
	// WatchdogMargin is how long before the deadline the watchdog fires
	WatchdogMargin time.Duration
	// LogStreamName returns the name of the log stream of the invocation
	LogStreamName func() string
	// Resources overrides the resource of the named functions
	Resources map[string]cfn.Resource
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.SizingPolicy == "" {
		r.SizingPolicy = defaults.SizingPolicy
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, constants.ComponentProvisioner)
	}
	return nil
}

// New returns the named function
func New(name string, config Config) (*cfn.Function, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	resource, ok := config.Resources[name]
	if !ok {
		var err error
		resource, err = newResource(name, config)
		if err != nil {
			return nil, trace.Wrap(err)
		}
	}
	function, err := cfn.New(cfn.Config{
		Name:           name,
		Resource:       resource,
		Validate:       schema.Validator(name),
		Sender:         config.Sender,
		Clock:          config.Clock,
		WatchdogMargin: config.WatchdogMargin,
		LogStreamName:  config.LogStreamName,
		FieldLogger:    config.WithField("function", name),
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return function, nil
}

func newResource(name string, config Config) (cfn.Resource, error) {
	logger := config.WithField("function", name)
	switch name {
	case constants.FunctionComputeResourceSize:
		calculator, err := NewCalculator(config.SizingPolicy, config.Lookup, logger)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return computesize.New(computesize.Config{
			Calculator:  calculator,
			FieldLogger: logger,
		})
	case constants.FunctionEmptyS3Bucket:
		return emptybucket.New(emptybucket.Config{FieldLogger: logger})
	case constants.FunctionFindAmi:
		return findami.New(findami.Config{FieldLogger: logger})
	case constants.FunctionPatchAsg:
		return patchasg.New(patchasg.Config{FieldLogger: logger})
	case constants.FunctionCreateInputJson:
		return installconfig.New(installconfig.Config{FieldLogger: logger})
	}
	return nil, trace.NotFound("unknown function %q", name)
}

// NewCalculator returns a calculator with the named policy.
// If lookup is nil, instance types are looked up in EC2
func NewCalculator(policyName string, lookup inventory.Lookup, logger logrus.FieldLogger) (*sizing.Calculator, error) {
	policy, err := sizing.GetPolicy(policyName)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if lookup == nil {
		ec2, err := inventory.NewEC2(inventory.EC2Config{FieldLogger: logger})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		lookup = ec2
	}
	return sizing.New(sizing.Config{
		Policy:      policy,
		Lookup:      lookup,
		FieldLogger: logger,
	})
}
