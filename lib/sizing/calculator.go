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

package sizing

import (
	"context"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Config defines the calculator configuration
type Config struct {
	// Policy is the sizing policy
	Policy Policy
	// Lookup resolves instance types
	Lookup inventory.Lookup
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.Policy == nil {
		return trace.BadParameter("missing Policy")
	}
	if r.Lookup == nil {
		return trace.BadParameter("missing Lookup")
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "sizing")
	}
	return nil
}

// New returns a new calculator
func New(config Config) (*Calculator, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Calculator{Config: config}, nil
}

// Calculator sizes installations with the configured policy
type Calculator struct {
	Config
}

// Size sizes the installation described by req
func (r *Calculator) Size(ctx context.Context, req Request) (*Result, error) {
	if err := req.Check(); err != nil {
		return nil, trace.Wrap(err)
	}
	logger := r.WithFields(logrus.Fields{
		"policy":  r.Policy.Name(),
		"tier":    req.Tier,
		"region":  req.Region,
		"modules": req.Modules.List(),
		"update":  req.Update,
	})
	logger.Info("Sizing installation.")
	result, err := r.Policy.Size(ctx, r.Lookup, req)
	if err != nil {
		logger.WithError(err).Warn("Failed to size installation.")
		return nil, trace.Wrap(err)
	}
	logger.WithFields(logrus.Fields{
		"class":      result.Class,
		"demand":     result.BufferedDemand.String(),
		"instance":   result.InstanceType(),
		"servers":    result.ServerCount,
		"agents":     result.AgentCount,
		"task-miner": result.TaskMiningInstanceType(),
		"gpu":        result.GPUInstanceType(),
		"robot":      result.RobotInstanceType(),
		"disk":       result.DiskSizeGiB,
	}).Info("Sized installation.")
	return result, nil
}
