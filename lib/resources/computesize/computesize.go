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

// Package computesize implements the custom resource that selects
// instance types, node counts and disk size of the installation.
package computesize

import (
	"context"

	"github.com/gravitational/provisioner/lib/cfn"
	"github.com/gravitational/provisioner/lib/resources"
	"github.com/gravitational/provisioner/lib/sizing"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Resource attribute names
const (
	AttributeServerDiskSize      = "ServerDiskSize"
	AttributeServerInstanceCount = "ServerInstanceCount"
	AttributeAgentInstanceCount  = "AgentInstanceCount"
	AttributeInstanceType        = "InstanceType"
	AttributeTmInstanceType      = "TmInstanceType"
	AttributeGpuInstanceType     = "GpuInstanceType"
	AttributeRobotInstanceType   = "RobotInstanceType"
)

// Config defines the resource configuration
type Config struct {
	// Calculator sizes the installation
	Calculator *sizing.Calculator
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.Calculator == nil {
		return trace.BadParameter("missing Calculator")
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "computesize")
	}
	return nil
}

// New returns a new resource
func New(config Config) (*Resource, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Resource{Config: config}, nil
}

// Resource sizes the installation on Create and Update
type Resource struct {
	Config
}

// Create sizes the installation
func (r *Resource) Create(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return r.size(ctx, req, false)
}

// Update sizes the installation with the new properties
func (r *Resource) Update(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return r.size(ctx, req, true)
}

// Delete is a no-op
func (r *Resource) Delete(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return &cfn.Response{}, nil
}

func (r *Resource) size(ctx context.Context, req cfn.Request, update bool) (*cfn.Response, error) {
	request, err := NewRequest(req.Properties)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	request.Update = update
	result, err := r.Calculator.Size(ctx, *request)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfn.Response{
		Data: Attributes(*result),
	}, nil
}

// NewRequest returns the sizing request for the resource properties.
//
// Module flags missing from the properties are left out of the request
// so sizing reports them
func NewRequest(properties cfn.Properties) (*sizing.Request, error) {
	region, err := properties.String(resources.PropertyRegionName)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	topology, err := properties.String(resources.PropertyMultiNode)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	modules := make(sizing.EnabledModules)
	for property, module := range resources.ModuleProperties {
		if _, ok := properties[property]; !ok {
			continue
		}
		modules[module] = properties.OptionalBool(property)
	}
	return &sizing.Request{
		Tier:       sizing.ParseTier(topology),
		Modules:    modules,
		Region:     region,
		TaskMining: modules[sizing.TaskMining],
		GPU:        properties.OptionalBool(resources.PropertyAddGpu),
		Robots:     properties.OptionalBool(resources.PropertyAddRobots),
	}, nil
}

// Attributes returns the resource attributes of the sizing result
func Attributes(result sizing.Result) map[string]interface{} {
	return map[string]interface{}{
		AttributeServerDiskSize:      result.DiskSizeGiB,
		AttributeServerInstanceCount: result.ServerCount,
		AttributeAgentInstanceCount:  result.AgentCount,
		AttributeInstanceType:        result.InstanceType(),
		AttributeTmInstanceType:      result.TaskMiningInstanceType(),
		AttributeGpuInstanceType:     result.GPUInstanceType(),
		AttributeRobotInstanceType:   result.RobotInstanceType(),
	}
}
