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

// Package patchasg implements the custom resource that keeps an auto scaling
// group from replacing instances while the installation is running.
package patchasg

import (
	"context"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/resources"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// PropertyAutoScalingGroupName names the auto scaling group
const PropertyAutoScalingGroupName = "AutoScalingGroupName"

// Config defines the resource configuration
type Config struct {
	// NewClient creates auto scaling clients
	NewClient awsapi.NewAutoScalingFunc
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.NewClient == nil {
		r.NewClient = awsapi.NewAutoScaling
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "patchasg")
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

// Resource suspends the scaling processes of the group
// for the lifetime of the resource
type Resource struct {
	Config
}

// Create suspends the scaling processes.
// The group name becomes the physical resource ID
func (r *Resource) Create(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	group, err := r.suspend(ctx, req.Properties)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfn.Response{PhysicalResourceID: group}, nil
}

// Update suspends the scaling processes of the group named by the new properties
func (r *Resource) Update(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	if _, err := r.suspend(ctx, req.Properties); err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfn.Response{PhysicalResourceID: req.PhysicalResourceID}, nil
}

// Delete resumes the scaling processes
func (r *Resource) Delete(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	group, region, err := groupAndRegion(req.Properties)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	client, err := r.NewClient(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	_, err = client.ResumeProcessesWithContext(ctx, query(group))
	if err != nil {
		return nil, awsapi.ConvertError(err)
	}
	r.WithField("group", group).Info("Resumed scaling processes.")
	return &cfn.Response{PhysicalResourceID: req.PhysicalResourceID}, nil
}

func (r *Resource) suspend(ctx context.Context, props cfn.Properties) (string, error) {
	group, region, err := groupAndRegion(props)
	if err != nil {
		return "", trace.Wrap(err)
	}
	client, err := r.NewClient(region)
	if err != nil {
		return "", trace.Wrap(err)
	}
	_, err = client.SuspendProcessesWithContext(ctx, query(group))
	if err != nil {
		return "", awsapi.ConvertError(err)
	}
	r.WithFields(logrus.Fields{
		"group":     group,
		"processes": defaults.ScalingProcesses,
	}).Info("Suspended scaling processes.")
	return group, nil
}

func query(group string) *autoscaling.ScalingProcessQuery {
	return &autoscaling.ScalingProcessQuery{
		AutoScalingGroupName: aws.String(group),
		ScalingProcesses:     aws.StringSlice(defaults.ScalingProcesses),
	}
}

func groupAndRegion(props cfn.Properties) (group, region string, err error) {
	group, err = props.String(PropertyAutoScalingGroupName)
	if err != nil {
		return "", "", trace.Wrap(err)
	}
	region, err = props.String(resources.PropertyRegionName)
	if err != nil {
		return "", "", trace.Wrap(err)
	}
	return group, region, nil
}
