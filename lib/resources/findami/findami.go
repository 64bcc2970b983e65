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

// Package findami implements the custom resource that looks up
// a machine image by name.
package findami

import (
	"context"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/resources"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Resource property names
const (
	PropertyImageName          = "ImageName"
	PropertyArchitecture       = "Architecture"
	PropertyVirtualizationType = "VirtualizationType"
	PropertyOwners             = "Owners"
)

// AttributeImageID is the name of the attribute with the image ID
const AttributeImageID = "ImageId"

// Config defines the resource configuration
type Config struct {
	// NewClient creates EC2 clients
	NewClient awsapi.NewEC2Func
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.NewClient == nil {
		r.NewClient = awsapi.NewEC2
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "findami")
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

// Resource resolves the image ID on Create
type Resource struct {
	Config
}

// Create looks up the image.
// If no image matches, the image ID is empty
func (r *Resource) Create(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	query, err := newQuery(req.Properties)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	client, err := r.NewClient(query.region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	output, err := client.DescribeImagesWithContext(ctx, &ec2.DescribeImagesInput{
		ExecutableUsers: aws.StringSlice(defaults.ImageExecutableUsers),
		Filters: []*ec2.Filter{
			{Name: aws.String("name"), Values: aws.StringSlice([]string{query.name})},
			{Name: aws.String("state"), Values: aws.StringSlice([]string{ec2.ImageStateAvailable})},
			{Name: aws.String("architecture"), Values: aws.StringSlice([]string{query.architecture})},
			{Name: aws.String("virtualization-type"), Values: aws.StringSlice([]string{query.virtualizationType})},
		},
		Owners: aws.StringSlice(query.owners),
	})
	if err != nil {
		return nil, awsapi.ConvertError(err)
	}
	var imageID string
	if len(output.Images) != 0 {
		imageID = aws.StringValue(output.Images[0].ImageId)
	}
	logger := r.WithFields(logrus.Fields{
		"region": query.region,
		"name":   query.name,
		"images": len(output.Images),
	})
	if imageID == "" {
		logger.Warn("No image found.")
	} else {
		logger.WithField("image", imageID).Info("Found image.")
	}
	return &cfn.Response{
		PhysicalResourceID: imageID,
		Data:               map[string]interface{}{AttributeImageID: imageID},
	}, nil
}

// Update returns the image found on Create
func (r *Resource) Update(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return echo(req), nil
}

// Delete returns the image found on Create
func (r *Resource) Delete(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return echo(req), nil
}

func echo(req cfn.Request) *cfn.Response {
	return &cfn.Response{
		PhysicalResourceID: req.PhysicalResourceID,
		Data:               map[string]interface{}{AttributeImageID: req.PhysicalResourceID},
	}
}

type query struct {
	region             string
	name               string
	architecture       string
	virtualizationType string
	owners             []string
}

func newQuery(props cfn.Properties) (*query, error) {
	var q query
	var err error
	if q.region, err = props.String(resources.PropertyRegionName); err != nil {
		return nil, trace.Wrap(err)
	}
	if q.name, err = props.String(PropertyImageName); err != nil {
		return nil, trace.Wrap(err)
	}
	if q.architecture, err = props.String(PropertyArchitecture); err != nil {
		return nil, trace.Wrap(err)
	}
	if q.virtualizationType, err = props.String(PropertyVirtualizationType); err != nil {
		return nil, trace.Wrap(err)
	}
	if q.owners, err = props.StringSlice(PropertyOwners); err != nil {
		return nil, trace.Wrap(err)
	}
	return &q, nil
}
