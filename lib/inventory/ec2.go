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

package inventory

import (
	"context"

	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// EC2Config defines the configuration of the EC2 backed lookup
type EC2Config struct {
	// NewClient creates EC2 clients for a region
	NewClient awsapi.NewEC2Func
	// FieldLogger is used for logging
	log.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *EC2Config) CheckAndSetDefaults() error {
	if r.NewClient == nil {
		r.NewClient = awsapi.NewEC2
	}
	if r.FieldLogger == nil {
		r.FieldLogger = log.WithField(trace.Component, "inventory")
	}
	return nil
}

// NewEC2 returns a new lookup that queries EC2 instance type offerings
func NewEC2(config EC2Config) (*EC2, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &EC2{EC2Config: config}, nil
}

// EC2 looks up instance types with the EC2 API
type EC2 struct {
	EC2Config
}

// Lookup returns the profiles of the HVM instance types from the specified list
// that are offered in the given region
func (r *EC2) Lookup(ctx context.Context, region string, instanceTypes []string) ([]InstanceProfile, error) {
	logger := r.WithField("region", region)
	client, err := r.NewClient(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	offered, err := r.describeOfferings(ctx, client, region, instanceTypes)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	logger.WithField("offered", offered).Debug("Instance type offerings.")
	if len(offered) == 0 {
		return nil, nil
	}
	profiles, err := r.describeTypes(ctx, client, offered)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	logger.WithField("profiles", profiles).Debug("Instance type profiles.")
	return profiles, nil
}

func (r *EC2) describeOfferings(ctx context.Context, client awsapi.EC2, region string, instanceTypes []string) (offered []string, err error) {
	input := &ec2.DescribeInstanceTypeOfferingsInput{
		LocationType: aws.String(ec2.LocationTypeRegion),
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("location"),
				Values: aws.StringSlice([]string{region}),
			},
			{
				Name:   aws.String("instance-type"),
				Values: aws.StringSlice(instanceTypes),
			},
		},
	}
	for {
		output, err := client.DescribeInstanceTypeOfferingsWithContext(ctx, input)
		if err != nil {
			return nil, awsapi.ConvertError(err)
		}
		for _, offering := range output.InstanceTypeOfferings {
			offered = append(offered, aws.StringValue(offering.InstanceType))
		}
		if aws.StringValue(output.NextToken) == "" {
			return offered, nil
		}
		input.NextToken = output.NextToken
	}
}

func (r *EC2) describeTypes(ctx context.Context, client awsapi.EC2, instanceTypes []string) (profiles []InstanceProfile, err error) {
	input := &ec2.DescribeInstanceTypesInput{
		InstanceTypes: aws.StringSlice(instanceTypes),
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("supported-virtualization-type"),
				Values: aws.StringSlice([]string{defaults.VirtualizationType}),
			},
		},
	}
	for {
		output, err := client.DescribeInstanceTypesWithContext(ctx, input)
		if err != nil {
			return nil, awsapi.ConvertError(err)
		}
		for _, info := range output.InstanceTypes {
			profiles = append(profiles, newProfile(info))
		}
		if aws.StringValue(output.NextToken) == "" {
			return profiles, nil
		}
		input.NextToken = output.NextToken
	}
}

func newProfile(info *ec2.InstanceTypeInfo) InstanceProfile {
	profile := InstanceProfile{
		Name: aws.StringValue(info.InstanceType),
	}
	if info.VCpuInfo != nil {
		profile.VCPU = int(aws.Int64Value(info.VCpuInfo.DefaultVCpus))
	}
	if info.MemoryInfo != nil {
		profile.RAMGiB = int(aws.Int64Value(info.MemoryInfo.SizeInMiB) / 1024)
	}
	if info.GpuInfo != nil && len(info.GpuInfo.Gpus) != 0 {
		profile.HasGPU = true
		if memory := info.GpuInfo.Gpus[0].MemoryInfo; memory != nil {
			profile.GPURAMGiB = int(aws.Int64Value(memory.SizeInMiB) / 1024)
		}
	}
	return profile
}
