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

package findami

import (
	"context"
	"testing"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestFindAmi(t *testing.T) { check.TestingT(t) }

type FindAmiSuite struct {
	ec2      *mockEC2
	region   string
	resource *Resource
}

var _ = check.Suite(&FindAmiSuite{})

func (s *FindAmiSuite) SetUpTest(c *check.C) {
	s.ec2 = &mockEC2{}
	s.region = ""
	var err error
	s.resource, err = New(Config{
		NewClient: func(region string) (awsapi.EC2, error) {
			s.region = region
			return s.ec2, nil
		},
	})
	c.Assert(err, check.IsNil)
}

func (s *FindAmiSuite) TestCreate(c *check.C) {
	s.ec2.images = []*ec2.Image{
		{ImageId: aws.String("ami-1")},
		{ImageId: aws.String("ami-2")},
	}
	response, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties()})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "ami-1")
	c.Assert(response.Data, check.DeepEquals, map[string]interface{}{AttributeImageID: "ami-1"})
	c.Assert(s.region, check.Equals, "eu-west-1")

	input := s.ec2.input
	c.Assert(aws.StringValueSlice(input.ExecutableUsers), check.DeepEquals, []string{"all"})
	c.Assert(aws.StringValueSlice(input.Owners), check.DeepEquals, []string{"123456789012"})
	filters := make(map[string][]string)
	for _, filter := range input.Filters {
		filters[aws.StringValue(filter.Name)] = aws.StringValueSlice(filter.Values)
	}
	c.Assert(filters, check.DeepEquals, map[string][]string{
		"name":                {"centos-8-*"},
		"state":               {"available"},
		"architecture":        {"x86_64"},
		"virtualization-type": {"hvm"},
	})
}

func (s *FindAmiSuite) TestCreateNoImages(c *check.C) {
	response, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties()})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "")
	c.Assert(response.Data, check.DeepEquals, map[string]interface{}{AttributeImageID: ""})
}

func (s *FindAmiSuite) TestCreateFails(c *check.C) {
	s.ec2.err = awserr.New("UnauthorizedOperation", "not allowed", nil)
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties()})
	c.Assert(trace.IsAccessDenied(err), check.Equals, true, check.Commentf("%v", err))
}

func (s *FindAmiSuite) TestUpdateAndDeleteEcho(c *check.C) {
	req := cfn.Request{PhysicalResourceID: "ami-7", Properties: properties()}
	response, err := s.resource.Update(context.TODO(), req)
	c.Assert(err, check.IsNil)
	c.Assert(response.Data, check.DeepEquals, map[string]interface{}{AttributeImageID: "ami-7"})
	response, err = s.resource.Delete(context.TODO(), req)
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "ami-7")
	c.Assert(s.ec2.input, check.IsNil)
}

func properties() cfn.Properties {
	return cfn.Properties{
		"RegionName":         "eu-west-1",
		"ImageName":          "centos-8-*",
		"Architecture":       "x86_64",
		"VirtualizationType": "hvm",
		"Owners":             "123456789012",
	}
}

type mockEC2 struct {
	awsapi.EC2
	images []*ec2.Image
	err    error
	input  *ec2.DescribeImagesInput
}

func (r *mockEC2) DescribeImagesWithContext(ctx aws.Context, input *ec2.DescribeImagesInput, opts ...request.Option) (*ec2.DescribeImagesOutput, error) {
	r.input = input
	if r.err != nil {
		return nil, r.err
	}
	return &ec2.DescribeImagesOutput{Images: r.images}, nil
}
