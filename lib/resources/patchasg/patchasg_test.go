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

package patchasg

import (
	"context"
	"testing"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestPatchAsg(t *testing.T) { check.TestingT(t) }

type PatchAsgSuite struct {
	asg      *mockAutoScaling
	regions  []string
	resource *Resource
}

var _ = check.Suite(&PatchAsgSuite{})

func (s *PatchAsgSuite) SetUpTest(c *check.C) {
	s.asg = &mockAutoScaling{}
	s.regions = nil
	var err error
	s.resource, err = New(Config{
		NewClient: func(region string) (awsapi.AutoScaling, error) {
			s.regions = append(s.regions, region)
			return s.asg, nil
		},
	})
	c.Assert(err, check.IsNil)
}

func (s *PatchAsgSuite) TestCreateSuspends(c *check.C) {
	response, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties("workers")})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "workers")
	c.Assert(s.asg.calls, check.DeepEquals, []call{
		{op: "suspend", group: "workers", processes: []string{"Terminate", "Launch"}},
	})
	c.Assert(s.regions, check.DeepEquals, []string{"us-west-2"})
}

func (s *PatchAsgSuite) TestUpdateKeepsPhysicalID(c *check.C) {
	response, err := s.resource.Update(context.TODO(), cfn.Request{
		PhysicalResourceID: "workers",
		Properties:         properties("workers-v2"),
	})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "workers")
	c.Assert(s.asg.calls, check.DeepEquals, []call{
		{op: "suspend", group: "workers-v2", processes: []string{"Terminate", "Launch"}},
	})
}

func (s *PatchAsgSuite) TestDeleteResumes(c *check.C) {
	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		PhysicalResourceID: "workers",
		Properties:         properties("workers"),
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.asg.calls, check.DeepEquals, []call{
		{op: "resume", group: "workers", processes: []string{"Terminate", "Launch"}},
	})
}

func (s *PatchAsgSuite) TestScalingInProgress(c *check.C) {
	s.asg.err = awserr.New(autoscaling.ErrCodeScalingActivityInProgressFault, "busy", nil)
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties("workers")})
	c.Assert(trace.IsCompareFailed(err), check.Equals, true, check.Commentf("%v", err))
}

func (s *PatchAsgSuite) TestMissingGroup(c *check.C) {
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: cfn.Properties{"RegionName": "us-west-2"}})
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
	c.Assert(s.asg.calls, check.HasLen, 0)
}

func properties(group string) cfn.Properties {
	return cfn.Properties{
		"AutoScalingGroupName": group,
		"RegionName":           "us-west-2",
	}
}

type call struct {
	op        string
	group     string
	processes []string
}

type mockAutoScaling struct {
	calls []call
	err   error
}

func (r *mockAutoScaling) SuspendProcessesWithContext(ctx aws.Context, input *autoscaling.ScalingProcessQuery, opts ...request.Option) (*autoscaling.SuspendProcessesOutput, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.calls = append(r.calls, newCall("suspend", input))
	return &autoscaling.SuspendProcessesOutput{}, nil
}

func (r *mockAutoScaling) ResumeProcessesWithContext(ctx aws.Context, input *autoscaling.ScalingProcessQuery, opts ...request.Option) (*autoscaling.ResumeProcessesOutput, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.calls = append(r.calls, newCall("resume", input))
	return &autoscaling.ResumeProcessesOutput{}, nil
}

func newCall(op string, input *autoscaling.ScalingProcessQuery) call {
	return call{
		op:        op,
		group:     aws.StringValue(input.AutoScalingGroupName),
		processes: aws.StringValueSlice(input.ScalingProcesses),
	}
}
