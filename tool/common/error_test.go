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

package common

import (
	"bytes"
	"context"
	"testing"

	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestCommon(t *testing.T) { check.TestingT(t) }

type CommonSuite struct{}

var _ = check.Suite(&CommonSuite{})

func (s *CommonSuite) TestMissingCredentialsHint(c *check.C) {
	err := lookup(c, awserr.New("NoCredentialProviders", "no valid providers in chain", nil))
	err = ProcessRunError(trace.Wrap(err))
	c.Assert(trace.IsAccessDenied(err), check.Equals, true)
	c.Assert(trace.UserMessage(err), check.Matches, "(?s).*--offline.*")
}

func (s *CommonSuite) TestOtherErrorsUnchanged(c *check.C) {
	err := lookup(c, awserr.New("UnauthorizedOperation", "not allowed", nil))
	c.Assert(ProcessRunError(err), check.Equals, err)
	c.Assert(trace.UserMessage(ProcessRunError(err)), check.Not(check.Matches), "(?s).*--offline.*")
	c.Assert(ProcessRunError(nil), check.IsNil)
}

func (s *CommonSuite) TestPrintStructured(c *check.C) {
	var buf bytes.Buffer
	value := map[string]int{"servers": 3}
	c.Assert(PrintStructured(&buf, value, constants.EncodingJSON), check.IsNil)
	c.Assert(buf.String(), check.Equals, "{\n    \"servers\": 3\n}\n")

	buf.Reset()
	c.Assert(PrintStructured(&buf, value, constants.EncodingYAML), check.IsNil)
	c.Assert(buf.String(), check.Equals, "servers: 3\n")

	err := PrintStructured(&buf, value, constants.EncodingText)
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *CommonSuite) TestPrintHeader(c *check.C) {
	var buf bytes.Buffer
	PrintHeader(&buf, "Nodes")
	c.Assert(buf.String(), check.Equals, "\n[Nodes]\n-------\n")
}

// lookup runs an instance type lookup against a client failing with err
func lookup(c *check.C, err error) error {
	instances, lookupErr := inventory.NewEC2(inventory.EC2Config{
		NewClient: func(string) (awsapi.EC2, error) {
			return &failingEC2{err: err}, nil
		},
	})
	c.Assert(lookupErr, check.IsNil)
	_, lookupErr = instances.Lookup(context.TODO(), "us-east-1", []string{"m5.4xlarge"})
	c.Assert(lookupErr, check.NotNil)
	return lookupErr
}

type failingEC2 struct {
	awsapi.EC2
	err error
}

func (m *failingEC2) DescribeInstanceTypeOfferingsWithContext(aws.Context, *ec2.DescribeInstanceTypeOfferingsInput, ...request.Option) (*ec2.DescribeInstanceTypeOfferingsOutput, error) {
	return nil, m.err
}
