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
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/sizing"
	"github.com/gravitational/provisioner/tool/common"

	awscfn "github.com/aws/aws-lambda-go/cfn"
	"github.com/gravitational/trace"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/check.v1"
)

func TestCLI(t *testing.T) { check.TestingT(t) }

type CLISuite struct {
	out *bytes.Buffer
}

var _ = check.Suite(&CLISuite{})

func (s *CLISuite) SetUpTest(c *check.C) {
	s.out = &bytes.Buffer{}
	common.Stdout = s.out
}

func (s *CLISuite) TestSizeOffline(c *check.C) {
	err := size(context.TODO(), sizeConfig{
		region:    "us-east-1",
		multiNode: true,
		modules:   []string{"task_mining"},
		policy:    "aggregate",
		offline:   true,
		output:    constants.EncodingJSON,
	})
	c.Assert(err, check.IsNil)
	var result sizing.Result
	c.Assert(json.Unmarshal(s.out.Bytes(), &result), check.IsNil)
	c.Assert(result.Policy, check.Equals, "aggregate")
	c.Assert(result.Tier, check.Equals, sizing.MultiNode)
	c.Assert(result.ServerCount, check.Equals, 3)
	c.Assert(result.TaskMiningInstanceType(), check.Equals, "c5a.8xlarge")
}

func (s *CLISuite) TestSizeText(c *check.C) {
	err := size(context.TODO(), sizeConfig{
		region:  "us-east-1",
		robots:  true,
		policy:  "aggregate",
		offline: true,
		output:  constants.EncodingText,
	})
	c.Assert(err, check.IsNil)
	output := s.out.String()
	c.Assert(strings.Contains(output, "m5.4xlarge"), check.Equals, true, check.Commentf("%s", output))
	c.Assert(strings.Contains(output, "m5.2xlarge"), check.Equals, true, check.Commentf("%s", output))
	c.Assert(strings.Contains(output, "2.0 TiB"), check.Equals, true, check.Commentf("%s", output))
	c.Assert(strings.Contains(output, "[Installation]"), check.Equals, true, check.Commentf("%s", output))
	c.Assert(strings.Contains(output, "[Nodes]"), check.Equals, true, check.Commentf("%s", output))
}

func (s *CLISuite) TestSizeUpdate(c *check.C) {
	err := size(context.TODO(), sizeConfig{
		region:  "us-east-1",
		modules: []string{"business_apps"},
		update:  true,
		policy:  "legacy",
		offline: true,
		output:  constants.EncodingJSON,
	})
	c.Assert(err, check.IsNil)
	var result sizing.Result
	c.Assert(json.Unmarshal(s.out.Bytes(), &result), check.IsNil)
	c.Assert(result.InstanceType(), check.Equals, "c5.12xlarge")
	c.Assert(result.Demand, check.DeepEquals, sizing.Demand{CPU: 36, RAM: 96})
}

func (s *CLISuite) TestSizeUnknownModule(c *check.C) {
	err := size(context.TODO(), sizeConfig{
		region:  "us-east-1",
		modules: []string{"spreadsheets"},
		policy:  "aggregate",
		offline: true,
		output:  constants.EncodingText,
	})
	c.Assert(sizing.IsLookupError(err), check.Equals, true, check.Commentf("%v", err))
}

func (s *CLISuite) TestListPolicies(c *check.C) {
	c.Assert(listPolicies(constants.EncodingJSON), check.IsNil)
	var infos []policyInfo
	c.Assert(json.Unmarshal(s.out.Bytes(), &infos), check.IsNil)
	c.Assert(infos, check.HasLen, 2)
	c.Assert(infos[0].Name, check.Equals, "aggregate")
	c.Assert(infos[0].Default, check.Equals, true)
	c.Assert(infos[0].Roles, check.DeepEquals, []string{"gpu", "robots", "task_mining"})
	c.Assert(infos[1].Name, check.Equals, "legacy")
	c.Assert(infos[1].Kind, check.Equals, sizing.KindLegacy)
}

func (s *CLISuite) TestDecodeEvent(c *check.C) {
	event, err := decodeEvent(strings.NewReader(`{
		"RequestType": "Delete",
		"RequestId": "r-1",
		"PhysicalResourceId": "ami-1",
		"ResourceProperties": {"RegionName": "us-east-1"}
	}`))
	c.Assert(err, check.IsNil)
	c.Assert(event.RequestType, check.Equals, awscfn.RequestDelete)
	c.Assert(event.PhysicalResourceID, check.Equals, "ami-1")

	_, err = decodeEvent(strings.NewReader(`{"RequestId": "r-1"}`))
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *CLISuite) TestInvokeOffline(c *check.C) {
	event := `{
		"RequestType": "Delete",
		"RequestId": "r-1",
		"LogicalResourceId": "Size",
		"PhysicalResourceId": "size-1",
		"ResourceProperties": {}
	}`
	path := filepath.Join(c.MkDir(), "event.json")
	c.Assert(ioutil.WriteFile(path, []byte(event), 0600), check.IsNil)
	err := invoke(context.TODO(), invokeConfig{
		function:  constants.FunctionComputeResourceSize,
		eventFile: path,
		policy:    "aggregate",
		offline:   true,
		timeout:   time.Minute,
	})
	c.Assert(err, check.IsNil)
	c.Assert(strings.Contains(s.out.String(), `"Action": "DELETE"`), check.Equals, true, check.Commentf("%s", s.out.String()))
}

func (s *CLISuite) TestRegisterCommands(c *check.C) {
	app := RegisterCommands(kingpin.New("provisioner", ""))
	cmd, err := app.Parse([]string{"size", "--offline", "-m", "insights", "-m", "ai_center", "--multi-node", "-o", "yaml"})
	c.Assert(err, check.IsNil)
	c.Assert(cmd, check.Equals, app.SizeCmd.FullCommand())
	c.Assert(*app.SizeCmd.Modules, check.DeepEquals, []string{"insights", "ai_center"})
	c.Assert(*app.SizeCmd.Output, check.Equals, constants.EncodingYAML)
	c.Assert(*app.SizeCmd.Region, check.Not(check.Equals), "")

	_, err = app.Parse([]string{"invoke", "DeleteEverything"})
	c.Assert(err, check.NotNil)
}
