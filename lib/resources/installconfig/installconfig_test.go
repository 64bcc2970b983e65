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

package installconfig

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/testutils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestInstallConfig(t *testing.T) { check.TestingT(t) }

type InstallConfigSuite struct {
	sm       *mockSecretsManager
	region   string
	resource *Resource
}

var _ = check.Suite(&InstallConfigSuite{})

func (s *InstallConfigSuite) SetUpTest(c *check.C) {
	s.sm = newMockSecretsManager(map[string]string{
		"arn:platform":    `{"username": "admin", "password": "platform-pw"}`,
		"arn:argocd":      `{"username": "argocd", "password": "argo-pw"}`,
		"arn:argocd-user": `{"username": "viewer", "password": "viewer-pw"}`,
		"arn:rds":         `{"username": "sa", "password": "p'a}ss"}`,
	})
	var err error
	s.resource, err = New(Config{
		NewClient: func(region string) (awsapi.SecretsManager, error) {
			s.region = region
			return s.sm, nil
		},
		Generate: func() (*Generated, error) {
			return &Generated{RKEToken: "token", TokenSigningPassword: "signing"}, nil
		},
	})
	c.Assert(err, check.IsNil)
}

func (s *InstallConfigSuite) TestCreateMultiNode(c *check.C) {
	props := properties()
	props["TaskMining"] = "true"
	props["AddGpu"] = "True"
	props["DocumentUnderstanding"] = "true"
	response, err := s.resource.Create(context.TODO(), cfn.Request{Properties: props})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "arn:target")
	c.Assert(s.region, check.Equals, "us-east-2")
	c.Assert(s.sm.calls, check.DeepEquals, []string{
		"get arn:platform",
		"put arn:org",
		"get arn:argocd",
		"get arn:argocd-user",
		"get arn:rds",
		"put arn:target",
	})

	var org Credentials
	c.Assert(json.Unmarshal([]byte(s.sm.secrets["arn:org"]), &org), check.IsNil)
	c.Assert(org, check.Equals, Credentials{Username: "orgadmin", Password: "platform-pw"})

	doc := s.document(c)
	c.Assert(doc["profile"], check.Equals, "ha")
	c.Assert(doc["zone_resilience"], check.Equals, true)
	c.Assert(doc["rke_token"], check.Equals, "token")
	c.Assert(doc["fixed_rke_address"], check.Equals, "internal-lb.elb.amazonaws.com")
	c.Assert(doc["admin_username"], check.Equals, "admin")
	c.Assert(doc["admin_password"], check.Equals, "platform-pw")
	// 3 servers + 2 agents + GPU + task mining
	c.Assert(doc["initial_number_of_instances"], check.Equals, float64(7))
	testutils.DeepCompare(c, doc["fabric"], map[string]interface{}{
		"argocd_admin_password": "argo-pw",
		"argocd_user_password":  "viewer-pw",
	})
	testutils.DeepCompare(c, doc["identity_certificate"], map[string]interface{}{
		"token_signing_cert_file":  "/root/token_signing_certificate.pfx",
		"token_signing_cert_pass":  "signing",
		"ldap_cert_authority_file": "",
	})
	testutils.DeepCompare(c, doc["task_mining"], map[string]interface{}{"enabled": true})
	testutils.DeepCompare(c, doc["insights"], map[string]interface{}{"enabled": false})
	testutils.DeepCompare(c, doc["documentunderstanding"], map[string]interface{}{
		"enabled": true,
		"handwriting": map[string]interface{}{
			"enabled":         "true",
			"max_cpu_per_pod": float64(2),
		},
	})
}

func (s *InstallConfigSuite) TestSingleNodeProfile(c *check.C) {
	props := properties()
	props["MultiNode"] = "Single Node"
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: props})
	c.Assert(err, check.IsNil)
	doc := s.document(c)
	c.Assert(doc["profile"], check.Equals, "default")
	_, ok := doc["zone_resilience"]
	c.Assert(ok, check.Equals, false)
	c.Assert(doc["initial_number_of_instances"], check.Equals, float64(5))
}

func (s *InstallConfigSuite) TestZoneResilienceNeedsThreeSubnets(c *check.C) {
	props := properties()
	props["PrivateSubnetIDs"] = "subnet-1,subnet-2"
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: props})
	c.Assert(err, check.IsNil)
	c.Assert(s.document(c)["zone_resilience"], check.Equals, false)
}

func (s *InstallConfigSuite) TestExtraConfigKeys(c *check.C) {
	props := properties()
	props["ExtraConfigKeys"] = `{"profile": "custom", "initial_number_of_instances": 42, "telemetry": {"enabled": false}}`
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: props})
	c.Assert(err, check.IsNil)
	doc := s.document(c)
	c.Assert(doc["profile"], check.Equals, "custom")
	c.Assert(doc["initial_number_of_instances"], check.Equals, float64(5))
	testutils.DeepCompare(c, doc["telemetry"], map[string]interface{}{"enabled": false})
}

func (s *InstallConfigSuite) TestInvalidExtraConfigKeys(c *check.C) {
	props := properties()
	props["ExtraConfigKeys"] = `{"profile":`
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: props})
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
	c.Assert(s.sm.calls, check.HasLen, 0)
}

func (s *InstallConfigSuite) TestConnectionStrings(c *check.C) {
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties()})
	c.Assert(err, check.IsNil)
	doc := s.document(c)
	c.Assert(doc["sql_connection_string_template"], check.Equals,
		"Server=tcp:db.example.com,1433;Initial Catalog=DB_NAME_PLACEHOLDER;Persist Security Info=False;"+
			"User Id=sa;Password='p''a}ss';MultipleActiveResultSets=False;Encrypt=True;"+
			"TrustServerCertificate=True;Connection Timeout=30;Max Pool Size=100;")
	c.Assert(doc["sql_connection_string_template_jdbc"], check.Equals,
		"jdbc:sqlserver://db.example.com;database=DB_NAME_PLACEHOLDER;user=sa;password={p'a}}ss}")
	c.Assert(doc["sql_connection_string_template_odbc"], check.Equals,
		"SERVER=db.example.com;DATABASE=DB_NAME_PLACEHOLDER;DRIVER={ODBC Driver 17 for SQL Server};UID=sa;PWD={p'a}}ss}")
	testutils.DeepCompare(c, doc["sql"], map[string]interface{}{"create_db": true})
}

func (s *InstallConfigSuite) TestUpdateKeepsPhysicalID(c *check.C) {
	response, err := s.resource.Update(context.TODO(), cfn.Request{
		PhysicalResourceID: "arn:previous",
		Properties:         properties(),
	})
	c.Assert(err, check.IsNil)
	c.Assert(response.PhysicalResourceID, check.Equals, "arn:previous")
	c.Assert(s.sm.secrets["arn:target"], check.Not(check.Equals), "")
}

func (s *InstallConfigSuite) TestDeleteIsNoop(c *check.C) {
	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		PhysicalResourceID: "arn:target",
		Properties:         properties(),
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.sm.calls, check.HasLen, 0)
}

func (s *InstallConfigSuite) TestMissingSecret(c *check.C) {
	delete(s.sm.secrets, "arn:argocd")
	_, err := s.resource.Create(context.TODO(), cfn.Request{Properties: properties()})
	c.Assert(trace.IsNotFound(err), check.Equals, true, check.Commentf("%v", err))
	_, ok := s.sm.secrets["arn:target"]
	c.Assert(ok, check.Equals, false)
}

func (s *InstallConfigSuite) TestGenerate(c *check.C) {
	generated, err := Generate()
	c.Assert(err, check.IsNil)
	c.Assert(generated.TokenSigningPassword, check.HasLen, 20)
	c.Assert(generated.RKEToken, check.Matches, `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
}

func (s *InstallConfigSuite) document(c *check.C) map[string]interface{} {
	var doc map[string]interface{}
	c.Assert(json.Unmarshal([]byte(s.sm.secrets["arn:target"]), &doc), check.IsNil)
	return doc
}

func properties() cfn.Properties {
	return cfn.Properties{
		"RegionName":                    "us-east-2",
		"TargetSecretArn":               "arn:target",
		"RDSPasswordSecretArn":          "arn:rds",
		"PlatformSecretArn":             "arn:platform",
		"OrgSecretArn":                  "arn:org",
		"ArgoCdSecretArn":               "arn:argocd",
		"ArgoCdUserSecretArn":           "arn:argocd-user",
		"Fqdn":                          "automation.example.com",
		"RDSDBInstanceEndpointAddress":  "db.example.com",
		"MultiNode":                     "Multi Node",
		"KubeLoadBalancerDns":           "internal-lb.elb.amazonaws.com",
		"ServerInstanceCount":           "3",
		"AgentInstanceCount":            "2",
		"PrivateSubnetIDs":              []interface{}{"subnet-1", "subnet-2", "subnet-3"},
		"SelfSignedCertificateValidity": "365",
	}
}

type mockSecretsManager struct {
	secrets map[string]string
	calls   []string
}

func newMockSecretsManager(secrets map[string]string) *mockSecretsManager {
	return &mockSecretsManager{secrets: secrets}
}

func (r *mockSecretsManager) GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	arn := aws.StringValue(input.SecretId)
	r.calls = append(r.calls, "get "+arn)
	value, ok := r.secrets[arn]
	if !ok {
		return nil, awserr.New(secretsmanager.ErrCodeResourceNotFoundException, "secret not found", nil)
	}
	return &secretsmanager.GetSecretValueOutput{ARN: input.SecretId, SecretString: aws.String(value)}, nil
}

func (r *mockSecretsManager) PutSecretValueWithContext(ctx aws.Context, input *secretsmanager.PutSecretValueInput, opts ...request.Option) (*secretsmanager.PutSecretValueOutput, error) {
	arn := aws.StringValue(input.SecretId)
	r.calls = append(r.calls, "put "+arn)
	r.secrets[arn] = aws.StringValue(input.SecretString)
	return &secretsmanager.PutSecretValueOutput{ARN: input.SecretId}, nil
}
