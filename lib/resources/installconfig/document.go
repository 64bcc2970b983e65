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
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gravitational/provisioner/lib/cfn"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/resources"
	"github.com/gravitational/provisioner/lib/sizing"

	"github.com/gravitational/trace"
)

// Resource property names
const (
	PropertyTargetSecretArn               = "TargetSecretArn"
	PropertyRDSPasswordSecretArn          = "RDSPasswordSecretArn"
	PropertyPlatformSecretArn             = "PlatformSecretArn"
	PropertyOrgSecretArn                  = "OrgSecretArn"
	PropertyArgoCdSecretArn               = "ArgoCdSecretArn"
	PropertyArgoCdUserSecretArn           = "ArgoCdUserSecretArn"
	PropertyFqdn                          = "Fqdn"
	PropertyRDSDBInstanceEndpointAddress  = "RDSDBInstanceEndpointAddress"
	PropertyKubeLoadBalancerDNS           = "KubeLoadBalancerDns"
	PropertyServerInstanceCount           = "ServerInstanceCount"
	PropertyAgentInstanceCount            = "AgentInstanceCount"
	PropertyPrivateSubnetIDs              = "PrivateSubnetIDs"
	PropertyExtraConfigKeys               = "ExtraConfigKeys"
	PropertySelfSignedCertificateValidity = "SelfSignedCertificateValidity"
)

// moduleKeys maps the module flag properties to the document keys
// that enable the module
var moduleKeys = []struct {
	property string
	key      string
}{
	{resources.PropertyAutomationHub, "automation_hub"},
	{resources.PropertyAutomationOps, "automation_ops"},
	{resources.PropertyActionCenter, "action_center"},
	{resources.PropertyDataService, "dataservice"},
	{resources.PropertyTestManager, "test_manager"},
	{resources.PropertyInsights, "insights"},
	{resources.PropertyBusinessApps, "apps"},
	{resources.PropertyTaskMining, "task_mining"},
	{resources.PropertyAiCenter, "aicenter"},
	{resources.PropertyDocumentUnderstanding, "documentunderstanding"},
}

// Input describes the installation
type Input struct {
	// Region is the region of the secrets
	Region string
	// TargetSecretArn names the secret receiving the document
	TargetSecretArn string
	// DatabaseSecretArn names the database credentials secret
	DatabaseSecretArn string
	// PlatformSecretArn names the platform administrator secret
	PlatformSecretArn string
	// OrgSecretArn names the organization administrator secret
	OrgSecretArn string
	// ArgoCDSecretArn names the ArgoCD administrator secret
	ArgoCDSecretArn string
	// ArgoCDUserSecretArn names the ArgoCD read-only user secret
	ArgoCDUserSecretArn string
	// FQDN is the fully qualified domain name of the installation
	FQDN string
	// DatabaseEndpoint is the address of the database server
	DatabaseEndpoint string
	// Tier is the installation topology
	Tier sizing.Tier
	// LoadBalancerDNS is the DNS name of the internal load balancer
	LoadBalancerDNS string
	// Modules maps the module flag properties to their values
	Modules map[string]bool
	// GPU is set if a GPU node is added
	GPU bool
	// ServerCount is the number of server nodes
	ServerCount int
	// AgentCount is the number of agent nodes
	AgentCount int
	// PrivateSubnetIDs lists the private subnets of the installation
	PrivateSubnetIDs []string
	// ExtraConfig are additional top-level document keys
	ExtraConfig map[string]interface{}
	// CertificateValidity is passed to the installer as is
	CertificateValidity interface{}
}

// NewInput parses the resource properties
func NewInput(props cfn.Properties) (*Input, error) {
	var input Input
	required := []struct {
		name  string
		value *string
	}{
		{resources.PropertyRegionName, &input.Region},
		{PropertyTargetSecretArn, &input.TargetSecretArn},
		{PropertyRDSPasswordSecretArn, &input.DatabaseSecretArn},
		{PropertyPlatformSecretArn, &input.PlatformSecretArn},
		{PropertyOrgSecretArn, &input.OrgSecretArn},
		{PropertyArgoCdSecretArn, &input.ArgoCDSecretArn},
		{PropertyArgoCdUserSecretArn, &input.ArgoCDUserSecretArn},
		{PropertyFqdn, &input.FQDN},
		{PropertyRDSDBInstanceEndpointAddress, &input.DatabaseEndpoint},
		{PropertyKubeLoadBalancerDNS, &input.LoadBalancerDNS},
	}
	for _, property := range required {
		value, err := props.String(property.name)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		*property.value = value
	}
	topology, err := props.String(resources.PropertyMultiNode)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	input.Tier = sizing.ParseTier(topology)
	if input.ServerCount, err = props.Int(PropertyServerInstanceCount); err != nil {
		return nil, trace.Wrap(err)
	}
	if input.AgentCount, err = props.Int(PropertyAgentInstanceCount); err != nil {
		return nil, trace.Wrap(err)
	}
	input.Modules = make(map[string]bool, len(moduleKeys))
	for _, module := range moduleKeys {
		input.Modules[module.property] = props.OptionalBool(module.property)
	}
	input.GPU = props.OptionalBool(resources.PropertyAddGpu)
	if _, ok := props[PropertyPrivateSubnetIDs]; ok {
		if input.PrivateSubnetIDs, err = props.StringSlice(PropertyPrivateSubnetIDs); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	if extra := props.OptionalString(PropertyExtraConfigKeys); strings.TrimSpace(extra) != "" {
		if err := json.Unmarshal([]byte(extra), &input.ExtraConfig); err != nil {
			return nil, trace.BadParameter("property %v: expected a JSON object: %v",
				PropertyExtraConfigKeys, err)
		}
	}
	input.CertificateValidity = props[PropertySelfSignedCertificateValidity]
	return &input, nil
}

// Credentials are the username and password stored in a secret
type Credentials struct {
	// Username is the user name
	Username string `json:"username"`
	// Password is the password
	Password string `json:"password"`
}

// Secrets are the credentials the document is assembled from
type Secrets struct {
	// Platform are the platform administrator credentials
	Platform Credentials
	// ArgoCD are the ArgoCD administrator credentials
	ArgoCD Credentials
	// ArgoCDUser are the ArgoCD read-only user credentials
	ArgoCDUser Credentials
	// Database are the database credentials
	Database Credentials
}

// Generated are the values generated for every document
type Generated struct {
	// RKEToken is the cluster join token
	RKEToken string
	// TokenSigningPassword protects the token signing certificate
	TokenSigningPassword string
}

// NewDocument returns the installer configuration document.
//
// Extra configuration keys replace the identity and infrastructure keys
// but not the database, module and instance count keys
func NewDocument(input Input, secrets Secrets, generated Generated) map[string]interface{} {
	doc := map[string]interface{}{
		"fqdn":                  input.FQDN,
		"rke_token":             generated.RKEToken,
		"cloud_template_vendor": "AWS",
		"cloud_template_source": "Quickstart",
		"fixed_rke_address":     input.LoadBalancerDNS,
		"admin_username":        secrets.Platform.Username,
		"admin_password":        secrets.Platform.Password,
		"fabric": map[string]interface{}{
			"argocd_admin_password": secrets.ArgoCD.Password,
			"argocd_user_password":  secrets.ArgoCDUser.Password,
		},
		"server_certificate": map[string]interface{}{
			"ca_cert_file":  filepath.Join(defaults.CertificateDir, "rootCA.crt"),
			"tls_cert_file": filepath.Join(defaults.CertificateDir, "server.crt"),
			"tls_key_file":  filepath.Join(defaults.CertificateDir, "server.key"),
		},
		"identity_certificate": map[string]interface{}{
			"token_signing_cert_file":  filepath.Join(defaults.CertificateDir, "token_signing_certificate.pfx"),
			"token_signing_cert_pass":  generated.TokenSigningPassword,
			"ldap_cert_authority_file": "",
		},
		"self_signed_cert_validity": input.CertificateValidity,
	}
	if input.Tier == sizing.MultiNode {
		doc["profile"] = "ha"
		doc["zone_resilience"] = len(input.PrivateSubnetIDs) >= defaults.ZoneResilienceMinSubnets
	} else {
		doc["profile"] = "default"
	}
	for key, value := range input.ExtraConfig {
		doc[key] = value
	}
	doc["sql"] = map[string]interface{}{"create_db": true}
	doc["sql_connection_string_template"] = SQLConnectionString(input.DatabaseEndpoint, secrets.Database)
	doc["sql_connection_string_template_jdbc"] = JDBCConnectionString(input.DatabaseEndpoint, secrets.Database)
	doc["sql_connection_string_template_odbc"] = ODBCConnectionString(input.DatabaseEndpoint, secrets.Database)
	doc["orchestrator"] = map[string]interface{}{
		"testautomation": enabled(true),
		"updateserver":   enabled(true),
	}
	for _, module := range moduleKeys {
		doc[module.key] = enabled(input.Modules[module.property])
	}
	if input.Modules[resources.PropertyDocumentUnderstanding] {
		doc["documentunderstanding"] = map[string]interface{}{
			"enabled": true,
			"handwriting": map[string]interface{}{
				"enabled":         "true",
				"max_cpu_per_pod": 2,
			},
		}
	}
	doc["initial_number_of_instances"] = InstanceCount(input)
	return doc
}

// InstanceCount returns the number of instances the installation starts with
func InstanceCount(input Input) int {
	count := input.ServerCount + input.AgentCount
	if input.GPU {
		count++
	}
	if input.Modules[resources.PropertyTaskMining] {
		count++
	}
	return count
}

// SQLConnectionString returns the .NET connection string template
func SQLConnectionString(endpoint string, creds Credentials) string {
	return fmt.Sprintf("Server=tcp:%v,%v;Initial Catalog=%v;Persist Security Info=False;"+
		"User Id=%v;Password='%v';MultipleActiveResultSets=False;Encrypt=True;"+
		"TrustServerCertificate=True;Connection Timeout=30;Max Pool Size=100;",
		endpoint, defaults.SQLServerPort, defaults.SQLDatabasePlaceholder,
		creds.Username, strings.ReplaceAll(creds.Password, "'", "''"))
}

// JDBCConnectionString returns the JDBC connection string template
func JDBCConnectionString(endpoint string, creds Credentials) string {
	return fmt.Sprintf("jdbc:sqlserver://%v;database=%v;user=%v;password={%v}",
		endpoint, defaults.SQLDatabasePlaceholder, creds.Username, escapeBraces(creds.Password))
}

// ODBCConnectionString returns the ODBC connection string template
func ODBCConnectionString(endpoint string, creds Credentials) string {
	return fmt.Sprintf("SERVER=%v;DATABASE=%v;DRIVER={ODBC Driver 17 for SQL Server};UID=%v;PWD={%v}",
		endpoint, defaults.SQLDatabasePlaceholder, creds.Username, escapeBraces(creds.Password))
}

func escapeBraces(password string) string {
	return strings.ReplaceAll(password, "}", "}}")
}

func enabled(value bool) map[string]interface{} {
	return map[string]interface{}{"enabled": value}
}
