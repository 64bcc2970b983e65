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

package schema

import (
	"bytes"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"github.com/gravitational/provisioner/lib/constants"

	"github.com/gravitational/trace"
	"github.com/santhosh-tekuri/jsonschema"
)

// Validate validates resource properties against the schema
// of the named function
func Validate(function string, properties map[string]interface{}) error {
	schema, ok := schemas[function]
	if !ok {
		return trace.NotFound("no schema for function %v", function)
	}
	data, err := json.Marshal(properties)
	if err != nil {
		return trace.Wrap(err)
	}
	if err := schema.Validate(bytes.NewReader(data)); err != nil {
		return trace.BadParameter("invalid %v resource properties: %v", function, err)
	}
	return nil
}

// Validator returns a validation function for the named function
func Validator(function string) func(map[string]interface{}) error {
	return func(properties map[string]interface{}) error {
		return Validate(function, properties)
	}
}

// Functions returns the names of the functions with a schema
func Functions() (names []string) {
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var schemas = map[string]*jsonschema.Schema{}

func init() {
	for function, definition := range map[string]string{
		constants.FunctionComputeResourceSize: computeResourceSizeSchema,
		constants.FunctionEmptyS3Bucket:       emptyS3BucketSchema,
		constants.FunctionFindAmi:             findAmiSchema,
		constants.FunctionPatchAsg:            patchAsgSchema,
		constants.FunctionCreateInputJson:     createInputJsonSchema,
	} {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft6
		if err := compiler.AddResource(baseURL+"definitions.json", strings.NewReader(definitionsSchema)); err != nil {
			log.Fatalf("Failed to add schema resource: %v.", err)
		}
		url := baseURL + function + ".json"
		if err := compiler.AddResource(url, strings.NewReader(definition)); err != nil {
			log.Fatalf("Failed to add schema resource: %v.", err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			log.Fatalf("Failed to parse %v schema: %v.", function, err)
		}
		schemas[function] = schema
	}
}

// baseURL is the base of the schema URLs, relative references
// resolve against it
const baseURL = "https://schemas.gravitational.io/provisioner/"

const definitionsSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "definitions": {
    "nonEmpty": {"type": "string", "minLength": 1},
    "flag": {"type": ["string", "boolean"]},
    "count": {"type": ["string", "integer"], "pattern": "^[0-9]+$", "minimum": 0},
    "list": {
      "oneOf": [
        {"type": "string", "minLength": 1},
        {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1}
      ]
    },
    "region": {"type": "string", "pattern": "^[a-z]{2}(-gov|-iso[a-z]?)?-[a-z]+-[0-9]+$"},
    "topology": {"type": "string", "pattern": "^(?i)(single|multi) node$"},
    "arn": {"type": "string", "pattern": "^arn:"}
  }
}`

const computeResourceSizeSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "type": "object",
  "required": ["RegionName", "MultiNode", "ActionCenter", "TestManager", "Insights",
    "AutomationHub", "AutomationOps", "TaskMining", "AiCenter", "DocumentUnderstanding",
    "BusinessApps"],
  "properties": {
    "RegionName": {"$ref": "definitions.json#/definitions/region"},
    "MultiNode": {"$ref": "definitions.json#/definitions/topology"},
    "ActionCenter": {"$ref": "definitions.json#/definitions/flag"},
    "TestManager": {"$ref": "definitions.json#/definitions/flag"},
    "Insights": {"$ref": "definitions.json#/definitions/flag"},
    "AutomationHub": {"$ref": "definitions.json#/definitions/flag"},
    "AutomationOps": {"$ref": "definitions.json#/definitions/flag"},
    "TaskMining": {"$ref": "definitions.json#/definitions/flag"},
    "AiCenter": {"$ref": "definitions.json#/definitions/flag"},
    "DocumentUnderstanding": {"$ref": "definitions.json#/definitions/flag"},
    "BusinessApps": {"$ref": "definitions.json#/definitions/flag"},
    "AddGpu": {"$ref": "definitions.json#/definitions/flag"},
    "AddRobots": {"$ref": "definitions.json#/definitions/flag"}
  }
}`

const emptyS3BucketSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "type": "object",
  "required": ["BucketNames"],
  "properties": {
    "BucketNames": {"$ref": "definitions.json#/definitions/list"}
  }
}`

const findAmiSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "type": "object",
  "required": ["RegionName", "ImageName", "Architecture", "VirtualizationType", "Owners"],
  "properties": {
    "RegionName": {"$ref": "definitions.json#/definitions/region"},
    "ImageName": {"$ref": "definitions.json#/definitions/nonEmpty"},
    "Architecture": {"type": "string", "enum": ["i386", "x86_64", "arm64", "x86_64_mac", "arm64_mac"]},
    "VirtualizationType": {"type": "string", "enum": ["hvm", "paravirtual"]},
    "Owners": {"$ref": "definitions.json#/definitions/list"}
  }
}`

const patchAsgSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "type": "object",
  "required": ["AutoScalingGroupName", "RegionName"],
  "properties": {
    "AutoScalingGroupName": {"$ref": "definitions.json#/definitions/nonEmpty"},
    "RegionName": {"$ref": "definitions.json#/definitions/region"}
  }
}`

const createInputJsonSchema = `
{
  "$schema": "http://json-schema.org/draft-06/schema#",
  "type": "object",
  "required": [
    "RegionName", "TargetSecretArn", "RDSPasswordSecretArn", "PlatformSecretArn",
    "OrgSecretArn", "ArgoCdSecretArn", "ArgoCdUserSecretArn", "Fqdn",
    "RDSDBInstanceEndpointAddress", "MultiNode", "KubeLoadBalancerDns",
    "ServerInstanceCount", "AgentInstanceCount"
  ],
  "properties": {
    "RegionName": {"$ref": "definitions.json#/definitions/region"},
    "TargetSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "RDSPasswordSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "PlatformSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "OrgSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "ArgoCdSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "ArgoCdUserSecretArn": {"$ref": "definitions.json#/definitions/arn"},
    "Fqdn": {"$ref": "definitions.json#/definitions/nonEmpty"},
    "RDSDBInstanceEndpointAddress": {"$ref": "definitions.json#/definitions/nonEmpty"},
    "MultiNode": {"$ref": "definitions.json#/definitions/topology"},
    "KubeLoadBalancerDns": {"$ref": "definitions.json#/definitions/nonEmpty"},
    "ActionCenter": {"$ref": "definitions.json#/definitions/flag"},
    "TestManager": {"$ref": "definitions.json#/definitions/flag"},
    "Insights": {"$ref": "definitions.json#/definitions/flag"},
    "DataService": {"$ref": "definitions.json#/definitions/flag"},
    "AutomationHub": {"$ref": "definitions.json#/definitions/flag"},
    "AutomationOps": {"$ref": "definitions.json#/definitions/flag"},
    "TaskMining": {"$ref": "definitions.json#/definitions/flag"},
    "AiCenter": {"$ref": "definitions.json#/definitions/flag"},
    "DocumentUnderstanding": {"$ref": "definitions.json#/definitions/flag"},
    "BusinessApps": {"$ref": "definitions.json#/definitions/flag"},
    "AddGpu": {"$ref": "definitions.json#/definitions/flag"},
    "ServerInstanceCount": {"$ref": "definitions.json#/definitions/count"},
    "AgentInstanceCount": {"$ref": "definitions.json#/definitions/count"},
    "PrivateSubnetIDs": {"$ref": "definitions.json#/definitions/list"},
    "ExtraConfigKeys": {"type": "string"},
    "SelfSignedCertificateValidity": {"type": ["string", "integer"]}
  }
}`
