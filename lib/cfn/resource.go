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

/*
Package cfn implements the runtime of CloudFormation custom resources
backed by Lambda functions.

A Function receives the lifecycle event, dispatches it to the Create,
Update or Delete operation of its Resource and reports the outcome to
CloudFormation exactly once. If the invocation carries a deadline, a
watchdog reports a failure shortly before the deadline unless the
operation completes first.
*/
package cfn

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
)

// Resource implements the lifecycle operations of a custom resource
type Resource interface {
	// Create creates the resource
	Create(context.Context, Request) (*Response, error)
	// Update updates the resource
	Update(context.Context, Request) (*Response, error)
	// Delete deletes the resource
	Delete(context.Context, Request) (*Response, error)
}

// Request is a custom resource lifecycle request
type Request struct {
	// Type is the request type
	Type cfn.RequestType
	// PhysicalResourceID identifies the resource.
	// It is empty for Create requests
	PhysicalResourceID string
	// Properties are the resource properties
	Properties Properties
	// OldProperties are the previous resource properties of an Update request
	OldProperties Properties
	// Event is the original event
	Event cfn.Event
}

// Response is the outcome of a successful lifecycle operation
type Response struct {
	// PhysicalResourceID identifies the resource.
	// If empty, the request's physical resource ID is reported
	PhysicalResourceID string
	// Data are the attributes of the resource available to the template
	Data map[string]interface{}
}

// Action returns the value of the Action attribute reported for requests of type t
func Action(t cfn.RequestType) string {
	return strings.ToUpper(string(t))
}

// AttributeAction is the name of the attribute with the request action
const AttributeAction = "Action"
