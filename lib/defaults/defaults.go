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

package defaults

import (
	"time"
)

const (
	// WatchdogMargin is how long before the invocation deadline the
	// watchdog reports a failure to CloudFormation
	WatchdogMargin = 500 * time.Millisecond

	// AWSRegion is the region used when neither the resource properties
	// nor the environment name one
	AWSRegion = "us-east-1"

	// MaxDeleteObjects is the maximum number of keys a single S3
	// DeleteObjects request accepts
	MaxDeleteObjects = 1000

	// SizingPolicy is the name of the sizing policy used unless configured otherwise
	SizingPolicy = "aggregate"

	// VirtualizationType is the only virtualization type instance
	// type lookups consider
	VirtualizationType = "hvm"

	// TokenSigningPasswordLength is the length of the generated
	// token signing certificate password
	TokenSigningPasswordLength = 20

	// OrgAdminUsername is the name of the organization administrator
	// written to the organization secret
	OrgAdminUsername = "orgadmin"

	// SQLServerPort is the port of the SQL server endpoint
	SQLServerPort = 1433

	// SQLDatabasePlaceholder is substituted with the database name by the installer
	SQLDatabasePlaceholder = "DB_NAME_PLACEHOLDER"

	// CertificateDir is the directory where instance bootstrap places certificates
	CertificateDir = "/root"

	// InvokeTimeout is the default timeout of local invocations
	InvokeTimeout = 5 * time.Minute

	// ZoneResilienceMinSubnets is the minimum number of private subnets that
	// enables zone resilience for multi-node installations
	ZoneResilienceMinSubnets = 3
)

var (
	// ScalingProcesses lists the auto scaling processes suspended
	// for the lifetime of the stack
	ScalingProcesses = []string{"Terminate", "Launch"}

	// ImageExecutableUsers restricts image lookups to public images
	ImageExecutableUsers = []string{"all"}
)
