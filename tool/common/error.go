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
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"

	"github.com/gravitational/trace"
)

// ProcessRunError converts the error returned by a command
// into a more helpful one where possible
func ProcessRunError(runErr error) error {
	if awsapi.IsCredentialsError(runErr) {
		return trace.AccessDenied("no AWS credentials found. Configure credentials " +
			"with environment variables or a shared credentials file, " +
			"or use --offline to size with the built-in instance catalog")
	}
	return runErr
}
