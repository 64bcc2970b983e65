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

package mage

import (
	"os"
	"path/filepath"
)

const (
	packagePath = "github.com/gravitational/provisioner/tool/provisioner"

	sharedDirMask  = 0755
	executableMask = 0755
)

var (
	binDir      = "build"
	lambdaDir   = filepath.Join(binDir, "lambda")
	packagesDir = filepath.Join("functions", "packages")

	// lambdaArch is the architecture of the Lambda functions
	lambdaArch = envOr("LAMBDA_ARCH", "arm64")

	// buildFlags are the linker flags of all binaries
	buildFlags = envOr("BUILD_LDFLAGS", "-s -w")
)

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
