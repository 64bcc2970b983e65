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
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/gravitational/provisioner/lib/constants"

	"github.com/gravitational/trace"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// All builds the CLI and the Lambda packages
func (Build) All() {
	mg.SerialDeps(Build.Go, Build.Lambda)
}

// Go builds the platform-native provisioner binary
func (Build) Go() error {
	mg.Deps(Mkdir(binDir))
	return trace.Wrap(sh.RunV("go", "build", "-trimpath",
		"-ldflags", buildFlags,
		"-o", filepath.Join(binDir, "provisioner"),
		packagePath))
}

// Lambda builds the Lambda bootstrap binary and packages it once per function
// under functions/packages/<function>/lambda.zip
func (Build) Lambda() error {
	mg.Deps(Mkdir(lambdaDir))
	bootstrap := filepath.Join(lambdaDir, "bootstrap")
	err := sh.RunWithV(map[string]string{
		"GOOS":        "linux",
		"GOARCH":      lambdaArch,
		"CGO_ENABLED": "0",
	}, "go", "build", "-trimpath", "-tags", "lambda.norpc",
		"-ldflags", buildFlags,
		"-o", bootstrap,
		packagePath)
	if err != nil {
		return trace.Wrap(err)
	}
	for _, function := range constants.Functions {
		path := filepath.Join(packagesDir, function, "lambda.zip")
		if err := zipBootstrap(bootstrap, path); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

// Clean removes build artifacts
func (Build) Clean() error {
	for _, dir := range []string{binDir, packagesDir} {
		if err := sh.Rm(dir); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

// zipBootstrap writes a Lambda package with the bootstrap binary to path
func zipBootstrap(bootstrap, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), sharedDirMask); err != nil {
		return trace.ConvertSystemError(err)
	}
	in, err := os.Open(bootstrap)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	out, err := os.Create(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	header, err := zip.FileInfoHeader(fi)
	if err != nil {
		return trace.Wrap(err)
	}
	header.Name = "bootstrap"
	header.Method = zip.Deflate
	header.SetMode(executableMask)
	entry, err := w.CreateHeader(header)
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := io.Copy(entry, in); err != nil {
		return trace.Wrap(err)
	}
	if err := w.Close(); err != nil {
		return trace.Wrap(err)
	}
	return trace.ConvertSystemError(out.Close())
}

// Mkdir returns a function that creates the specified directory
func Mkdir(dir string) func() error {
	return func() error {
		return trace.ConvertSystemError(os.MkdirAll(dir, sharedDirMask))
	}
}
