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

package constants

const (
	// ComponentProvisioner is the name of the provisioner component used in logs
	ComponentProvisioner = "provisioner"

	// FunctionComputeResourceSize is the name of the instance sizing function
	FunctionComputeResourceSize = "ComputeResourceSize"
	// FunctionEmptyS3Bucket is the name of the function that empties buckets before deletion
	FunctionEmptyS3Bucket = "EmptyS3Bucket"
	// FunctionFindAmi is the name of the image lookup function
	FunctionFindAmi = "FindAmi"
	// FunctionPatchAsg is the name of the function that suspends auto scaling processes
	FunctionPatchAsg = "PatchAsg"
	// FunctionCreateInputJson is the name of the function that writes the installer configuration
	FunctionCreateInputJson = "CreateInputJson"

	// LogFormatJSON formats log entries as JSON objects
	LogFormatJSON = "json"
	// LogFormatText formats log entries as text
	LogFormatText = "text"
)

// Functions lists the names of all functions
var Functions = []string{
	FunctionComputeResourceSize,
	FunctionCreateInputJson,
	FunctionEmptyS3Bucket,
	FunctionFindAmi,
	FunctionPatchAsg,
}

// Format is the output format
type Format string

// Set sets the format value
func (f *Format) Set(v string) error {
	*f = Format(v)
	return nil
}

// String returns the format string representation
func (f *Format) String() string {
	return string(*f)
}

var (
	// EncodingJSON is for the JSON encoding format
	EncodingJSON Format = "json"
	// EncodingText is for the plain-text encoding format
	EncodingText Format = "text"
	// EncodingYAML is for the YAML encoding format
	EncodingYAML Format = "yaml"
	// OutputFormats is a list of recognized output formats
	OutputFormats = []Format{
		EncodingText,
		EncodingJSON,
		EncodingYAML,
	}
)
