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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gravitational/provisioner/lib/constants"

	"github.com/fatih/color"
	"github.com/ghodss/yaml"
	"github.com/gravitational/trace"
	"github.com/olekukonko/tablewriter"
)

// PrintError prints the red error message to the console
func PrintError(err error) {
	color.Red("[ERROR]: %v\n", trace.UserMessage(err))
}

// PrintHeader formats the provided string as a header and prints it to the console
func PrintHeader(w io.Writer, val string) {
	fmt.Fprintf(w, "\n[%v]\n%v\n", val, strings.Repeat("-", len(val)+2))
}

// NewTable returns a new table writing to w
func NewTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

// PrintStructured outputs v in the specified structured format.
// Returns an error for the text format
func PrintStructured(w io.Writer, v interface{}, format constants.Format) error {
	switch format {
	case constants.EncodingJSON:
		bytes, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return trace.Wrap(err)
		}
		_, err = fmt.Fprintln(w, string(bytes))
		return trace.Wrap(err)
	case constants.EncodingYAML:
		bytes, err := yaml.Marshal(v)
		if err != nil {
			return trace.Wrap(err)
		}
		_, err = fmt.Fprint(w, string(bytes))
		return trace.Wrap(err)
	}
	return trace.BadParameter("unknown output format %q, supported are: %v",
		format, constants.OutputFormats)
}

// Stdout is where commands print their output
var Stdout io.Writer = os.Stdout
