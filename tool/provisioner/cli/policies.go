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

package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/sizing"
	"github.com/gravitational/provisioner/tool/common"

	"github.com/gravitational/trace"
)

type policyInfo struct {
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	Default bool        `json:"default"`
	Buffer  float64     `json:"buffer,omitempty"`
	Roles   []string    `json:"roles"`
	Table   interface{} `json:"table"`
}

func listPolicies(output constants.Format) error {
	var infos []policyInfo
	for _, name := range sizing.PolicyNames() {
		policy, err := sizing.GetPolicy(name)
		if err != nil {
			return trace.Wrap(err)
		}
		info := policyInfo{
			Name:    name,
			Default: name == defaults.SizingPolicy,
		}
		switch policy := policy.(type) {
		case *sizing.AggregatePolicy:
			table := policy.Table()
			info.Kind = sizing.KindAggregate
			info.Buffer = table.Buffer
			info.Roles = roleNames(table.Roles)
			info.Table = table
		case *sizing.LegacyPolicy:
			table := policy.Table()
			info.Kind = sizing.KindLegacy
			info.Roles = roleNames(table.Roles)
			info.Table = table
		}
		infos = append(infos, info)
	}
	if output != constants.EncodingText {
		return trace.Wrap(common.PrintStructured(common.Stdout, infos, output))
	}
	table := common.NewTable(common.Stdout, "Name", "Kind", "Buffer", "Roles", "Default")
	for _, info := range infos {
		buffer := "-"
		if info.Buffer != 0 {
			buffer = strconv.FormatFloat(info.Buffer, 'f', -1, 64)
		}
		table.Append([]string{
			info.Name,
			info.Kind,
			buffer,
			strings.Join(info.Roles, ", "),
			fmt.Sprint(info.Default),
		})
	}
	table.Render()
	return nil
}

func roleNames(roles map[sizing.Role]sizing.RoleTable) (names []string) {
	for role := range roles {
		names = append(names, string(role))
	}
	sort.Strings(names)
	return names
}
