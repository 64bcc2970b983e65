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

package sizing

import (
	"context"
	"embed"
	"path"
	"sort"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/ghodss/yaml"
	"github.com/gravitational/trace"
)

// Policy sizes an installation
type Policy interface {
	// Name returns the policy name
	Name() string
	// Size sizes the installation described by req using lookup
	// to resolve instance types
	Size(ctx context.Context, lookup inventory.Lookup, req Request) (*Result, error)
}

// GetPolicy returns the built-in policy with the specified name
func GetPolicy(name string) (Policy, error) {
	for _, policy := range builtin {
		if policy.Name() == name {
			return policy, nil
		}
	}
	return nil, trace.NotFound("sizing policy %q not found, available policies: %v", name, PolicyNames())
}

// PolicyNames returns the names of the built-in policies
func PolicyNames() (names []string) {
	for _, policy := range builtin {
		names = append(names, policy.Name())
	}
	sort.Strings(names)
	return names
}

// ParsePolicy parses a policy from its YAML or JSON definition
func ParsePolicy(data []byte) (Policy, error) {
	var header policyHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, trace.Wrap(err)
	}
	if header.Name == "" {
		return nil, trace.BadParameter("missing policy name")
	}
	switch header.Kind {
	case KindAggregate:
		var table AggregateTable
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, trace.Wrap(err)
		}
		policy, err := NewAggregatePolicy(header.Name, table)
		if err != nil {
			return nil, trace.Wrap(err, "policy %v", header.Name)
		}
		return policy, nil
	case KindLegacy:
		var table LegacyTable
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, trace.Wrap(err)
		}
		policy, err := NewLegacyPolicy(header.Name, table)
		if err != nil {
			return nil, trace.Wrap(err, "policy %v", header.Name)
		}
		return policy, nil
	}
	return nil, trace.BadParameter("unknown policy kind %q", header.Kind)
}

const (
	// KindAggregate is the kind of the aggregate demand policies
	KindAggregate = "aggregate"
	// KindLegacy is the kind of the module threshold policies
	KindLegacy = "legacy"
)

type policyHeader struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func mustParseBuiltin() (policies []Policy) {
	entries, err := policyFiles.ReadDir(policyDir)
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		data, err := policyFiles.ReadFile(path.Join(policyDir, entry.Name()))
		if err != nil {
			panic(err)
		}
		policy, err := ParsePolicy(data)
		if err != nil {
			panic(trace.DebugReport(err))
		}
		policies = append(policies, policy)
	}
	return policies
}

//go:embed policies/*.yaml
var policyFiles embed.FS

const policyDir = "policies"

var builtin = mustParseBuiltin()
