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

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
)

// LegacyTable defines the rules of the module threshold policy
type LegacyTable struct {
	// ExtendedModules lists the modules that switch the installation
	// to the extended instance class
	ExtendedModules []Module `json:"extendedModules"`
	// Disk defines the data disk size
	Disk DiskTable `json:"disk"`
	// LegacyRules defines the node rules of new installations
	LegacyRules
	// Update optionally replaces the node rules when an existing
	// installation is resized
	Update *LegacyRules `json:"update,omitempty"`
}

// LegacyRules defines the primary and auxiliary node rules
type LegacyRules struct {
	// Tiers defines the primary node rules per topology
	Tiers map[Tier]LegacyTier `json:"tiers"`
	// Roles defines the auxiliary roles
	Roles map[Role]RoleTable `json:"roles"`
}

// LegacyTier defines the instance classes of a topology
type LegacyTier struct {
	Core     LegacyClass `json:"core"`
	Extended LegacyClass `json:"extended"`
}

// LegacyClass defines the fixed demand and candidates of an instance class
type LegacyClass struct {
	// Demand is the total demand of the installation
	Demand Demand `json:"demand"`
	// Minimum is the per-node hardware minimum
	Minimum Minimum `json:"minimum"`
	// Candidates lists the instance types in priority order
	Candidates []string `json:"candidates"`
}

// Check validates the table
func (r LegacyTable) Check() error {
	if err := r.Disk.check(); err != nil {
		return trace.Wrap(err)
	}
	if err := r.LegacyRules.check(); err != nil {
		return trace.Wrap(err)
	}
	if r.Update != nil {
		if err := r.Update.check(); err != nil {
			return trace.Wrap(err, "update rules")
		}
	}
	return nil
}

func (r LegacyRules) check() error {
	for _, tier := range []Tier{SingleNode, MultiNode} {
		table, ok := r.Tiers[tier]
		if !ok {
			return trace.BadParameter("missing tier %v", tier)
		}
		for _, class := range []LegacyClass{table.Core, table.Extended} {
			if len(class.Candidates) == 0 {
				return trace.BadParameter("tier %v: missing candidates", tier)
			}
			if err := class.Minimum.check(); err != nil {
				return trace.Wrap(err, "tier %v", tier)
			}
		}
	}
	for role, table := range r.Roles {
		if err := table.check(); err != nil {
			return trace.Wrap(err, "role %v", role)
		}
	}
	return nil
}

// NewLegacyPolicy returns a new module threshold policy for the table
func NewLegacyPolicy(name string, table LegacyTable) (*LegacyPolicy, error) {
	if err := table.Check(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &LegacyPolicy{name: name, table: table}, nil
}

// LegacyPolicy sizes the installation from fixed totals chosen by
// whether any data intensive module is enabled
type LegacyPolicy struct {
	name  string
	table LegacyTable
}

// Name returns the policy name
func (r *LegacyPolicy) Name() string {
	return r.name
}

// Table returns the rules of this policy
func (r *LegacyPolicy) Table() LegacyTable {
	return r.table
}

// Rules returns the node rules for new installations or, if update
// is set and the table defines them, for resized installations
func (r *LegacyPolicy) Rules(update bool) LegacyRules {
	if update && r.table.Update != nil {
		return *r.table.Update
	}
	return r.table.LegacyRules
}

// Class returns the instance class for the modules
func (r *LegacyPolicy) Class(modules EnabledModules) (Class, error) {
	for _, module := range Modules {
		if _, err := modules.Enabled(module); err != nil {
			return "", trace.Wrap(err)
		}
	}
	extended, err := modules.AnyEnabled(r.table.ExtendedModules)
	if err != nil {
		return "", trace.Wrap(err)
	}
	if extended {
		return ClassExtended, nil
	}
	return ClassCore, nil
}

// Size sizes the installation described by req
func (r *LegacyPolicy) Size(ctx context.Context, lookup inventory.Lookup, req Request) (*Result, error) {
	rules := r.Rules(req.Update)
	tier, ok := rules.Tiers[req.Tier]
	if !ok {
		return nil, trace.BadParameter("unknown tier %q", string(req.Tier))
	}
	class, err := r.Class(req.Modules)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	classRules := tier.Core
	if class == ClassExtended {
		classRules = tier.Extended
	}
	profile, err := SelectCandidate(ctx, lookup, req.Region, classRules.Candidates)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := classRules.Minimum.Check(string(req.Tier), *profile); err != nil {
		return nil, trace.Wrap(err)
	}
	result := &Result{
		Policy:         r.name,
		Tier:           req.Tier,
		Class:          class,
		Demand:         classRules.Demand,
		BufferedDemand: classRules.Demand,
		Instance:       *profile,
	}
	switch req.Tier {
	case MultiNode:
		result.ServerCount = MultiNodeServers
		result.AgentCount = NodeCount(classRules.Demand, *profile, MultiNodeServers) - MultiNodeServers
	case SingleNode:
		if !covers(*profile, classRules.Demand) {
			return nil, trace.Wrap(&CapacityError{
				Role:    string(req.Tier),
				Profile: *profile,
				Minimum: Minimum{VCPU: ceilDiv(classRules.Demand.CPU, 1), RAMGiB: ceilDiv(classRules.Demand.RAM, 1)},
			})
		}
		result.ServerCount = 1
	}
	if err := sizeAuxiliary(ctx, lookup, rules.Roles, req, result); err != nil {
		return nil, trace.Wrap(err)
	}
	result.DiskSizeGiB, err = r.table.Disk.Size(req.Modules)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return result, nil
}
