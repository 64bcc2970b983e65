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
	"sort"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
)

// AggregateTable defines the rules of the aggregate demand policy
type AggregateTable struct {
	// Buffer is the headroom multiplier applied to the aggregate demand
	Buffer float64 `json:"buffer"`
	// Disk defines the data disk size
	Disk DiskTable `json:"disk"`
	// Tiers defines the primary node rules per topology
	Tiers map[Tier]AggregateTier `json:"tiers"`
	// Roles defines the auxiliary roles
	Roles map[Role]RoleTable `json:"roles"`
}

// AggregateTier defines the primary node rules of a topology
type AggregateTier struct {
	// Base is the platform demand present regardless of modules
	Base Demand `json:"base"`
	// Modules maps each optional module to its demand
	Modules map[Module]Demand `json:"modules"`
	// CoreMaxCPU is the largest buffered CPU demand served
	// by the core instance class
	CoreMaxCPU float64 `json:"coreMaxCPU"`
	// Minimum is the per-node hardware minimum
	Minimum Minimum `json:"minimum"`
	// Core lists the core class instance types in priority order
	Core []string `json:"core"`
	// Extended lists the extended class instance types in priority order
	Extended []string `json:"extended"`
}

// Check validates the table
func (r AggregateTable) Check() error {
	if r.Buffer < 1 {
		return trace.BadParameter("buffer must be at least 1, got %v", r.Buffer)
	}
	if err := r.Disk.check(); err != nil {
		return trace.Wrap(err)
	}
	for _, tier := range []Tier{SingleNode, MultiNode} {
		table, ok := r.Tiers[tier]
		if !ok {
			return trace.BadParameter("missing tier %v", tier)
		}
		if len(table.Core) == 0 || len(table.Extended) == 0 {
			return trace.BadParameter("tier %v: missing candidates", tier)
		}
		if err := table.Minimum.check(); err != nil {
			return trace.Wrap(err, "tier %v", tier)
		}
	}
	for role, table := range r.Roles {
		if err := table.check(); err != nil {
			return trace.Wrap(err, "role %v", role)
		}
	}
	return nil
}

// NewAggregatePolicy returns a new aggregate demand policy for the table
func NewAggregatePolicy(name string, table AggregateTable) (*AggregatePolicy, error) {
	if err := table.Check(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &AggregatePolicy{name: name, table: table}, nil
}

// AggregatePolicy sizes the installation from the sum of the demands
// of the enabled modules
type AggregatePolicy struct {
	name  string
	table AggregateTable
}

// Name returns the policy name
func (r *AggregatePolicy) Name() string {
	return r.name
}

// Table returns the rules of this policy
func (r *AggregatePolicy) Table() AggregateTable {
	return r.table
}

// Aggregate returns the unbuffered demand of the tier base and
// the enabled modules.
//
// Every module the tier knows about must have an enablement flag
func (r *AggregatePolicy) Aggregate(tier Tier, modules EnabledModules) (*Demand, error) {
	table, ok := r.table.Tiers[tier]
	if !ok {
		return nil, trace.BadParameter("unknown tier %q", string(tier))
	}
	for module := range modules {
		if _, ok := table.Modules[module]; !ok {
			return nil, trace.Wrap(&LookupError{Module: module, Reason: "no requirements defined"})
		}
	}
	names := make([]Module, 0, len(table.Modules))
	for module := range table.Modules {
		names = append(names, module)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	demand := table.Base
	for _, module := range names {
		enabled, err := modules.Enabled(module)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		if enabled {
			demand = demand.Add(table.Modules[module])
		}
	}
	return &demand, nil
}

// Buffer returns demand with the headroom applied
func (r *AggregatePolicy) Buffer(demand Demand) Demand {
	return demand.Scale(r.table.Buffer)
}

// Selection describes the primary nodes
type Selection struct {
	// Class is the selected instance class
	Class Class
	// Demand is the buffered demand
	Demand Demand
	// Profile is the selected instance type
	Profile inventory.InstanceProfile
	// Servers is the number of server nodes
	Servers int
	// Agents is the number of agent nodes
	Agents int
}

// SelectPrimary selects the instance type and node counts for the
// unbuffered demand
func (r *AggregatePolicy) SelectPrimary(ctx context.Context, lookup inventory.Lookup, tier Tier, region string, demand Demand) (*Selection, error) {
	table, ok := r.table.Tiers[tier]
	if !ok {
		return nil, trace.BadParameter("unknown tier %q", string(tier))
	}
	buffered := r.Buffer(demand)
	class, candidates := ClassCore, table.Core
	if buffered.CPU > table.CoreMaxCPU {
		class, candidates = ClassExtended, table.Extended
	}
	profile, err := SelectCandidate(ctx, lookup, region, candidates)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := table.Minimum.Check(string(tier), *profile); err != nil {
		return nil, trace.Wrap(err)
	}
	selection := &Selection{
		Class:   class,
		Demand:  buffered,
		Profile: *profile,
	}
	switch tier {
	case MultiNode:
		selection.Servers = MultiNodeServers
		selection.Agents = NodeCount(buffered, *profile, MultiNodeServers) - MultiNodeServers
	case SingleNode:
		if !covers(*profile, buffered) {
			return nil, trace.Wrap(&CapacityError{
				Role:    string(tier),
				Profile: *profile,
				Minimum: Minimum{VCPU: ceilDiv(buffered.CPU, 1), RAMGiB: ceilDiv(buffered.RAM, 1)},
			})
		}
		selection.Servers = 1
	}
	return selection, nil
}

// DiskSize returns the data disk size in GiB
func (r *AggregatePolicy) DiskSize(modules EnabledModules) (int, error) {
	return r.table.Disk.Size(modules)
}

// Size sizes the installation described by req
func (r *AggregatePolicy) Size(ctx context.Context, lookup inventory.Lookup, req Request) (*Result, error) {
	demand, err := r.Aggregate(req.Tier, req.Modules)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	selection, err := r.SelectPrimary(ctx, lookup, req.Tier, req.Region, *demand)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	result := &Result{
		Policy:         r.name,
		Tier:           req.Tier,
		Class:          selection.Class,
		Demand:         *demand,
		BufferedDemand: selection.Demand,
		ServerCount:    selection.Servers,
		AgentCount:     selection.Agents,
		Instance:       selection.Profile,
	}
	if err := sizeAuxiliary(ctx, lookup, r.table.Roles, req, result); err != nil {
		return nil, trace.Wrap(err)
	}
	result.DiskSizeGiB, err = r.DiskSize(req.Modules)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return result, nil
}
