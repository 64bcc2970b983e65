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
	"fmt"
	"math"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
)

// Minimum defines the hardware minimums of a node
type Minimum struct {
	// VCPU is the minimum number of vCPUs
	VCPU int `json:"vcpu"`
	// RAMGiB is the minimum amount of memory in GiB
	RAMGiB int `json:"ramGiB"`
	// GPURAMGiB is the minimum amount of GPU memory in GiB.
	// Zero means no GPU is required
	GPURAMGiB int `json:"gpuRamGiB,omitempty"`
}

// String returns a human readable representation of this minimum
func (r Minimum) String() string {
	if r.GPURAMGiB != 0 {
		return fmt.Sprintf("vcpu>=%v, ram>=%vGiB, gpu>=%vGiB", r.VCPU, r.RAMGiB, r.GPURAMGiB)
	}
	return fmt.Sprintf("vcpu>=%v, ram>=%vGiB", r.VCPU, r.RAMGiB)
}

// Check returns a CapacityError if the profile does not meet this minimum
func (r Minimum) Check(role string, profile inventory.InstanceProfile) error {
	ok := profile.VCPU >= r.VCPU && profile.RAMGiB >= r.RAMGiB
	if r.GPURAMGiB != 0 {
		ok = ok && profile.HasGPU && profile.GPURAMGiB >= r.GPURAMGiB
	}
	if !ok {
		return trace.Wrap(&CapacityError{Role: role, Profile: profile, Minimum: r})
	}
	return nil
}

func (r Minimum) check() error {
	if r.VCPU <= 0 || r.RAMGiB <= 0 {
		return trace.BadParameter("minimum vcpu and ram must be positive, got %v", r)
	}
	return nil
}

// RoleTable defines how a node role is sized
type RoleTable struct {
	// Candidates lists the instance types in priority order
	Candidates []string `json:"candidates"`
	// Minimum is the hardware minimum of the role
	Minimum Minimum `json:"minimum"`
}

func (r RoleTable) check() error {
	if len(r.Candidates) == 0 {
		return trace.BadParameter("missing candidates")
	}
	return trace.Wrap(r.Minimum.check())
}

// DiskTable defines the data disk size
type DiskTable struct {
	// DefaultGiB is the disk size if no large module is enabled
	DefaultGiB int `json:"defaultGiB"`
	// LargeGiB is the disk size if any large module is enabled
	LargeGiB int `json:"largeGiB"`
	// LargeModules lists the modules that require the large disk
	LargeModules []Module `json:"largeModules,omitempty"`
}

// Size returns the disk size in GiB for the specified modules
func (r DiskTable) Size(modules EnabledModules) (int, error) {
	large, err := modules.AnyEnabled(r.LargeModules)
	if err != nil {
		return 0, trace.Wrap(err)
	}
	if large {
		return r.LargeGiB, nil
	}
	return r.DefaultGiB, nil
}

func (r DiskTable) check() error {
	if r.DefaultGiB <= 0 || r.LargeGiB <= 0 {
		return trace.BadParameter("disk sizes must be positive")
	}
	return nil
}

// SelectCandidate returns the first instance type from candidates, in order,
// that the lookup reports as available in the region.
// Returns a NotAvailableError if there is none
func SelectCandidate(ctx context.Context, lookup inventory.Lookup, region string, candidates []string) (*inventory.InstanceProfile, error) {
	profiles, err := lookup.Lookup(ctx, region, candidates)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	for _, name := range candidates {
		if profile, ok := inventory.Find(profiles, name); ok {
			return profile, nil
		}
	}
	return nil, trace.Wrap(&NotAvailableError{Region: region, Candidates: candidates})
}

// SelectAuxiliary selects the instance type for an auxiliary role
func SelectAuxiliary(ctx context.Context, lookup inventory.Lookup, region string, role Role, table RoleTable) (*inventory.InstanceProfile, error) {
	profile, err := SelectCandidate(ctx, lookup, region, table.Candidates)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := table.Minimum.Check(string(role), *profile); err != nil {
		return nil, trace.Wrap(err)
	}
	return profile, nil
}

// MultiNodeServers is the number of server nodes in a multi-node installation
const MultiNodeServers = 3

// NodeCount returns the smallest number of nodes of the given profile
// that covers demand, but not less than floor
func NodeCount(demand Demand, profile inventory.InstanceProfile, floor int) int {
	count := floor
	if n := ceilDiv(demand.CPU, float64(profile.VCPU)); n > count {
		count = n
	}
	if n := ceilDiv(demand.RAM, float64(profile.RAMGiB)); n > count {
		count = n
	}
	return count
}

// ceilDiv divides a by b and rounds up, ignoring the error
// accumulated in float sums
func ceilDiv(a, b float64) int {
	return int(math.Ceil(a/b - epsilon))
}

const epsilon = 1e-9

// covers returns whether profile can run demand on its own
func covers(profile inventory.InstanceProfile, demand Demand) bool {
	return float64(profile.VCPU) >= demand.CPU-epsilon && float64(profile.RAMGiB) >= demand.RAM-epsilon
}

func sizeAuxiliary(ctx context.Context, lookup inventory.Lookup, roles map[Role]RoleTable, req Request, result *Result) error {
	requested := []struct {
		role    Role
		enabled bool
		profile **inventory.InstanceProfile
	}{
		{RoleTaskMining, req.TaskMining, &result.TaskMiningInstance},
		{RoleGPU, req.GPU, &result.GPUInstance},
		{RoleRobots, req.Robots, &result.RobotInstance},
	}
	for _, r := range requested {
		if !r.enabled {
			continue
		}
		table, ok := roles[r.role]
		if !ok {
			return trace.BadParameter("policy %v does not support the %v role", result.Policy, r.role)
		}
		profile, err := SelectAuxiliary(ctx, lookup, req.Region, r.role, table)
		if err != nil {
			return trace.Wrap(err)
		}
		*r.profile = profile
	}
	return nil
}
