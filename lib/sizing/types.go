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
	"fmt"
	"sort"
	"strings"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
)

// Tier is the installation topology
type Tier string

const (
	// SingleNode is a single-node installation
	SingleNode Tier = "single_node"
	// MultiNode is a highly available multi-node installation
	MultiNode Tier = "multi_node"
)

// ParseTier returns the tier from the topology name used
// in the stack parameters ("Single Node" / "Multi Node")
func ParseTier(topology string) Tier {
	if strings.EqualFold(strings.TrimSpace(topology), "multi node") {
		return MultiNode
	}
	return SingleNode
}

// Check validates the tier
func (r Tier) Check() error {
	switch r {
	case SingleNode, MultiNode:
		return nil
	}
	return trace.BadParameter("unknown tier %q", string(r))
}

// Module names an optional product module
type Module string

const (
	ActionCenter          Module = "action_center"
	TestManager           Module = "test_manager"
	Insights              Module = "insights"
	AutomationHub         Module = "automation_hub"
	AutomationOps         Module = "automation_ops"
	TaskMining            Module = "task_mining"
	AICenter              Module = "ai_center"
	DocumentUnderstanding Module = "document_understanding"
	BusinessApps          Module = "business_apps"
)

// Modules lists all optional modules
var Modules = []Module{
	ActionCenter,
	TestManager,
	Insights,
	AutomationHub,
	AutomationOps,
	TaskMining,
	AICenter,
	DocumentUnderstanding,
	BusinessApps,
}

// ParseModule returns the module with the given name
func ParseModule(name string) (Module, error) {
	for _, module := range Modules {
		if string(module) == name {
			return module, nil
		}
	}
	return "", trace.Wrap(&LookupError{Module: Module(name), Reason: "unknown module"})
}

// Role names a node role sized separately from the primary nodes
type Role string

const (
	// RoleTaskMining is the dedicated task mining node
	RoleTaskMining Role = "task_mining"
	// RoleGPU is the GPU accelerated node
	RoleGPU Role = "gpu"
	// RoleRobots is the robot execution node
	RoleRobots Role = "robots"
)

// Class is the instance class chosen for the primary nodes
type Class string

const (
	// ClassCore is the class of the smaller instance types
	ClassCore Class = "core"
	// ClassExtended is the class of the larger instance types
	ClassExtended Class = "extended"
)

// Demand is an amount of compute resources
type Demand struct {
	// CPU is the number of vCPUs
	CPU float64 `json:"cpu"`
	// RAM is the amount of memory in GiB
	RAM float64 `json:"ram"`
}

// Add returns the sum of this and the other demand
func (r Demand) Add(other Demand) Demand {
	return Demand{CPU: r.CPU + other.CPU, RAM: r.RAM + other.RAM}
}

// Scale returns this demand multiplied by factor
func (r Demand) Scale(factor float64) Demand {
	return Demand{CPU: r.CPU * factor, RAM: r.RAM * factor}
}

// String returns a human readable representation of this demand
func (r Demand) String() string {
	return fmt.Sprintf("cpu=%.2f, ram=%.2fGiB", r.CPU, r.RAM)
}

// EnabledModules maps every optional module to whether it is enabled
type EnabledModules map[Module]bool

// NewEnabledModules returns the set with the specified modules enabled
// and all others disabled
func NewEnabledModules(enabled ...Module) EnabledModules {
	modules := make(EnabledModules, len(Modules))
	for _, module := range Modules {
		modules[module] = false
	}
	for _, module := range enabled {
		modules[module] = true
	}
	return modules
}

// Enabled returns whether the module is enabled.
// Returns a LookupError if the set says nothing about the module
func (r EnabledModules) Enabled(module Module) (bool, error) {
	enabled, ok := r[module]
	if !ok {
		return false, trace.Wrap(&LookupError{Module: module, Reason: "missing enablement flag"})
	}
	return enabled, nil
}

// AnyEnabled returns whether any of the specified modules is enabled
func (r EnabledModules) AnyEnabled(modules []Module) (bool, error) {
	var found bool
	for _, module := range modules {
		enabled, err := r.Enabled(module)
		if err != nil {
			return false, trace.Wrap(err)
		}
		found = found || enabled
	}
	return found, nil
}

// List returns the sorted list of the enabled modules
func (r EnabledModules) List() (modules []Module) {
	for module, enabled := range r {
		if enabled {
			modules = append(modules, module)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i] < modules[j] })
	return modules
}

// Request describes a sizing request
type Request struct {
	// Tier is the installation topology
	Tier Tier
	// Modules is the set of optional modules
	Modules EnabledModules
	// Region is the AWS region to select instance types in
	Region string
	// TaskMining requests a dedicated task mining node
	TaskMining bool
	// GPU requests a GPU accelerated node
	GPU bool
	// Robots requests a robot execution node
	Robots bool
	// Update marks a resize of an existing installation.
	// Policies without separate update rules ignore it
	Update bool
}

// Check validates the request
func (r Request) Check() error {
	if err := r.Tier.Check(); err != nil {
		return trace.Wrap(err)
	}
	if r.Region == "" {
		return trace.BadParameter("missing region")
	}
	if r.Modules == nil {
		return trace.BadParameter("missing module enablement flags")
	}
	return nil
}

// Result is the outcome of sizing
type Result struct {
	// Policy names the policy that produced this result
	Policy string `json:"policy"`
	// Tier is the installation topology
	Tier Tier `json:"tier"`
	// Class is the instance class of the primary nodes
	Class Class `json:"class"`
	// Demand is the aggregate demand before the buffer
	Demand Demand `json:"demand"`
	// BufferedDemand is the demand the node count is computed from
	BufferedDemand Demand `json:"bufferedDemand"`
	// ServerCount is the number of server nodes
	ServerCount int `json:"serverCount"`
	// AgentCount is the number of agent nodes
	AgentCount int `json:"agentCount"`
	// Instance is the instance type of the server and agent nodes
	Instance inventory.InstanceProfile `json:"instance"`
	// TaskMiningInstance is the instance type of the task mining node
	TaskMiningInstance *inventory.InstanceProfile `json:"taskMiningInstance,omitempty"`
	// GPUInstance is the instance type of the GPU node
	GPUInstance *inventory.InstanceProfile `json:"gpuInstance,omitempty"`
	// RobotInstance is the instance type of the robot node
	RobotInstance *inventory.InstanceProfile `json:"robotInstance,omitempty"`
	// DiskSizeGiB is the size of the server data disk
	DiskSizeGiB int `json:"diskSizeGiB"`
}

// NodeCount returns the total number of primary nodes
func (r Result) NodeCount() int {
	return r.ServerCount + r.AgentCount
}

// InstanceType returns the instance type name of the primary nodes
func (r Result) InstanceType() string {
	return r.Instance.Name
}

// TaskMiningInstanceType returns the task mining instance type name or
// an empty string if no task mining node was requested
func (r Result) TaskMiningInstanceType() string {
	return profileName(r.TaskMiningInstance)
}

// GPUInstanceType returns the GPU instance type name or
// an empty string if no GPU node was requested
func (r Result) GPUInstanceType() string {
	return profileName(r.GPUInstance)
}

// RobotInstanceType returns the robot instance type name or
// an empty string if no robot node was requested
func (r Result) RobotInstanceType() string {
	return profileName(r.RobotInstance)
}

func profileName(profile *inventory.InstanceProfile) string {
	if profile == nil {
		return ""
	}
	return profile.Name
}
