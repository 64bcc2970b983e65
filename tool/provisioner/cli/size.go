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
	"context"
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/gravitational/provisioner/lib/constants"
	"github.com/gravitational/provisioner/lib/functions"
	"github.com/gravitational/provisioner/lib/inventory"
	"github.com/gravitational/provisioner/lib/sizing"
	"github.com/gravitational/provisioner/tool/common"

	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
)

type sizeConfig struct {
	region     string
	multiNode  bool
	modules    []string
	gpu        bool
	robots     bool
	update     bool
	policy     string
	policyFile string
	offline    bool
	output     constants.Format
}

func size(ctx context.Context, config sizeConfig) error {
	modules := sizing.NewEnabledModules()
	for _, name := range config.modules {
		module, err := sizing.ParseModule(name)
		if err != nil {
			return trace.Wrap(err)
		}
		modules[module] = true
	}
	tier := sizing.SingleNode
	if config.multiNode {
		tier = sizing.MultiNode
	}
	calculator, err := newCalculator(config.policy, config.policyFile, config.offline)
	if err != nil {
		return trace.Wrap(err)
	}
	result, err := calculator.Size(ctx, sizing.Request{
		Tier:       tier,
		Modules:    modules,
		Region:     config.region,
		TaskMining: modules[sizing.TaskMining],
		GPU:        config.gpu,
		Robots:     config.robots,
		Update:     config.update,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	if config.output == constants.EncodingText {
		printResult(*result)
		return nil
	}
	return trace.Wrap(common.PrintStructured(common.Stdout, result, config.output))
}

func newCalculator(policyName, policyFile string, offline bool) (*sizing.Calculator, error) {
	var lookup inventory.Lookup
	if offline {
		catalog, err := inventory.NewCatalog()
		if err != nil {
			return nil, trace.Wrap(err)
		}
		lookup = catalog
	}
	if policyFile == "" {
		return functions.NewCalculator(policyName, lookup, log)
	}
	data, err := ioutil.ReadFile(policyFile)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	policy, err := sizing.ParsePolicy(data)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if lookup == nil {
		ec2, err := inventory.NewEC2(inventory.EC2Config{})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		lookup = ec2
	}
	return sizing.New(sizing.Config{Policy: policy, Lookup: lookup})
}

func printResult(result sizing.Result) {
	w := common.Stdout
	common.PrintHeader(w, "Installation")
	fmt.Fprintf(w, "Policy:     %v\n", result.Policy)
	fmt.Fprintf(w, "Topology:   %v (%v)\n", result.Tier, result.Class)
	fmt.Fprintf(w, "Demand:     %v\n", result.Demand)
	fmt.Fprintf(w, "Buffered:   %v\n", result.BufferedDemand)
	fmt.Fprintf(w, "Data disk:  %v\n", gib(result.DiskSizeGiB))

	table := common.NewTable(w, "Role", "Count", "Instance Type", "vCPU", "RAM", "GPU RAM")
	table.Append(profileRow("server", result.ServerCount, &result.Instance))
	if result.AgentCount > 0 {
		table.Append(profileRow("agent", result.AgentCount, &result.Instance))
	}
	for _, role := range []struct {
		name    string
		profile *inventory.InstanceProfile
	}{
		{string(sizing.RoleTaskMining), result.TaskMiningInstance},
		{string(sizing.RoleGPU), result.GPUInstance},
		{string(sizing.RoleRobots), result.RobotInstance},
	} {
		if role.profile != nil {
			table.Append(profileRow(role.name, 1, role.profile))
		}
	}
	common.PrintHeader(w, "Nodes")
	table.Render()
}

func profileRow(role string, count int, profile *inventory.InstanceProfile) []string {
	gpu := "-"
	if profile.HasGPU {
		gpu = gib(profile.GPURAMGiB)
	}
	return []string{
		role,
		strconv.Itoa(count),
		profile.Name,
		strconv.Itoa(profile.VCPU),
		gib(profile.RAMGiB),
		gpu,
	}
}

func gib(value int) string {
	return humanize.IBytes(uint64(value) * humanize.GiByte)
}
