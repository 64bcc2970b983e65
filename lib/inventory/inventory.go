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

// Package inventory resolves instance type names into hardware profiles
// of the types offered in a region.
package inventory

import (
	"context"
	"fmt"
)

// Lookup returns the profiles of the specified instance types available
// in the given region.
//
// Types not offered in the region are omitted from the result.
// An empty result is not an error.
type Lookup interface {
	Lookup(ctx context.Context, region string, instanceTypes []string) ([]InstanceProfile, error)
}

// InstanceProfile describes the hardware of an instance type
type InstanceProfile struct {
	// Name is the instance type name, e.g. m5.4xlarge
	Name string `json:"name"`
	// VCPU is the default number of virtual CPUs
	VCPU int `json:"vcpu"`
	// RAMGiB is the amount of memory in GiB
	RAMGiB int `json:"ramGiB"`
	// GPURAMGiB is the memory of the first GPU in GiB.
	// Only meaningful if HasGPU is set
	GPURAMGiB int `json:"gpuRamGiB,omitempty"`
	// HasGPU is set if the instance type carries a GPU
	HasGPU bool `json:"hasGPU,omitempty"`
}

// String returns a human readable representation of this profile
func (r InstanceProfile) String() string {
	if r.HasGPU {
		return fmt.Sprintf("%v(vcpu=%v, ram=%vGiB, gpu=%vGiB)", r.Name, r.VCPU, r.RAMGiB, r.GPURAMGiB)
	}
	return fmt.Sprintf("%v(vcpu=%v, ram=%vGiB)", r.Name, r.VCPU, r.RAMGiB)
}

// Find returns the profile with the specified name from the list
func Find(profiles []InstanceProfile, name string) (*InstanceProfile, bool) {
	for _, profile := range profiles {
		if profile.Name == name {
			profile := profile
			return &profile, true
		}
	}
	return nil, false
}
