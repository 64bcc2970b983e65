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
	"strings"

	"github.com/gravitational/provisioner/lib/inventory"

	"github.com/gravitational/trace"
)

// NotAvailableError is returned when none of the candidate
// instance types is offered in the region
type NotAvailableError struct {
	// Region is the region that was searched
	Region string
	// Candidates lists the instance types that were requested
	Candidates []string
}

// Error returns the error message
func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("none of the instance types [%v] is available in region %v",
		strings.Join(e.Candidates, ", "), e.Region)
}

// IsNotAvailable returns true if the error indicates that no candidate
// instance type is available in the region
func IsNotAvailable(err error) bool {
	_, ok := trace.Unwrap(err).(*NotAvailableError)
	return ok
}

// CapacityError is returned when the selected instance type does not
// meet the hardware minimums of the role it was selected for
type CapacityError struct {
	// Role names the role the instance type was selected for
	Role string
	// Profile is the selected instance type
	Profile inventory.InstanceProfile
	// Minimum is the hardware minimum that was not met
	Minimum Minimum
}

// Error returns the error message
func (e *CapacityError) Error() string {
	return fmt.Sprintf("instance type %v does not meet the minimum hardware requirements of the %v role (%v)",
		e.Profile, e.Role, e.Minimum)
}

// IsCapacityError returns true if the error indicates that the selected
// instance type is too small
func IsCapacityError(err error) bool {
	_, ok := trace.Unwrap(err).(*CapacityError)
	return ok
}

// LookupError is returned when the module enablement input
// is incomplete or names an unknown module
type LookupError struct {
	// Module is the offending module
	Module Module
	// Reason describes the problem
	Reason string
}

// Error returns the error message
func (e *LookupError) Error() string {
	return fmt.Sprintf("module %q: %v", string(e.Module), e.Reason)
}

// IsLookupError returns true if the error indicates malformed
// module enablement input
func IsLookupError(err error) bool {
	_, ok := trace.Unwrap(err).(*LookupError)
	return ok
}
