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

package testutils

import (
	"fmt"

	"github.com/kylelemons/godebug/pretty"
	"gopkg.in/check.v1"
)

// DeepCompare compares obtained and expected and fails the test
// with a diff if they are not equal
func DeepCompare(c *check.C, obtained, expected interface{}, comment ...interface{}) {
	if diff := pretty.Compare(obtained, expected); diff != "" {
		c.Fatalf("%v\nvalues differ (-obtained +expected):\n%v", fmt.Sprint(comment...), diff)
	}
}
