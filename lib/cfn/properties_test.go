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

package cfn

import (
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type PropertiesSuite struct{}

var _ = check.Suite(&PropertiesSuite{})

func (s *PropertiesSuite) TestBool(c *check.C) {
	props := Properties{
		"Upper":  "TRUE",
		"Mixed":  "True",
		"False":  "false",
		"Yes":    "yes",
		"Native": true,
	}
	for name, expected := range map[string]bool{
		"Upper":  true,
		"Mixed":  true,
		"False":  false,
		"Yes":    false,
		"Native": true,
	} {
		value, err := props.Bool(name)
		c.Assert(err, check.IsNil)
		c.Assert(value, check.Equals, expected, check.Commentf("%v", name))
	}
	_, err := props.Bool("Missing")
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
	c.Assert(props.OptionalBool("Missing"), check.Equals, false)
}

func (s *PropertiesSuite) TestStringSlice(c *check.C) {
	props := Properties{
		"List":   []interface{}{"bucket-a", "bucket-b"},
		"Joined": "subnet-1, subnet-2,subnet-3",
		"Number": 42.0,
	}
	list, err := props.StringSlice("List")
	c.Assert(err, check.IsNil)
	c.Assert(list, check.DeepEquals, []string{"bucket-a", "bucket-b"})

	list, err = props.StringSlice("Joined")
	c.Assert(err, check.IsNil)
	c.Assert(list, check.DeepEquals, []string{"subnet-1", "subnet-2", "subnet-3"})

	_, err = props.StringSlice("Number")
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *PropertiesSuite) TestInt(c *check.C) {
	props := Properties{"Count": "3", "Float": 2.0, "Bad": "three"}
	n, err := props.Int("Count")
	c.Assert(err, check.IsNil)
	c.Assert(n, check.Equals, 3)

	n, err = props.Int("Float")
	c.Assert(err, check.IsNil)
	c.Assert(n, check.Equals, 2)

	_, err = props.Int("Bad")
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}
