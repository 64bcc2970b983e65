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

package config

import (
	"os"
	"testing"
	"time"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
	"gopkg.in/check.v1"
)

func TestConfig(t *testing.T) { check.TestingT(t) }

type ConfigSuite struct {
	saved map[string]*string
}

var _ = check.Suite(&ConfigSuite{})

var envs = []string{
	"PROVISIONER_LOG_LEVEL",
	"PROVISIONER_LOG_FORMAT",
	"PROVISIONER_DEBUG",
	"PROVISIONER_WATCHDOG_MARGIN",
	"PROVISIONER_SIZING_POLICY",
	"PROVISIONER_FUNCTION",
	EnvHandler,
}

func (s *ConfigSuite) SetUpTest(c *check.C) {
	s.saved = make(map[string]*string)
	for _, name := range envs {
		if value, ok := os.LookupEnv(name); ok {
			s.saved[name] = &value
		} else {
			s.saved[name] = nil
		}
		os.Unsetenv(name)
	}
}

func (s *ConfigSuite) TearDownTest(c *check.C) {
	for name, value := range s.saved {
		if value == nil {
			os.Unsetenv(name)
		} else {
			os.Setenv(name, *value)
		}
	}
}

func (s *ConfigSuite) TestDefaults(c *check.C) {
	cfg, err := FromEnv()
	c.Assert(err, check.IsNil)
	c.Assert(*cfg, check.DeepEquals, Config{
		LogLevel:       "info",
		LogFormat:      "json",
		WatchdogMargin: 500 * time.Millisecond,
		SizingPolicy:   "aggregate",
	})
}

func (s *ConfigSuite) TestFunctionFromHandler(c *check.C) {
	os.Setenv(EnvHandler, "/var/task/EmptyS3Bucket")
	os.Setenv("PROVISIONER_SIZING_POLICY", "legacy")
	os.Setenv("PROVISIONER_DEBUG", "true")
	os.Setenv("PROVISIONER_WATCHDOG_MARGIN", "2s")
	cfg, err := FromEnv()
	c.Assert(err, check.IsNil)
	c.Assert(cfg.Function, check.Equals, "EmptyS3Bucket")
	c.Assert(cfg.SizingPolicy, check.Equals, "legacy")
	c.Assert(cfg.Margin(), check.Equals, 2*time.Second)
	level, err := cfg.Level()
	c.Assert(err, check.IsNil)
	c.Assert(level, check.Equals, log.DebugLevel)
}

func (s *ConfigSuite) TestExplicitFunctionWins(c *check.C) {
	os.Setenv(EnvHandler, "bootstrap")
	cfg, err := FromEnv()
	c.Assert(err, check.IsNil)
	c.Assert(cfg.Function, check.Equals, "")

	os.Setenv("PROVISIONER_FUNCTION", "FindAmi")
	cfg, err = FromEnv()
	c.Assert(err, check.IsNil)
	c.Assert(cfg.Function, check.Equals, "FindAmi")
}

func (s *ConfigSuite) TestInvalid(c *check.C) {
	for _, env := range [][2]string{
		{"PROVISIONER_FUNCTION", "Unknown"},
		{"PROVISIONER_SIZING_POLICY", "cheapest"},
		{"PROVISIONER_LOG_FORMAT", "xml"},
		{"PROVISIONER_WATCHDOG_MARGIN", "soon"},
	} {
		os.Setenv(env[0], env[1])
		_, err := FromEnv()
		c.Assert(err, check.NotNil, check.Commentf("%v=%v", env[0], env[1]))
		c.Assert(trace.IsBadParameter(err) || trace.IsNotFound(err), check.Equals, true,
			check.Commentf("%v=%v: %v", env[0], env[1], err))
		os.Unsetenv(env[0])
	}
}
