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

package emptybucket

import (
	"context"
	"testing"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/testutils"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestEmptyBucket(t *testing.T) { check.TestingT(t) }

type EmptyBucketSuite struct {
	s3       *testutils.S3
	resource *Resource
}

var _ = check.Suite(&EmptyBucketSuite{})

func (s *EmptyBucketSuite) SetUpTest(c *check.C) {
	s.s3 = testutils.NewS3()
	var err error
	s.resource, err = New(Config{
		NewClient: func(string) (awsapi.S3, error) {
			return s.s3, nil
		},
	})
	c.Assert(err, check.IsNil)
}

func (s *EmptyBucketSuite) TestDeletesAllVersions(c *check.C) {
	s.s3.PageSize = 400
	s.s3.CreateBucket("logs")
	s.s3.Put("logs", "a", 1500, true)
	s.s3.Put("logs", "b", 10, false)
	s.s3.CreateBucket("backups")
	s.s3.Put("backups", "c", 3, true)

	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		Properties: cfn.Properties{PropertyBucketNames: []interface{}{"logs", "backups"}},
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.s3.Versions("logs"), check.HasLen, 0)
	c.Assert(s.s3.Versions("backups"), check.HasLen, 0)
	c.Assert(s.s3.DeleteBatches(), check.DeepEquals, []int{1000, 911, 4})
}

func (s *EmptyBucketSuite) TestEmptyBucketIsNoop(c *check.C) {
	s.s3.CreateBucket("logs")
	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		Properties: cfn.Properties{PropertyBucketNames: "logs"},
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.s3.DeleteBatches(), check.HasLen, 0)
}

func (s *EmptyBucketSuite) TestSkipsMissingBucket(c *check.C) {
	s.s3.CreateBucket("logs")
	s.s3.Put("logs", "a", 2, false)
	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		Properties: cfn.Properties{PropertyBucketNames: []interface{}{"gone", "logs"}},
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.s3.Versions("logs"), check.HasLen, 0)
}

func (s *EmptyBucketSuite) TestReportsFailedKeys(c *check.C) {
	s.s3.CreateBucket("logs")
	s.s3.Put("logs", "a", 2, false)
	s.s3.Put("logs", "locked", 1, false)
	s.s3.FailKeys["locked"] = true
	_, err := s.resource.Delete(context.TODO(), cfn.Request{
		Properties: cfn.Properties{PropertyBucketNames: []interface{}{"logs"}},
	})
	c.Assert(err, check.NotNil)
	deleteErr, ok := trace.Unwrap(err).(*DeleteError)
	c.Assert(ok, check.Equals, true)
	c.Assert(deleteErr.Bucket, check.Equals, "logs")
	c.Assert(deleteErr.Errors, check.HasLen, 1)
	c.Assert(s.s3.Versions("logs"), check.DeepEquals, []testutils.S3Version{
		{Key: "locked", VersionID: "v0"},
	})
}

func (s *EmptyBucketSuite) TestCreateAndUpdateKeepObjects(c *check.C) {
	s.s3.CreateBucket("logs")
	s.s3.Put("logs", "a", 1, false)
	req := cfn.Request{Properties: cfn.Properties{PropertyBucketNames: []interface{}{"logs"}}}
	_, err := s.resource.Create(context.TODO(), req)
	c.Assert(err, check.IsNil)
	_, err = s.resource.Update(context.TODO(), req)
	c.Assert(err, check.IsNil)
	c.Assert(s.s3.Versions("logs"), check.HasLen, 1)
}
