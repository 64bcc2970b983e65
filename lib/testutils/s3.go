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
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3 is the mocked versioned S3 API client
type S3 struct {
	s3iface.S3API
	// PageSize is the maximum number of versions returned per listing page
	PageSize int
	// FailKeys lists the keys the fake refuses to delete
	FailKeys map[string]bool

	mu sync.Mutex
	// buckets maps bucket name to its object versions
	buckets map[string][]S3Version
	// deleteBatches records the size of every DeleteObjects request
	deleteBatches []int
}

// S3Version is a version of an object stored in the fake S3
type S3Version struct {
	// Key is the object key
	Key string
	// VersionID is the object version
	VersionID string
	// DeleteMarker is set for delete markers
	DeleteMarker bool
}

// NewS3 returns a new fake S3 implementation
func NewS3() *S3 {
	return &S3{
		PageSize: 1000,
		FailKeys: make(map[string]bool),
		buckets:  make(map[string][]S3Version),
	}
}

// CreateBucket creates an empty bucket
func (s *S3) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = nil
	}
}

// Put adds count versions of key to the bucket and a delete
// marker on top of them if deleted is set
func (s *S3) Put(bucket, key string, count int, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < count; i++ {
		s.buckets[bucket] = append(s.buckets[bucket], S3Version{
			Key:       key,
			VersionID: fmt.Sprintf("v%v", i),
		})
	}
	if deleted {
		s.buckets[bucket] = append(s.buckets[bucket], S3Version{
			Key:          key,
			VersionID:    "marker",
			DeleteMarker: true,
		})
	}
}

// Versions returns the versions remaining in the bucket
func (s *S3) Versions(bucket string) []S3Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]S3Version(nil), s.buckets[bucket]...)
}

// DeleteBatches returns the number of keys in each DeleteObjects request
func (s *S3) DeleteBatches() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.deleteBatches...)
}

// ListObjectVersionsPagesWithContext lists object versions page by page
func (s *S3) ListObjectVersionsPagesWithContext(ctx aws.Context, input *s3.ListObjectVersionsInput, fn func(*s3.ListObjectVersionsOutput, bool) bool, options ...request.Option) error {
	s.mu.Lock()
	versions, ok := s.buckets[aws.StringValue(input.Bucket)]
	versions = append([]S3Version(nil), versions...)
	s.mu.Unlock()
	if !ok {
		return awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}
	sort.SliceStable(versions, func(i, j int) bool { return versions[i].Key < versions[j].Key })
	for start := 0; ; start += s.PageSize {
		end := start + s.PageSize
		if end > len(versions) {
			end = len(versions)
		}
		output := &s3.ListObjectVersionsOutput{Name: input.Bucket}
		for _, version := range versions[start:end] {
			if version.DeleteMarker {
				output.DeleteMarkers = append(output.DeleteMarkers, &s3.DeleteMarkerEntry{
					Key:       aws.String(version.Key),
					VersionId: aws.String(version.VersionID),
				})
				continue
			}
			output.Versions = append(output.Versions, &s3.ObjectVersion{
				Key:       aws.String(version.Key),
				VersionId: aws.String(version.VersionID),
			})
		}
		lastPage := end == len(versions)
		output.IsTruncated = aws.Bool(!lastPage)
		if !fn(output, lastPage) || lastPage {
			return nil
		}
	}
}

// DeleteObjectsWithContext deletes the specified object versions
func (s *S3) DeleteObjectsWithContext(ctx aws.Context, input *s3.DeleteObjectsInput, options ...request.Option) (*s3.DeleteObjectsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := aws.StringValue(input.Bucket)
	if _, ok := s.buckets[bucket]; !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}
	if len(input.Delete.Objects) > 1000 {
		return nil, awserr.New("MalformedXML", "too many keys", nil)
	}
	s.deleteBatches = append(s.deleteBatches, len(input.Delete.Objects))
	output := &s3.DeleteObjectsOutput{}
	for _, object := range input.Delete.Objects {
		key, version := aws.StringValue(object.Key), aws.StringValue(object.VersionId)
		if s.FailKeys[key] {
			output.Errors = append(output.Errors, &s3.Error{
				Key:       object.Key,
				VersionId: object.VersionId,
				Code:      aws.String("AccessDenied"),
				Message:   aws.String("Access Denied"),
			})
			continue
		}
		remaining := s.buckets[bucket][:0]
		for _, v := range s.buckets[bucket] {
			if v.Key == key && v.VersionID == version {
				continue
			}
			remaining = append(remaining, v)
		}
		s.buckets[bucket] = remaining
	}
	return output, nil
}
