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

// Package emptybucket implements the custom resource that removes every
// object version from a list of buckets when the stack is deleted.
package emptybucket

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// PropertyBucketNames lists the buckets to empty
const PropertyBucketNames = "BucketNames"

// Config defines the resource configuration
type Config struct {
	// NewClient creates S3 clients.
	// Clients are created for the region of the environment
	NewClient awsapi.NewS3Func
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.NewClient == nil {
		r.NewClient = awsapi.NewS3
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "emptybucket")
	}
	return nil
}

// New returns a new resource
func New(config Config) (*Resource, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Resource{Config: config}, nil
}

// Resource empties buckets on Delete
type Resource struct {
	Config
}

// Create is a no-op
func (r *Resource) Create(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	buckets, err := req.Properties.StringSlice(PropertyBucketNames)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	r.WithField("buckets", buckets).Info("Will empty buckets on delete.")
	return &cfn.Response{}, nil
}

// Update is a no-op
func (r *Resource) Update(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return &cfn.Response{}, nil
}

// Delete deletes all object versions and delete markers in the buckets
func (r *Resource) Delete(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	buckets, err := req.Properties.StringSlice(PropertyBucketNames)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	client, err := r.NewClient("")
	if err != nil {
		return nil, trace.Wrap(err)
	}
	for _, bucket := range buckets {
		deleted, err := r.emptyBucket(ctx, client, bucket)
		if trace.IsNotFound(err) {
			r.WithField("bucket", bucket).Info("Bucket not found.")
			continue
		}
		if err != nil {
			return nil, trace.Wrap(err)
		}
		r.WithFields(logrus.Fields{
			"bucket":  bucket,
			"deleted": deleted,
		}).Info("Bucket emptied.")
	}
	return &cfn.Response{}, nil
}

func (r *Resource) emptyBucket(ctx context.Context, client awsapi.S3, bucket string) (deleted int, err error) {
	var batch []*s3.ObjectIdentifier
	var deleteErr error
	err = client.ListObjectVersionsPagesWithContext(ctx, &s3.ListObjectVersionsInput{
		Bucket: aws.String(bucket),
	}, func(page *s3.ListObjectVersionsOutput, lastPage bool) bool {
		for _, version := range page.Versions {
			batch = append(batch, &s3.ObjectIdentifier{Key: version.Key, VersionId: version.VersionId})
		}
		for _, marker := range page.DeleteMarkers {
			batch = append(batch, &s3.ObjectIdentifier{Key: marker.Key, VersionId: marker.VersionId})
		}
		for len(batch) >= defaults.MaxDeleteObjects {
			if deleteErr = deleteObjects(ctx, client, bucket, batch[:defaults.MaxDeleteObjects]); deleteErr != nil {
				return false
			}
			deleted += defaults.MaxDeleteObjects
			batch = batch[defaults.MaxDeleteObjects:]
		}
		return true
	})
	if err != nil {
		return deleted, awsapi.ConvertError(err)
	}
	if deleteErr != nil {
		return deleted, trace.Wrap(deleteErr)
	}
	if len(batch) != 0 {
		if err := deleteObjects(ctx, client, bucket, batch); err != nil {
			return deleted, trace.Wrap(err)
		}
		deleted += len(batch)
	}
	return deleted, nil
}

func deleteObjects(ctx context.Context, client awsapi.S3, bucket string, objects []*s3.ObjectIdentifier) error {
	output, err := client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return awsapi.ConvertError(err)
	}
	if len(output.Errors) != 0 {
		return trace.Wrap(&DeleteError{Bucket: bucket, Errors: output.Errors})
	}
	return nil
}

// DeleteError lists the object versions that could not be deleted
type DeleteError struct {
	// Bucket is the bucket name
	Bucket string
	// Errors are the per-key errors
	Errors []*s3.Error
}

// Error returns the error message
func (e *DeleteError) Error() string {
	var keys []string
	for _, err := range e.Errors {
		keys = append(keys, fmt.Sprintf("%v@%v: %v",
			aws.StringValue(err.Key), aws.StringValue(err.VersionId), aws.StringValue(err.Message)))
	}
	return fmt.Sprintf("failed to delete %v object versions from bucket %v: %v",
		len(e.Errors), e.Bucket, strings.Join(keys, ", "))
}
