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

package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/gravitational/trace"
)

// NewSession returns a new AWS session for the specified region.
// If region is empty, the region is taken from the environment
func NewSession(region string) (*session.Session, error) {
	config := aws.NewConfig().WithCredentialsChainVerboseErrors(true)
	if region != "" {
		config = config.WithRegion(region)
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return sess, nil
}

// NewEC2 returns a new EC2 client for the specified region
func NewEC2(region string) (EC2, error) {
	sess, err := NewSession(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return ec2.New(sess), nil
}

// NewAutoScaling returns a new auto scaling client for the specified region
func NewAutoScaling(region string) (AutoScaling, error) {
	sess, err := NewSession(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return autoscaling.New(sess), nil
}

// NewS3 returns a new S3 client for the specified region
func NewS3(region string) (S3, error) {
	sess, err := NewSession(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return s3.New(sess), nil
}

// NewSecretsManager returns a new secrets manager client for the specified region
func NewSecretsManager(region string) (SecretsManager, error) {
	sess, err := NewSession(region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return secretsmanager.New(sess), nil
}

// ConvertError converts errors specific to AWS to trace-compatible error.
// Optional args format the user-facing message
func ConvertError(err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	awsErr, ok := err.(awserr.Error)
	if !ok {
		return trace.Wrap(err, args...)
	}
	return trace.Wrap(convertError(awsErr), args...)
}

// IsCredentialsError returns whether err is caused by the absence of AWS credentials
func IsCredentialsError(err error) bool {
	_, ok := trace.Unwrap(err).(*CredentialsError)
	return ok
}

// CredentialsError is returned when no provider in the credentials chain
// yields credentials. It is an access denied error
type CredentialsError struct {
	// Err is the original error
	Err awserr.Error
}

// Error returns the error message
func (e *CredentialsError) Error() string {
	return e.Err.Error()
}

// IsAccessDeniedError marks this as an access denied error
func (e *CredentialsError) IsAccessDeniedError() bool {
	return true
}

func convertError(err awserr.Error) error {
	switch err.Code() {
	case errCodeNoCredentialProviders:
		return trace.Wrap(&CredentialsError{Err: err})
	case s3.ErrCodeNoSuchBucket, s3.ErrCodeNoSuchKey,
		secretsmanager.ErrCodeResourceNotFoundException:
		return trace.NotFound("%v", err.Error())
	case secretsmanager.ErrCodeResourceExistsException:
		return trace.AlreadyExists("%v", err.Error())
	case errCodeAccessDenied, errCodeUnauthorizedOperation:
		return trace.AccessDenied("%v", err.Error())
	case autoscaling.ErrCodeResourceContentionFault,
		autoscaling.ErrCodeResourceInUseFault,
		autoscaling.ErrCodeScalingActivityInProgressFault:
		return trace.CompareFailed("%v", err.Error())
	case errCodeRequestLimitExceeded, errCodeThrottling:
		return trace.LimitExceeded("%v", err.Error())
	default:
		return trace.BadParameter("%v", err.Error())
	}
}

const (
	errCodeNoCredentialProviders = "NoCredentialProviders"
	errCodeAccessDenied          = "AccessDenied"
	errCodeUnauthorizedOperation = "UnauthorizedOperation"
	errCodeRequestLimitExceeded  = "RequestLimitExceeded"
	errCodeThrottling            = "Throttling"
)
