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

// Package installconfig implements the custom resource that assembles
// the installer configuration document and stores it in a secret.
package installconfig

import (
	"context"
	"encoding/json"

	"github.com/gravitational/provisioner/lib/cfn"
	awsapi "github.com/gravitational/provisioner/lib/cloudprovider/aws"
	"github.com/gravitational/provisioner/lib/defaults"
	"github.com/gravitational/provisioner/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/gravitational/trace"
	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
)

// Config defines the resource configuration
type Config struct {
	// NewClient creates secrets manager clients
	NewClient awsapi.NewSecretsManagerFunc
	// Generate returns the generated document values
	Generate func() (*Generated, error)
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.NewClient == nil {
		r.NewClient = awsapi.NewSecretsManager
	}
	if r.Generate == nil {
		r.Generate = Generate
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithField(trace.Component, "installconfig")
	}
	return nil
}

// Generate returns a new random cluster token and token signing password
func Generate() (*Generated, error) {
	password, err := utils.CryptoRandomLetters(defaults.TokenSigningPasswordLength)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &Generated{
		RKEToken:             uuid.New(),
		TokenSigningPassword: password,
	}, nil
}

// New returns a new resource
func New(config Config) (*Resource, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Resource{Config: config}, nil
}

// Resource writes the installer configuration on Create and Update
type Resource struct {
	Config
}

// Create writes the document to the target secret.
// The target secret ARN becomes the physical resource ID
func (r *Resource) Create(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	input, err := r.write(ctx, req.Properties)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfn.Response{PhysicalResourceID: input.TargetSecretArn}, nil
}

// Update rewrites the document with the new properties
func (r *Resource) Update(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	if _, err := r.write(ctx, req.Properties); err != nil {
		return nil, trace.Wrap(err)
	}
	return &cfn.Response{PhysicalResourceID: req.PhysicalResourceID}, nil
}

// Delete is a no-op. The secrets are owned by the stack
func (r *Resource) Delete(ctx context.Context, req cfn.Request) (*cfn.Response, error) {
	return &cfn.Response{PhysicalResourceID: req.PhysicalResourceID}, nil
}

func (r *Resource) write(ctx context.Context, props cfn.Properties) (*Input, error) {
	input, err := NewInput(props)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	client, err := r.NewClient(input.Region)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	store := secretStore{client: client, ctx: ctx}
	logger := r.WithField("region", input.Region)

	var secrets Secrets
	logger.Debug("Reading platform secret.")
	if err := store.get(input.PlatformSecretArn, &secrets.Platform); err != nil {
		return nil, trace.Wrap(err)
	}
	logger.Debug("Writing organization secret.")
	err = store.put(input.OrgSecretArn, Credentials{
		Username: defaults.OrgAdminUsername,
		Password: secrets.Platform.Password,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	logger.Debug("Reading ArgoCD secrets.")
	if err := store.get(input.ArgoCDSecretArn, &secrets.ArgoCD); err != nil {
		return nil, trace.Wrap(err)
	}
	if err := store.get(input.ArgoCDUserSecretArn, &secrets.ArgoCDUser); err != nil {
		return nil, trace.Wrap(err)
	}
	logger.Debug("Reading database secret.")
	if err := store.get(input.DatabaseSecretArn, &secrets.Database); err != nil {
		return nil, trace.Wrap(err)
	}
	generated, err := r.Generate()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	doc := NewDocument(*input, secrets, *generated)
	if err := store.put(input.TargetSecretArn, doc); err != nil {
		return nil, trace.Wrap(err)
	}
	logger.WithFields(logrus.Fields{
		"secret":    input.TargetSecretArn,
		"profile":   doc["profile"],
		"instances": doc["initial_number_of_instances"],
	}).Info("Wrote installer configuration.")
	return input, nil
}

type secretStore struct {
	client awsapi.SecretsManager
	ctx    context.Context
}

func (r secretStore) get(arn string, v interface{}) error {
	output, err := r.client.GetSecretValueWithContext(r.ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return awsapi.ConvertError(err, "failed to read secret %v", arn)
	}
	if output.SecretString == nil {
		return trace.BadParameter("secret %v has no string value", arn)
	}
	if err := json.Unmarshal([]byte(*output.SecretString), v); err != nil {
		return trace.BadParameter("secret %v is not a JSON object: %v", arn, err)
	}
	return nil
}

func (r secretStore) put(arn string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return trace.Wrap(err)
	}
	_, err = r.client.PutSecretValueWithContext(r.ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(arn),
		SecretString: aws.String(string(data)),
	})
	if err != nil {
		return awsapi.ConvertError(err, "failed to write secret %v", arn)
	}
	return nil
}
