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

package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/gravitational/provisioner/lib/cfn"
	"github.com/gravitational/provisioner/lib/functions"
	"github.com/gravitational/provisioner/lib/inventory"
	"github.com/gravitational/provisioner/tool/common"

	awscfn "github.com/aws/aws-lambda-go/cfn"
	"github.com/fatih/color"
	"github.com/gravitational/trace"
)

type invokeConfig struct {
	function  string
	eventFile string
	policy    string
	offline   bool
	timeout   time.Duration
}

func invoke(ctx context.Context, config invokeConfig) error {
	event, err := readEvent(config.eventFile)
	if err != nil {
		return trace.Wrap(err)
	}
	functionConfig := functions.Config{
		SizingPolicy:  config.policy,
		Sender:        cfn.SenderFunc(printResponse),
		LogStreamName: func() string { return "local" },
		FieldLogger:   log,
	}
	if config.offline {
		catalog, err := inventory.NewCatalog()
		if err != nil {
			return trace.Wrap(err)
		}
		functionConfig.Lookup = catalog
	}
	function, err := functions.New(config.function, functionConfig)
	if err != nil {
		return trace.Wrap(err)
	}
	ctx, cancel := context.WithTimeout(ctx, config.timeout)
	defer cancel()
	return trace.Wrap(function.Handle(ctx, *event))
}

func readEvent(path string) (*awscfn.Event, error) {
	r, err := common.GetReader(path)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	defer r.Close()
	return decodeEvent(r)
}

func decodeEvent(r io.Reader) (*awscfn.Event, error) {
	var event awscfn.Event
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return nil, trace.BadParameter("failed to decode event: %v", err)
	}
	if event.RequestType == "" {
		return nil, trace.BadParameter("event is missing RequestType")
	}
	if event.ResourceProperties == nil {
		event.ResourceProperties = map[string]interface{}{}
	}
	return &event, nil
}

func printResponse(response *awscfn.Response) error {
	if response.Status == awscfn.StatusSuccess {
		color.Green("[%v] %v\n", response.Status, response.PhysicalResourceID)
	} else {
		color.Red("[%v] %v\n", response.Status, response.Reason)
	}
	bytes, err := json.MarshalIndent(response, "", "    ")
	if err != nil {
		return trace.Wrap(err)
	}
	_, err = common.Stdout.Write(append(bytes, '\n'))
	return trace.Wrap(err)
}
