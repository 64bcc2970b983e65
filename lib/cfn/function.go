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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gravitational/provisioner/lib/defaults"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Sender delivers responses to CloudFormation
type Sender interface {
	// Send sends the response
	Send(*cfn.Response) error
}

// SenderFunc is a function that implements Sender
type SenderFunc func(*cfn.Response) error

// Send calls f(response)
func (f SenderFunc) Send(response *cfn.Response) error {
	return f(response)
}

// HTTPSender uploads responses to the pre-signed response URL of the event
var HTTPSender = SenderFunc(func(response *cfn.Response) error {
	return trace.Wrap(response.Send())
})

// Config defines the function configuration
type Config struct {
	// Name is the function name
	Name string
	// Resource implements the lifecycle operations
	Resource Resource
	// Validate optionally validates properties of Create and Update requests
	Validate func(properties map[string]interface{}) error
	// Sender delivers responses
	Sender Sender
	// Clock is used by the watchdog
	Clock clockwork.Clock
	// WatchdogMargin is how long before the deadline the watchdog fires
	WatchdogMargin time.Duration
	// LogStreamName returns the name of the log stream of the invocation
	LogStreamName func() string
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the config and sets default values
func (r *Config) CheckAndSetDefaults() error {
	if r.Name == "" {
		return trace.BadParameter("missing Name")
	}
	if r.Resource == nil {
		return trace.BadParameter("missing Resource")
	}
	if r.Sender == nil {
		r.Sender = HTTPSender
	}
	if r.Clock == nil {
		r.Clock = clockwork.NewRealClock()
	}
	if r.WatchdogMargin == 0 {
		r.WatchdogMargin = defaults.WatchdogMargin
	}
	if r.LogStreamName == nil {
		r.LogStreamName = func() string { return lambdacontext.LogStreamName }
	}
	if r.FieldLogger == nil {
		r.FieldLogger = logrus.WithFields(logrus.Fields{
			trace.Component: "cfn",
			"function":      r.Name,
		})
	}
	return nil
}

// New returns a new function
func New(config Config) (*Function, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Function{Config: config}, nil
}

// Function handles custom resource events
type Function struct {
	Config
}

// Handle handles the event and reports the outcome to CloudFormation.
//
// The operation's failure is reported to CloudFormation and not returned.
// Only a failure to deliver the response is returned
func (f *Function) Handle(ctx context.Context, event cfn.Event) error {
	logger := f.WithFields(logrus.Fields{
		"request-id":   event.RequestID,
		"request-type": event.RequestType,
		"logical-id":   event.LogicalResourceID,
		"physical-id":  event.PhysicalResourceID,
	})
	logger.WithFields(logrus.Fields{
		"stack":      event.StackID,
		"type":       event.ResourceType,
		"properties": event.ResourceProperties,
	}).Info("Received event.")

	responder := &responder{
		event:     event,
		sender:    f.Sender,
		logStream: f.LogStreamName(),
		logger:    logger,
	}
	if deadline, ok := ctx.Deadline(); ok {
		stop := f.startWatchdog(deadline, func() {
			logger.Warn("Execution is about to time out, sending failure response.")
			if err := responder.fail(trace.LimitExceeded("function timed out")); err != nil {
				logger.WithError(err).Warn("Failed to send failure response.")
			}
		})
		defer stop()
	}

	response, err := f.dispatch(ctx, event)
	if err != nil {
		logger.WithError(err).Warn("Request failed.")
		logger.Debug(trace.DebugReport(err))
		return trace.Wrap(responder.fail(err))
	}
	return trace.Wrap(responder.succeed(*response))
}

func (f *Function) dispatch(ctx context.Context, event cfn.Event) (*Response, error) {
	req := Request{
		Type:               event.RequestType,
		PhysicalResourceID: event.PhysicalResourceID,
		Properties:         Properties(event.ResourceProperties),
		OldProperties:      Properties(event.OldResourceProperties),
		Event:              event,
	}
	if f.Validate != nil && (req.Type == cfn.RequestCreate || req.Type == cfn.RequestUpdate) {
		if err := f.Validate(event.ResourceProperties); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	var response *Response
	var err error
	switch req.Type {
	case cfn.RequestCreate:
		response, err = f.Resource.Create(ctx, req)
	case cfn.RequestUpdate:
		response, err = f.Resource.Update(ctx, req)
	case cfn.RequestDelete:
		response, err = f.Resource.Delete(ctx, req)
	default:
		return nil, trace.BadParameter("unsupported request type %q", string(req.Type))
	}
	if err != nil {
		return nil, trace.Wrap(err)
	}
	result := Response{Data: map[string]interface{}{}}
	if response != nil {
		result.PhysicalResourceID = response.PhysicalResourceID
		for key, value := range response.Data {
			result.Data[key] = value
		}
	}
	result.Data[AttributeAction] = Action(req.Type)
	return &result, nil
}

// startWatchdog calls fire margin before the deadline unless
// the returned stop is called first
func (f *Function) startWatchdog(deadline time.Time, fire func()) (stop func()) {
	timer := f.Clock.NewTimer(deadline.Sub(f.Clock.Now()) - f.WatchdogMargin)
	done := make(chan struct{})
	go func() {
		select {
		case <-timer.Chan():
			fire()
		case <-done:
		}
	}()
	return func() {
		timer.Stop()
		close(done)
	}
}

// responder sends at most one response per invocation
type responder struct {
	once      sync.Once
	event     cfn.Event
	sender    Sender
	logStream string
	logger    logrus.FieldLogger
}

func (r *responder) succeed(response Response) error {
	physicalID := response.PhysicalResourceID
	if physicalID == "" {
		physicalID = r.event.PhysicalResourceID
	}
	return r.send(cfn.StatusSuccess, physicalID, response.Data, "")
}

func (r *responder) fail(err error) error {
	reason := fmt.Sprintf("%v. See the details in CloudWatch Log Stream: %v",
		trace.UserMessage(err), r.logStream)
	return r.send(cfn.StatusFailed, r.event.PhysicalResourceID, nil, reason)
}

func (r *responder) send(status cfn.StatusType, physicalID string, data map[string]interface{}, reason string) (err error) {
	sent := false
	r.once.Do(func() {
		sent = true
		if physicalID == "" {
			physicalID = r.logStream
		}
		response := cfn.NewResponse(&r.event)
		response.Status = status
		response.PhysicalResourceID = physicalID
		response.Reason = reason
		response.Data = data
		r.logger.WithFields(logrus.Fields{
			"status":      status,
			"physical-id": physicalID,
			"data":        data,
		}).Info("Sending response.")
		err = r.sender.Send(response)
	})
	if !sent {
		r.logger.WithField("status", status).Info("Response already sent.")
	}
	return trace.Wrap(err)
}
