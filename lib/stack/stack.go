/*
Copyright 2025 Fleetops Authors

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

package stack

import (
	"context"
	"strings"

	"github.com/fleetops/fleetops/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// CloudFormation is an interface representing the AWS CloudFormation service
type CloudFormation interface {
	DescribeStacksWithContext(aws.Context, *cloudformation.DescribeStacksInput, ...request.Option) (*cloudformation.DescribeStacksOutput, error)
}

// Metadata maps stack output keys to their values. An empty value means the
// output is absent, callers decide whether that is fatal
type Metadata map[string]string

// Output returns the value of the named stack output, or an empty string
// if the output is absent
func (m Metadata) Output(key string) string {
	return m[key]
}

// Has returns true if the named output is present and non-empty
func (m Metadata) Has(key string) bool {
	return m[key] != ""
}

// IsEmpty returns true if no outputs were resolved, typically because the
// stack has not been deployed yet
func (m Metadata) IsEmpty() bool {
	return len(m) == 0
}

// Config is the metadata reader configuration
type Config struct {
	// CloudFormation is the CloudFormation service client
	CloudFormation CloudFormation
	// StackName is the name of the stack to read outputs from
	StackName string
}

// CheckAndSetDefaults validates the config and fills in defaults
func (c *Config) CheckAndSetDefaults() error {
	if c.CloudFormation == nil {
		return trace.BadParameter("missing parameter CloudFormation")
	}
	if c.StackName == "" {
		c.StackName = defaults.StackName
	}
	return nil
}

// Reader resolves named outputs of a deployed CloudFormation stack
type Reader struct {
	Config
	log.FieldLogger
}

// NewReader returns a metadata reader for the configured stack
func NewReader(config Config) (*Reader, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Reader{
		Config: config,
		FieldLogger: log.WithFields(log.Fields{
			trace.Component: "stack",
			"stack":         config.StackName,
		}),
	}, nil
}

// NewReaderFromSession returns a metadata reader bound to the given AWS session
func NewReaderFromSession(sess *session.Session, stackName string) (*Reader, error) {
	return NewReader(Config{
		CloudFormation: cloudformation.New(sess),
		StackName:      stackName,
	})
}

// Get fetches all outputs of the configured stack. A stack that has not been
// deployed yields empty metadata, not an error: callers are expected to
// treat individual outputs as possibly absent
func (r *Reader) Get(ctx context.Context) (Metadata, error) {
	out, err := r.CloudFormation.DescribeStacksWithContext(ctx,
		&cloudformation.DescribeStacksInput{
			StackName: aws.String(r.StackName),
		})
	if err != nil {
		if isStackMissingError(err) {
			r.Debug("Stack does not exist.")
			return Metadata{}, nil
		}
		return nil, trace.Wrap(err, "failed to describe stack %q", r.StackName)
	}
	if len(out.Stacks) == 0 {
		return Metadata{}, nil
	}
	metadata := make(Metadata)
	for _, output := range out.Stacks[0].Outputs {
		metadata[aws.StringValue(output.OutputKey)] = aws.StringValue(output.OutputValue)
	}
	return metadata, nil
}

// Resolve looks up a single named output. Absent outputs resolve to an
// empty string, a single query is made per call
func (r *Reader) Resolve(ctx context.Context, key string) (string, error) {
	metadata, err := r.Get(ctx)
	if err != nil {
		return "", trace.Wrap(err)
	}
	return metadata.Output(key), nil
}

// isStackMissingError returns true if the error indicates that the queried
// stack does not exist. CloudFormation reports this as a generic validation
// error so the message has to be inspected
func isStackMissingError(err error) bool {
	awsErr, ok := err.(awserr.Error)
	if !ok {
		return false
	}
	return awsErr.Code() == "ValidationError" &&
		strings.Contains(awsErr.Message(), "does not exist")
}
