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
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"

	"gopkg.in/check.v1"
)

func TestStack(t *testing.T) { check.TestingT(t) }

type StackSuite struct{}

var _ = check.Suite(&StackSuite{})

// TestResolvesOutputs verifies that stack outputs become metadata entries
func (s *StackSuite) TestResolvesOutputs(c *check.C) {
	reader, err := NewReader(Config{
		CloudFormation: &mockCloudFormation{
			outputs: map[string]string{
				"FastAPIASGName":   "api-asg",
				"SwaggerAlbDnsName": "alb.example.com",
			},
		},
		StackName: "InfrastructureStack",
	})
	c.Assert(err, check.IsNil)

	metadata, err := reader.Get(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(metadata.IsEmpty(), check.Equals, false)
	c.Assert(metadata.Output("FastAPIASGName"), check.Equals, "api-asg")
	c.Assert(metadata.Has("SwaggerAlbDnsName"), check.Equals, true)
	c.Assert(metadata.Output("NoSuchOutput"), check.Equals, "")
	c.Assert(metadata.Has("NoSuchOutput"), check.Equals, false)
}

// TestMissingStackYieldsEmptyMetadata verifies that an undeployed stack is
// not an error
func (s *StackSuite) TestMissingStackYieldsEmptyMetadata(c *check.C) {
	reader, err := NewReader(Config{
		CloudFormation: &mockCloudFormation{
			err: awserr.New("ValidationError",
				"Stack with id InfrastructureStack does not exist", nil),
		},
	})
	c.Assert(err, check.IsNil)

	metadata, err := reader.Get(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(metadata.IsEmpty(), check.Equals, true)
}

// TestTransportErrorPropagates verifies that other API failures are fatal
func (s *StackSuite) TestTransportErrorPropagates(c *check.C) {
	reader, err := NewReader(Config{
		CloudFormation: &mockCloudFormation{
			err: awserr.New("RequestError", "send request failed", nil),
		},
	})
	c.Assert(err, check.IsNil)

	_, err = reader.Get(context.TODO())
	c.Assert(err, check.NotNil)
}

// TestResolveSingleOutput verifies the single-key convenience lookup
func (s *StackSuite) TestResolveSingleOutput(c *check.C) {
	reader, err := NewReader(Config{
		CloudFormation: &mockCloudFormation{
			outputs: map[string]string{"ConfigBucketName": "config-bucket"},
		},
	})
	c.Assert(err, check.IsNil)

	value, err := reader.Resolve(context.TODO(), "ConfigBucketName")
	c.Assert(err, check.IsNil)
	c.Assert(value, check.Equals, "config-bucket")
}

type mockCloudFormation struct {
	outputs map[string]string
	err     error
}

func (m *mockCloudFormation) DescribeStacksWithContext(_ aws.Context, input *cloudformation.DescribeStacksInput, _ ...request.Option) (*cloudformation.DescribeStacksOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	stack := &cloudformation.Stack{
		StackName: input.StackName,
	}
	for key, value := range m.outputs {
		stack.Outputs = append(stack.Outputs, &cloudformation.Output{
			OutputKey:   aws.String(key),
			OutputValue: aws.String(value),
		})
	}
	return &cloudformation.DescribeStacksOutput{
		Stacks: []*cloudformation.Stack{stack},
	}, nil
}
