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

package cli

import (
	"context"

	"github.com/fleetops/fleetops/lib/stack"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/gravitational/trace"
)

// newSession builds the AWS session shared by all service clients of one
// command invocation
func newSession(fleetops Application) (*session.Session, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config: aws.Config{
			Region: aws.String(*fleetops.Region),
		},
	})
	if err != nil {
		return nil, trace.Wrap(err, "failed to initialize AWS session")
	}
	return sess, nil
}

// resolveMetadata reads the infrastructure stack outputs once for this
// command invocation. The result may be empty if the stack has not been
// deployed, callers decide whether that is fatal
func resolveMetadata(ctx context.Context, fleetops Application, sess *session.Session) (stack.Metadata, error) {
	reader, err := stack.NewReaderFromSession(sess, *fleetops.StackName)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	metadata, err := reader.Get(ctx)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return metadata, nil
}
