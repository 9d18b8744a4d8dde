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

	"github.com/fleetops/fleetops/lib/configsync"
	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/tool/common"

	"github.com/gravitational/trace"
)

// executeUploadConfig uploads the fleet's configuration files to the bucket
// instances pull from at boot. Instances pick the new configuration up on
// their next replacement or restart
func executeUploadConfig(ctx context.Context, fleetops Application, target, dir string) error {
	sess, err := newSession(fleetops)
	if err != nil {
		return trace.Wrap(err)
	}
	metadata, err := resolveMetadata(ctx, fleetops, sess)
	if err != nil {
		return trace.Wrap(err)
	}
	sync, err := configsync.NewFromSession(sess, metadata.Output(defaults.ConfigBucketOutput))
	if err != nil {
		return trace.Wrap(err)
	}
	if err := sync.Upload(ctx, target, dir); err != nil {
		return trace.Wrap(err)
	}
	common.PrintOK("configuration for fleet %q uploaded, run a refresh or restart to apply it", target)
	return nil
}
