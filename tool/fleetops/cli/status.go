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
	"os"
	"sort"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/health"
	"github.com/fleetops/fleetops/lib/monitor"
	"github.com/fleetops/fleetops/tool/common"

	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/elbv2"

	"github.com/gravitational/trace"
	"github.com/olekukonko/tablewriter"
)

// executeStatus prints a one-shot report: the resolved stack outputs followed
// by a detailed health iteration over both fleets
func executeStatus(ctx context.Context, fleetops Application) error {
	sess, err := newSession(fleetops)
	if err != nil {
		return trace.Wrap(err)
	}
	metadata, err := resolveMetadata(ctx, fleetops, sess)
	if err != nil {
		return trace.Wrap(err)
	}
	if metadata.IsEmpty() {
		common.PrintWarning("stack %q is not deployed, deploy the infrastructure first", *fleetops.StackName)
		return nil
	}

	common.PrintHeader("Stack outputs")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Output", "Value"})
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		table.Append([]string{key, metadata.Output(key)})
	}
	table.Render()

	fleets, err := fleet.ResolveTarget(metadata, defaults.BothFleets, fleet.StrategyFullReplacement)
	if err != nil {
		return trace.Wrap(err)
	}
	prober, err := health.New(health.Config{})
	if err != nil {
		return trace.Wrap(err)
	}
	common.PrintHeader("Fleet health")
	m, err := monitor.New(monitor.Config{
		Fleets:      fleets,
		Prober:      prober,
		AutoScaling: autoscaling.New(sess),
		ELB:         elbv2.New(sess),
		Detailed:    true,
		Once:        true,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(m.Run(ctx))
}
