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

	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/health"
	"github.com/fleetops/fleetops/lib/rollout"
	"github.com/fleetops/fleetops/tool/common"

	"github.com/gravitational/trace"
)

// executeRollout rolls the targeted fleets out with the provided strategy
// and reports per-fleet outcomes. The exit status reflects any failure even
// though all fleets are always attempted
func executeRollout(ctx context.Context, fleetops Application, target string, strategy fleet.Strategy, force bool) error {
	sess, err := newSession(fleetops)
	if err != nil {
		return trace.Wrap(err)
	}
	metadata, err := resolveMetadata(ctx, fleetops, sess)
	if err != nil {
		return trace.Wrap(err)
	}
	fleets, err := fleet.ResolveTarget(metadata, target, strategy)
	if err != nil {
		return trace.Wrap(err)
	}

	controller, err := rollout.NewFromSession(sess)
	if err != nil {
		return trace.Wrap(err)
	}
	prober, err := health.New(health.Config{})
	if err != nil {
		return trace.Wrap(err)
	}
	orchestrator, err := rollout.NewOrchestrator(rollout.OrchestratorConfig{
		Controller: controller,
		Prober:     prober,
	})
	if err != nil {
		return trace.Wrap(err)
	}

	results, err := orchestrator.Rollout(ctx, fleets, force)
	if err != nil {
		return trace.Wrap(err)
	}
	printResults(results)
	if results.Failed() {
		return trace.BadParameter("rollout finished with failures, see the report above")
	}
	return nil
}

func printResults(results rollout.Results) {
	common.PrintHeader("Rollout report")
	for _, result := range results {
		switch {
		case result.Err != nil:
			common.PrintError(trace.Wrap(result.Err, "fleet %q rollout failed", result.Fleet.Name))
		case result.Attempt == nil || !result.Attempt.Status.IsSuccess():
			reason := "unknown"
			if result.Attempt != nil {
				reason = result.Attempt.Reason
			}
			common.PrintError(trace.BadParameter("fleet %q rollout did not succeed: %v",
				result.Fleet.Name, reason))
		case result.Health != nil && !result.Health.Healthy:
			common.PrintWarning("fleet %q rolled out but failed its health check at %v",
				result.Fleet.Name, result.Health.URL)
		case result.Health == nil:
			common.PrintWarning("fleet %q rolled out, health endpoint was not probed",
				result.Fleet.Name)
		default:
			common.PrintOK("fleet %q rolled out and healthy", result.Fleet.Name)
		}
	}
}
