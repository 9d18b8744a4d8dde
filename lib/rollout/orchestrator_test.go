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

package rollout

import (
	"context"
	"time"

	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/health"

	"github.com/aws/aws-sdk-go/service/autoscaling"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type OrchestratorSuite struct{}

var _ = check.Suite(&OrchestratorSuite{})

func (s *OrchestratorSuite) newOrchestrator(c *check.C, asg AutoScaling, prober Prober) *Orchestrator {
	controller, err := New(Config{
		AutoScaling:  asg,
		PollInterval: time.Millisecond,
		SettleDelay:  time.Millisecond,
	})
	c.Assert(err, check.IsNil)
	orchestrator, err := NewOrchestrator(OrchestratorConfig{
		Controller:      controller,
		Prober:          prober,
		InterFleetDelay: time.Millisecond,
	})
	c.Assert(err, check.IsNil)
	return orchestrator
}

// TestSequencesFleets verifies that fleets are processed in order with the
// per-fleet health probe after each rollout
func (s *OrchestratorSuite) TestSequencesFleets(c *check.C) {
	asg := &mockAutoScaling{
		poll: []*autoscaling.InstanceRefresh{
			refresh("refresh-1", "Successful", 100, ""),
		},
	}
	prober := &fakeProber{healthy: true}
	orchestrator := s.newOrchestrator(c, asg, prober)

	fleets := []fleet.Fleet{
		{Name: "fastapi", GroupName: "api-asg", HealthURL: "http://alb/swagger/api/docs",
			Strategy: fleet.StrategyFullReplacement},
		{Name: "gateway", GroupName: "gw-asg", HealthURL: "http://alb/swagger/gw/api-docs",
			Strategy: fleet.StrategyFullReplacement},
	}
	results, err := orchestrator.Rollout(context.TODO(), fleets, false)
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, 2)
	c.Assert(results.Failed(), check.Equals, false)
	c.Assert(prober.probed, check.DeepEquals, []string{
		"http://alb/swagger/api/docs",
		"http://alb/swagger/gw/api-docs",
	})
}

// TestContinuesAfterFleetFailure verifies that a fleet that cannot start does
// not prevent the remaining fleets from being attempted, and that the failure
// surfaces in the aggregate result
func (s *OrchestratorSuite) TestContinuesAfterFleetFailure(c *check.C) {
	asg := &mockAutoScaling{
		poll: []*autoscaling.InstanceRefresh{
			refresh("refresh-1", "Successful", 100, ""),
		},
	}
	prober := &fakeProber{healthy: true}
	orchestrator := s.newOrchestrator(c, asg, prober)

	fleets := []fleet.Fleet{
		{Name: "fastapi", Strategy: fleet.StrategyFullReplacement},
		{Name: "gateway", GroupName: "gw-asg", HealthURL: "http://alb/swagger/gw/api-docs",
			Strategy: fleet.StrategyFullReplacement},
	}
	results, err := orchestrator.Rollout(context.TODO(), fleets, false)
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, 2)
	c.Assert(trace.IsNotFound(results[0].Err), check.Equals, true)
	c.Assert(results[1].Failed(), check.Equals, false)
	c.Assert(results.Failed(), check.Equals, true)
}

// TestProbesAfterFailedRollout verifies that the health probe runs even when
// the rollout itself did not succeed
func (s *OrchestratorSuite) TestProbesAfterFailedRollout(c *check.C) {
	asg := &mockAutoScaling{
		poll: []*autoscaling.InstanceRefresh{
			refresh("refresh-1", "Failed", 40, "instances failed health checks"),
		},
	}
	prober := &fakeProber{healthy: false}
	orchestrator := s.newOrchestrator(c, asg, prober)

	fleets := []fleet.Fleet{
		{Name: "fastapi", GroupName: "api-asg", HealthURL: "http://alb/swagger/api/docs",
			Strategy: fleet.StrategyFullReplacement},
	}
	results, err := orchestrator.Rollout(context.TODO(), fleets, false)
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, 1)
	c.Assert(results[0].Err, check.IsNil)
	c.Assert(results[0].Attempt.Status, check.Equals, StatusFailed)
	c.Assert(results[0].Health, check.NotNil)
	c.Assert(results[0].Failed(), check.Equals, true)
	c.Assert(prober.probed, check.HasLen, 1)
}

// TestAbortsOnCancelledContext verifies that a cancelled context stops the
// run between fleets
func (s *OrchestratorSuite) TestAbortsOnCancelledContext(c *check.C) {
	asg := &mockAutoScaling{
		poll: []*autoscaling.InstanceRefresh{
			refresh("refresh-1", "Successful", 100, ""),
		},
	}
	prober := &fakeProber{healthy: true}
	orchestrator := s.newOrchestrator(c, asg, prober)
	orchestrator.InterFleetDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fleets := []fleet.Fleet{
		{Name: "fastapi", GroupName: "api-asg", HealthURL: "http://alb/swagger/api/docs",
			Strategy: fleet.StrategyFullReplacement},
		{Name: "gateway", GroupName: "gw-asg", HealthURL: "http://alb/swagger/gw/api-docs",
			Strategy: fleet.StrategyFullReplacement},
	}
	results, err := orchestrator.Rollout(ctx, fleets, false)
	c.Assert(err, check.NotNil)
	c.Assert(len(results) < 2, check.Equals, true)
}

type fakeProber struct {
	healthy bool
	probed  []string
}

func (p *fakeProber) Probe(_ context.Context, url string) health.Sample {
	p.probed = append(p.probed, url)
	return health.Sample{URL: url, Healthy: p.healthy, Timestamp: time.Now()}
}
