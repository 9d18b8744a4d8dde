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

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/health"
	"github.com/fleetops/fleetops/lib/utils"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Prober issues a health probe against an endpoint
type Prober interface {
	Probe(ctx context.Context, url string) health.Sample
}

// Result is the outcome of rolling out one fleet
type Result struct {
	// Fleet is the fleet that was rolled out
	Fleet fleet.Fleet
	// Attempt is the rollout attempt, nil if it could not be started
	Attempt *Attempt
	// Health is the post-rollout probe sample, nil if the fleet has no
	// resolvable health endpoint
	Health *health.Sample
	// Err is set if the rollout could not be started or polled
	Err error
}

// Failed returns true if any part of this fleet's rollout went wrong
func (r Result) Failed() bool {
	if r.Err != nil {
		return true
	}
	if r.Attempt == nil || !r.Attempt.Status.IsSuccess() {
		return true
	}
	if r.Health != nil && !r.Health.Healthy {
		return true
	}
	return false
}

// Results aggregates per-fleet outcomes of one orchestration run
type Results []Result

// Failed returns true if at least one fleet failed
func (r Results) Failed() bool {
	for _, result := range r {
		if result.Failed() {
			return true
		}
	}
	return false
}

// OrchestratorConfig is the multi-fleet orchestrator configuration
type OrchestratorConfig struct {
	// Controller drives individual fleet rollouts
	Controller *Controller
	// Prober validates fleet health after each rollout
	Prober Prober
	// Clock is used for the inter-fleet delay
	Clock clockwork.Clock
	// InterFleetDelay separates consecutive fleet rollouts
	InterFleetDelay time.Duration
}

// CheckAndSetDefaults validates the config and fills in defaults
func (c *OrchestratorConfig) CheckAndSetDefaults() error {
	if c.Controller == nil {
		return trace.BadParameter("missing parameter Controller")
	}
	if c.Prober == nil {
		return trace.BadParameter("missing parameter Prober")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.InterFleetDelay == 0 {
		c.InterFleetDelay = defaults.InterFleetDelay
	}
	return nil
}

// Orchestrator sequences fleet rollouts. Fleets are processed strictly one
// at a time in the provided order so at most one fleet is degraded at any
// moment. A failure on one fleet is recorded and does not prevent attempting
// the remaining fleets
type Orchestrator struct {
	OrchestratorConfig
	log.FieldLogger
}

// NewOrchestrator returns a new multi-fleet orchestrator
func NewOrchestrator(config OrchestratorConfig) (*Orchestrator, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Orchestrator{
		OrchestratorConfig: config,
		FieldLogger:        log.WithField(trace.Component, "orchestrator"),
	}, nil
}

// Rollout rolls the provided fleets out in order, each to a terminal state
// followed by a health probe, with a fixed settle delay between fleets.
// The returned error indicates the run itself was aborted (for example by
// an interrupt signal), per-fleet failures are reported in the results
func (o *Orchestrator) Rollout(ctx context.Context, fleets []fleet.Fleet, force bool) (Results, error) {
	results := make(Results, 0, len(fleets))
	for i, f := range fleets {
		if i > 0 {
			o.Infof("Waiting %v before next fleet.", o.InterFleetDelay)
			if err := utils.SleepWithContext(ctx, o.Clock, o.InterFleetDelay); err != nil {
				return results, trace.Wrap(err)
			}
		}
		results = append(results, o.rolloutFleet(ctx, f, force))
		if ctx.Err() != nil {
			return results, trace.Wrap(ctx.Err())
		}
	}
	return results, nil
}

func (o *Orchestrator) rolloutFleet(ctx context.Context, f fleet.Fleet, force bool) Result {
	logger := o.WithField("fleet", f.Name)
	result := Result{Fleet: f}

	attempt, err := o.Controller.StartRollout(ctx, f, force)
	if err != nil {
		result.Err = err
		logger.WithError(err).Error("Failed to start rollout, continuing with remaining fleets.")
		return result
	}
	result.Attempt = attempt

	status, err := o.Controller.PollToTerminal(ctx, attempt)
	if err != nil {
		result.Err = err
		logger.WithError(err).Error("Failed to poll rollout to completion.")
		return result
	}
	if !status.IsSuccess() {
		logger.WithFields(log.Fields{
			"status": status,
			"reason": attempt.Reason,
		}).Error("Rollout did not succeed.")
	}

	if f.HealthURL == "" {
		logger.Warn("Fleet has no resolvable health endpoint, skipping probe.")
		return result
	}
	sample := o.Prober.Probe(ctx, f.HealthURL)
	result.Health = &sample
	if sample.Healthy {
		logger.WithField("url", sample.URL).Info("Fleet is healthy.")
	} else {
		logger.WithField("url", sample.URL).Warn("Fleet failed post-rollout health check.")
	}
	return result
}
