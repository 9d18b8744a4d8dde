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

// Package rollout drives fleet rollouts to a terminal state. A rollout either
// replaces all instances of a fleet through an auto scaling group instance
// refresh, or restarts service containers in place on the existing instances
// through remote command execution. Both paths satisfy the same attempt
// contract: start, detect conflict, poll to completion. The platform, not
// this package, is the source of truth for in-progress state: starting is a
// conditional operation gated on the currently observed state.
package rollout

import (
	"context"
	"time"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Status is the observed state of a rollout attempt
type Status string

const (
	// StatusPending means the rollout has been accepted but not started
	StatusPending Status = "Pending"
	// StatusInProgress means the rollout is running
	StatusInProgress Status = "InProgress"
	// StatusCancelling means a cancellation has been requested
	StatusCancelling Status = "Cancelling"
	// StatusSuccessful means the rollout completed
	StatusSuccessful Status = "Successful"
	// StatusFailed means the rollout reached a failure state
	StatusFailed Status = "Failed"
	// StatusCancelled means the rollout was cancelled
	StatusCancelled Status = "Cancelled"
)

// IsTerminal returns true if no further transitions are possible
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsSuccess returns true if the rollout completed successfully
func (s Status) IsSuccess() bool {
	return s == StatusSuccessful
}

// isKnown returns false for status strings this tool does not recognize.
// Unknown statuses are tolerated during polling so the tool keeps working
// when the platform API grows new intermediate states
func (s Status) isKnown() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCancelling,
		StatusSuccessful, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Attempt is one rollout of one fleet. The attempt is an observation of
// external platform state, polling updates it in place until a terminal
// status is reached
type Attempt struct {
	// Fleet is the fleet being rolled out
	Fleet fleet.Fleet
	// ID identifies the attempt on the platform: the instance refresh id
	// for a full replacement, the most recent command id for an in-place
	// restart
	ID string
	// Status is the last observed status
	Status Status
	// PercentComplete is the last observed progress, monotonically
	// non-decreasing within one attempt
	PercentComplete int64
	// Reason is the last status reason reported by the platform
	Reason string
	// StartedAt is when this attempt was started
	StartedAt time.Time

	// members are the instances an in-place restart operates on
	members []string
}

// Config is the rollout controller configuration
type Config struct {
	// AutoScaling is the Auto Scaling service client
	AutoScaling AutoScaling
	// SSM is the Systems Manager client, required for in-place restarts
	SSM SSM
	// Clock is used for all polling delays
	Clock clockwork.Clock
	// PollInterval is the delay between instance refresh status queries
	PollInterval time.Duration
	// SettleDelay is how long to wait after force-cancelling a conflicting
	// refresh before starting a new one
	SettleDelay time.Duration
	// CommandPollInterval is the delay between remote command status queries
	CommandPollInterval time.Duration
	// CommandPollAttempts bounds remote command polling per fleet member
	CommandPollAttempts int
}

// CheckAndSetDefaults validates the config and fills in defaults
func (c *Config) CheckAndSetDefaults() error {
	if c.AutoScaling == nil {
		return trace.BadParameter("missing parameter AutoScaling")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaults.RefreshPollInterval
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = defaults.CancelSettleDelay
	}
	if c.CommandPollInterval == 0 {
		c.CommandPollInterval = defaults.CommandPollInterval
	}
	if c.CommandPollAttempts == 0 {
		c.CommandPollAttempts = defaults.CommandPollAttempts
	}
	return nil
}

// Controller drives exactly one rollout attempt for one fleet to a terminal
// state, or fails fast
type Controller struct {
	Config
	log.FieldLogger
}

// New returns a new rollout controller
func New(config Config) (*Controller, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Controller{
		Config:      config,
		FieldLogger: log.WithField(trace.Component, "rollout"),
	}, nil
}

// NewFromSession returns a rollout controller bound to the given AWS session
func NewFromSession(sess *session.Session) (*Controller, error) {
	return New(Config{
		AutoScaling: autoscaling.New(sess),
		SSM:         ssm.New(sess),
	})
}

// StartRollout starts a rollout of the provided fleet according to its
// strategy. If a conflicting rollout is already in progress and force is not
// set, an already exists error is returned without mutating platform state.
// With force set, the conflicting rollout is cancelled first
func (c *Controller) StartRollout(ctx context.Context, f fleet.Fleet, force bool) (*Attempt, error) {
	if f.GroupName == "" {
		return nil, trace.NotFound(
			"fleet %q has no auto scaling group, deploy the infrastructure stack first", f.Name)
	}
	logger := c.WithField("fleet", f.Name)
	switch f.Strategy {
	case fleet.StrategyFullReplacement:
		return c.startRefresh(ctx, f, force, logger)
	case fleet.StrategyInPlaceRestart:
		return c.startRestart(ctx, f, logger)
	}
	return nil, trace.BadParameter("unsupported rollout strategy %q", f.Strategy)
}

// PollToTerminal polls the provided attempt until a terminal status is
// observed and returns it. A failed or cancelled rollout is reported through
// the returned status, not an error: errors indicate that the platform could
// not be queried
func (c *Controller) PollToTerminal(ctx context.Context, attempt *Attempt) (Status, error) {
	logger := c.WithField("fleet", attempt.Fleet.Name)
	switch attempt.Fleet.Strategy {
	case fleet.StrategyFullReplacement:
		return c.pollRefresh(ctx, attempt, logger)
	case fleet.StrategyInPlaceRestart:
		return c.pollRestart(ctx, attempt, logger)
	}
	return "", trace.BadParameter("unsupported rollout strategy %q", attempt.Fleet.Strategy)
}

// observeProgress records a status observation on the attempt keeping the
// progress monotonically non-decreasing
func (a *Attempt) observeProgress(status Status, percent int64, reason string) {
	a.Status = status
	a.Reason = reason
	if percent > a.PercentComplete {
		a.PercentComplete = percent
	}
}

// describeGroup fetches the fleet's auto scaling group
func (c *Controller) describeGroup(ctx context.Context, groupName string) (*autoscaling.Group, error) {
	out, err := c.AutoScaling.DescribeAutoScalingGroupsWithContext(ctx,
		&autoscaling.DescribeAutoScalingGroupsInput{
			AutoScalingGroupNames: []*string{aws.String(groupName)},
		})
	if err != nil {
		return nil, trace.Wrap(err, "failed to describe auto scaling group %q", groupName)
	}
	if len(out.AutoScalingGroups) == 0 {
		return nil, trace.NotFound("auto scaling group %q not found", groupName)
	}
	return out.AutoScalingGroups[0], nil
}
