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

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"

	"github.com/cenkalti/backoff"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// startRefresh starts a full instance replacement through an ASG instance
// refresh. The refresh deliberately allows the group to drop to zero healthy
// capacity: with single-instance groups a rolling replacement cannot keep
// capacity in service, so the policy trades availability for a fast, simple
// completion
func (c *Controller) startRefresh(ctx context.Context, f fleet.Fleet, force bool, logger log.FieldLogger) (*Attempt, error) {
	existing, err := c.activeRefresh(ctx, f.GroupName)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if existing != nil {
		if !force {
			return nil, trace.AlreadyExists(
				"instance refresh %v is already in progress for group %q (status %v), re-run with --force to cancel it",
				aws.StringValue(existing.InstanceRefreshId), f.GroupName,
				aws.StringValue(existing.Status))
		}
		logger.WithField("refresh", aws.StringValue(existing.InstanceRefreshId)).
			Info("Cancelling in-progress instance refresh.")
		_, err = c.AutoScaling.CancelInstanceRefreshWithContext(ctx,
			&autoscaling.CancelInstanceRefreshInput{
				AutoScalingGroupName: aws.String(f.GroupName),
			})
		if err != nil {
			return nil, trace.Wrap(err, "failed to cancel instance refresh for group %q", f.GroupName)
		}
		if err := utils.SleepWithContext(ctx, c.Clock, c.SettleDelay); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	out, err := c.AutoScaling.StartInstanceRefreshWithContext(ctx,
		&autoscaling.StartInstanceRefreshInput{
			AutoScalingGroupName: aws.String(f.GroupName),
			Strategy:             aws.String(autoscaling.RefreshStrategyRolling),
			Preferences: &autoscaling.RefreshPreferences{
				InstanceWarmup:        aws.Int64(int64(defaults.RefreshInstanceWarmup.Seconds())),
				MinHealthyPercentage:  aws.Int64(defaults.RefreshMinHealthyPercent),
				CheckpointPercentages: []*int64{aws.Int64(defaults.RefreshCheckpointPercent)},
				CheckpointDelay:       aws.Int64(int64(defaults.RefreshCheckpointDelay.Seconds())),
			},
		})
	if err != nil {
		return nil, trace.Wrap(err, "failed to start instance refresh for group %q", f.GroupName)
	}
	attempt := &Attempt{
		Fleet:     f,
		ID:        aws.StringValue(out.InstanceRefreshId),
		Status:    StatusPending,
		StartedAt: c.Clock.Now(),
	}
	logger.WithField("refresh", attempt.ID).Info("Started instance refresh.")
	return attempt, nil
}

// pollRefresh queries the refresh status on a fixed interval until a
// terminal status is observed
func (c *Controller) pollRefresh(ctx context.Context, attempt *Attempt, logger log.FieldLogger) (Status, error) {
	err := utils.RetryWithInterval(ctx, utils.NewConstantBackOff(c.PollInterval), func() error {
		refresh, err := c.describeRefresh(ctx, attempt.Fleet.GroupName, attempt.ID)
		if err != nil {
			return &backoff.PermanentError{Err: trace.Wrap(err)}
		}
		status := Status(aws.StringValue(refresh.Status))
		percent := aws.Int64Value(refresh.PercentageComplete)
		reason := aws.StringValue(refresh.StatusReason)
		if !status.isKnown() {
			logger.WithField("status", status).Warn("Unrecognized refresh status, still polling.")
			return trace.CompareFailed("refresh %v has unrecognized status %q", attempt.ID, status)
		}
		attempt.observeProgress(status, percent, reason)
		if status.IsTerminal() {
			return nil
		}
		logger.WithFields(log.Fields{
			"status":  status,
			"percent": attempt.PercentComplete,
			"reason":  reason,
		}).Info("Instance refresh in progress.")
		return trace.CompareFailed("refresh %v still in progress", attempt.ID)
	})
	if err != nil {
		return "", trace.Wrap(err)
	}
	logger.WithFields(log.Fields{
		"status": attempt.Status,
		"reason": attempt.Reason,
	}).Info("Instance refresh reached terminal status.")
	return attempt.Status, nil
}

// activeRefresh returns the in-progress instance refresh for the group, or
// nil if there is none. The platform enforces at most one active refresh
// per group
func (c *Controller) activeRefresh(ctx context.Context, groupName string) (*autoscaling.InstanceRefresh, error) {
	out, err := c.AutoScaling.DescribeInstanceRefreshesWithContext(ctx,
		&autoscaling.DescribeInstanceRefreshesInput{
			AutoScalingGroupName: aws.String(groupName),
		})
	if err != nil {
		return nil, trace.Wrap(err, "failed to describe instance refreshes for group %q", groupName)
	}
	for _, refresh := range out.InstanceRefreshes {
		switch Status(aws.StringValue(refresh.Status)) {
		case StatusPending, StatusInProgress, StatusCancelling:
			return refresh, nil
		}
	}
	return nil, nil
}

// describeRefresh fetches a single instance refresh by id
func (c *Controller) describeRefresh(ctx context.Context, groupName, refreshID string) (*autoscaling.InstanceRefresh, error) {
	out, err := c.AutoScaling.DescribeInstanceRefreshesWithContext(ctx,
		&autoscaling.DescribeInstanceRefreshesInput{
			AutoScalingGroupName: aws.String(groupName),
			InstanceRefreshIds:   []*string{aws.String(refreshID)},
		})
	if err != nil {
		return nil, trace.Wrap(err, "failed to describe instance refresh %q", refreshID)
	}
	if len(out.InstanceRefreshes) == 0 {
		return nil, trace.NotFound("instance refresh %q not found", refreshID)
	}
	return out.InstanceRefreshes[0], nil
}
