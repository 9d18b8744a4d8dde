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
	"fmt"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// startRestart prepares an in-place container restart: the currently healthy
// fleet members are enumerated up front and become the fixed work list for
// polling. No platform-level rollout primitive is involved, so there is no
// conflict to detect or cancel
func (c *Controller) startRestart(ctx context.Context, f fleet.Fleet, logger log.FieldLogger) (*Attempt, error) {
	if c.SSM == nil {
		return nil, trace.BadParameter("missing parameter SSM, in-place restarts require a Systems Manager client")
	}
	group, err := c.describeGroup(ctx, f.GroupName)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	var members []string
	for _, instance := range group.Instances {
		if aws.StringValue(instance.LifecycleState) == "InService" &&
			aws.StringValue(instance.HealthStatus) == "Healthy" {
			members = append(members, aws.StringValue(instance.InstanceId))
		}
	}
	if len(members) == 0 {
		return nil, trace.NotFound("group %q has no healthy in-service members to restart", f.GroupName)
	}
	logger.WithField("members", members).Info("Starting in-place restart.")
	return &Attempt{
		Fleet:     f,
		Status:    StatusPending,
		StartedAt: c.Clock.Now(),
		members:   members,
	}, nil
}

// pollRestart restarts the fleet one member at a time: dispatch the restart
// command, then synchronously wait for its invocation to finish before moving
// to the next member. A member whose command fails or exceeds the polling
// budget makes the attempt terminally failed, remaining members are skipped
func (c *Controller) pollRestart(ctx context.Context, attempt *Attempt, logger log.FieldLogger) (Status, error) {
	total := len(attempt.members)
	for i, instanceID := range attempt.members {
		commandID, err := c.dispatchRestart(ctx, attempt.Fleet, instanceID)
		if err != nil {
			return "", trace.Wrap(err)
		}
		attempt.ID = commandID
		attempt.observeProgress(StatusInProgress, attempt.PercentComplete,
			fmt.Sprintf("restarting %v", instanceID))
		logger.WithFields(log.Fields{
			"instance": instanceID,
			"command":  commandID,
		}).Info("Dispatched restart command.")

		status, detail, err := c.waitCommand(ctx, commandID, instanceID, logger)
		if err != nil {
			return "", trace.Wrap(err)
		}
		if status != ssm.CommandInvocationStatusSuccess {
			reason := fmt.Sprintf("restart command %v on %v finished with status %v", commandID, instanceID, status)
			if detail != "" {
				reason = fmt.Sprintf("%v: %v", reason, detail)
			}
			attempt.observeProgress(StatusFailed, attempt.PercentComplete, reason)
			return StatusFailed, nil
		}
		attempt.observeProgress(StatusInProgress, int64((i+1)*100/total),
			fmt.Sprintf("restarted %v", instanceID))
		logger.WithFields(log.Fields{
			"instance": instanceID,
			"percent":  attempt.PercentComplete,
		}).Info("Member restarted.")
	}
	attempt.observeProgress(StatusSuccessful, 100, "all members restarted")
	return StatusSuccessful, nil
}

// dispatchRestart sends the compose restart script to a single fleet member
func (c *Controller) dispatchRestart(ctx context.Context, f fleet.Fleet, instanceID string) (string, error) {
	commands := []string{
		"set -e",
		fmt.Sprintf("cd %v", f.ComposeDir),
		"docker-compose stop",
		fmt.Sprintf("sleep %v", int(defaults.RestartSettleDelay.Seconds())),
		"docker-compose up -d",
	}
	out, err := c.SSM.SendCommandWithContext(ctx, &ssm.SendCommandInput{
		DocumentName: aws.String(defaults.RunShellScriptDocument),
		InstanceIds:  []*string{aws.String(instanceID)},
		Comment:      aws.String(fmt.Sprintf("fleetops restart of %v", f.Name)),
		Parameters: map[string][]*string{
			"commands": aws.StringSlice(commands),
		},
		TimeoutSeconds: aws.Int64(int64(defaults.CommandTimeout.Seconds())),
	})
	if err != nil {
		return "", trace.Wrap(err, "failed to send restart command to instance %q", instanceID)
	}
	return aws.StringValue(out.Command.CommandId), nil
}

// waitCommand polls a command invocation until it reaches a terminal status
// or the polling budget is exhausted. The returned error indicates a
// transport failure, a failed command is reported through the status
func (c *Controller) waitCommand(ctx context.Context, commandID, instanceID string, logger log.FieldLogger) (status string, detail string, err error) {
	err = utils.Retry(ctx, c.Clock, c.CommandPollInterval, c.CommandPollAttempts, func() error {
		out, err := c.SSM.GetCommandInvocationWithContext(ctx, &ssm.GetCommandInvocationInput{
			CommandId:  aws.String(commandID),
			InstanceId: aws.String(instanceID),
		})
		if err != nil {
			if isInvocationMissingError(err) {
				// the invocation takes a moment to register after SendCommand
				return utils.Continue("invocation %v not registered yet", commandID)
			}
			return utils.Abort(trace.Wrap(err, "failed to query command %q on instance %q", commandID, instanceID))
		}
		status = aws.StringValue(out.Status)
		switch status {
		case ssm.CommandInvocationStatusSuccess:
			return nil
		case ssm.CommandInvocationStatusFailed,
			ssm.CommandInvocationStatusCancelled,
			ssm.CommandInvocationStatusTimedOut:
			detail = aws.StringValue(out.StandardErrorContent)
			return nil
		case ssm.CommandInvocationStatusPending,
			ssm.CommandInvocationStatusInProgress,
			ssm.CommandInvocationStatusDelayed:
			return utils.Continue("command %v still %v on %v", commandID, status, instanceID)
		}
		logger.WithField("status", status).Warn("Unrecognized command status, still polling.")
		return utils.Continue("command %v has unrecognized status %q", commandID, status)
	})
	if err != nil {
		if _, ok := trace.Unwrap(err).(*utils.ContinueRetry); ok {
			// polling budget exhausted with the command still running: report
			// the member as timed out instead of erroring the whole operation
			return ssm.CommandInvocationStatusTimedOut, "polling budget exhausted", nil
		}
		return "", "", trace.Wrap(err)
	}
	return status, detail, nil
}

// isInvocationMissingError returns true if the error means the command
// invocation is not visible yet
func isInvocationMissingError(err error) bool {
	awsErr, ok := err.(awserr.Error)
	if !ok {
		return false
	}
	return awsErr.Code() == ssm.ErrCodeInvocationDoesNotExist
}
