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
	"fmt"
	"os"
	"os/exec"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/gravitational/trace"
)

// executeSSH resolves the first in-service instance of the targeted fleet
// and execs the system ssh client against its public address
func executeSSH(ctx context.Context, fleetops Application, target, keyPath string) error {
	sess, err := newSession(fleetops)
	if err != nil {
		return trace.Wrap(err)
	}
	metadata, err := resolveMetadata(ctx, fleetops, sess)
	if err != nil {
		return trace.Wrap(err)
	}
	f, err := fleet.Resolve(metadata, target, fleet.StrategyInPlaceRestart)
	if err != nil {
		return trace.Wrap(err)
	}
	if f.GroupName == "" {
		return trace.NotFound(
			"fleet %q has no auto scaling group, deploy the infrastructure stack first", target)
	}

	instanceID, err := firstInServiceInstance(ctx, autoscaling.New(sess), f.GroupName)
	if err != nil {
		return trace.Wrap(err)
	}
	address, err := publicAddress(ctx, ec2.New(sess), instanceID)
	if err != nil {
		return trace.Wrap(err)
	}

	args := []string{}
	if keyPath != "" {
		args = append(args, "-i", keyPath)
	}
	args = append(args, fmt.Sprintf("%v@%v", defaults.SSHUser, address))
	log.WithField("instance", instanceID).Infof("Connecting to %v.", address)
	cmd := exec.CommandContext(ctx, "ssh", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return trace.Wrap(cmd.Run())
}

func firstInServiceInstance(ctx context.Context, client *autoscaling.AutoScaling, groupName string) (string, error) {
	out, err := client.DescribeAutoScalingGroupsWithContext(ctx,
		&autoscaling.DescribeAutoScalingGroupsInput{
			AutoScalingGroupNames: []*string{aws.String(groupName)},
		})
	if err != nil {
		return "", trace.Wrap(err, "failed to describe auto scaling group %q", groupName)
	}
	if len(out.AutoScalingGroups) == 0 {
		return "", trace.NotFound("auto scaling group %q not found", groupName)
	}
	for _, instance := range out.AutoScalingGroups[0].Instances {
		if aws.StringValue(instance.LifecycleState) == "InService" {
			return aws.StringValue(instance.InstanceId), nil
		}
	}
	return "", trace.NotFound("group %q has no in-service instances", groupName)
}

func publicAddress(ctx context.Context, client *ec2.EC2, instanceID string) (string, error) {
	out, err := client.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(instanceID)},
	})
	if err != nil {
		return "", trace.Wrap(err, "failed to describe instance %q", instanceID)
	}
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if address := aws.StringValue(instance.PublicIpAddress); address != "" {
				return address, nil
			}
		}
	}
	return "", trace.NotFound("instance %q has no public address", instanceID)
}
