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

// Package monitor implements the continuous fleet health monitor: a timer
// driven loop that probes the fleet health endpoints and optionally reports
// instance counts and rollout progress until interrupted.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/health"
	"github.com/fleetops/fleetops/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/elbv2"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// AutoScaling is the subset of the Auto Scaling service the monitor queries
type AutoScaling interface {
	DescribeAutoScalingGroupsWithContext(aws.Context, *autoscaling.DescribeAutoScalingGroupsInput, ...request.Option) (*autoscaling.DescribeAutoScalingGroupsOutput, error)
	DescribeInstanceRefreshesWithContext(aws.Context, *autoscaling.DescribeInstanceRefreshesInput, ...request.Option) (*autoscaling.DescribeInstanceRefreshesOutput, error)
}

// ELB is the subset of the load balancer service the monitor queries
type ELB interface {
	DescribeTargetHealthWithContext(aws.Context, *elbv2.DescribeTargetHealthInput, ...request.Option) (*elbv2.DescribeTargetHealthOutput, error)
}

// Prober issues a health probe against an endpoint
type Prober interface {
	Probe(ctx context.Context, url string) health.Sample
}

// Config is the monitor configuration. All settings are fixed at start and
// immutable for the process lifetime
type Config struct {
	// Fleets are the fleets to monitor, resolved once at startup
	Fleets []fleet.Fleet
	// Prober issues the health probes
	Prober Prober
	// AutoScaling is queried for instance counts and refresh progress when
	// Detailed is set
	AutoScaling AutoScaling
	// ELB is queried for target health when Detailed is set
	ELB ELB
	// Clock drives the iteration timer
	Clock clockwork.Clock
	// Interval is the delay between iterations
	Interval time.Duration
	// Alerts emits error-level log lines for unhealthy fleets
	Alerts bool
	// Detailed adds instance counts, target health and refresh progress to
	// each report
	Detailed bool
	// Once exits after a single iteration
	Once bool
	// Out is where reports are written
	Out io.Writer
}

// CheckAndSetDefaults validates the config and fills in defaults
func (c *Config) CheckAndSetDefaults() error {
	if len(c.Fleets) == 0 {
		return trace.BadParameter("missing parameter Fleets")
	}
	if c.Prober == nil {
		return trace.BadParameter("missing parameter Prober")
	}
	if c.Detailed && c.AutoScaling == nil {
		return trace.BadParameter("missing parameter AutoScaling, required for detailed reports")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Interval == 0 {
		c.Interval = defaults.MonitorInterval
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	return nil
}

// Monitor repeatedly probes fleet health on a timer until interrupted
type Monitor struct {
	Config
	log.FieldLogger
}

// New returns a new monitor
func New(config Config) (*Monitor, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Monitor{
		Config:      config,
		FieldLogger: log.WithField(trace.Component, "monitor"),
	}, nil
}

// Run executes monitor iterations until the context is cancelled, which is
// a graceful exit, not an error. With Once set a single iteration is
// performed
func (m *Monitor) Run(ctx context.Context) error {
	for {
		m.iteration(ctx)
		if m.Once {
			return nil
		}
		if err := utils.SleepWithContext(ctx, m.Clock, m.Interval); err != nil {
			m.Info("Monitor stopped.")
			return nil
		}
	}
}

func (m *Monitor) iteration(ctx context.Context) {
	fmt.Fprintf(m.Out, "=== Fleet status at %v ===\n",
		m.Clock.Now().UTC().Format(defaults.HumanDateFormat))
	for _, f := range m.Fleets {
		m.reportFleet(ctx, f)
	}
	fmt.Fprintln(m.Out)
}

func (m *Monitor) reportFleet(ctx context.Context, f fleet.Fleet) {
	if f.HealthURL == "" {
		fmt.Fprintf(m.Out, "%v: %v (stack not deployed?)\n", f.Name,
			color.YellowString("no endpoint"))
		return
	}
	sample := m.Prober.Probe(ctx, f.HealthURL)
	if sample.Healthy {
		fmt.Fprintf(m.Out, "%v: %v (%v)\n", f.Name,
			color.GreenString("healthy"), sample.URL)
	} else {
		fmt.Fprintf(m.Out, "%v: %v (%v)\n", f.Name,
			color.RedString("UNHEALTHY"), sample.URL)
		if m.Alerts {
			m.WithFields(log.Fields{
				"fleet": f.Name,
				"url":   sample.URL,
			}).Error("Fleet health check failed.")
		}
	}
	if m.Detailed {
		m.reportDetails(ctx, f)
	}
}

// reportDetails prints instance counts, target health and any in-progress
// refresh for the fleet. Detail queries failing does not fail the iteration,
// the next timer tick retries naturally
func (m *Monitor) reportDetails(ctx context.Context, f fleet.Fleet) {
	if f.GroupName == "" {
		return
	}
	group, err := m.describeGroup(ctx, f.GroupName)
	if err != nil {
		m.WithError(err).Warn("Failed to describe auto scaling group.")
		return
	}
	var inService, healthy int
	for _, instance := range group.Instances {
		if aws.StringValue(instance.LifecycleState) == "InService" {
			inService++
		}
		if aws.StringValue(instance.HealthStatus) == "Healthy" {
			healthy++
		}
	}
	fmt.Fprintf(m.Out, "    instances: desired=%v in-service=%v healthy=%v\n",
		aws.Int64Value(group.DesiredCapacity), inService, healthy)

	if m.ELB != nil && f.TargetGroupARN != "" {
		m.reportTargetHealth(ctx, f)
	}

	refresh, err := m.activeRefresh(ctx, f.GroupName)
	if err != nil {
		m.WithError(err).Warn("Failed to describe instance refreshes.")
		return
	}
	if refresh != nil {
		started := "recently"
		if refresh.StartTime != nil {
			started = humanize.Time(aws.TimeValue(refresh.StartTime))
		}
		fmt.Fprintf(m.Out, "    refresh: %v %v%% complete (started %v)\n",
			aws.StringValue(refresh.Status),
			aws.Int64Value(refresh.PercentageComplete),
			started)
	}
}

func (m *Monitor) reportTargetHealth(ctx context.Context, f fleet.Fleet) {
	out, err := m.ELB.DescribeTargetHealthWithContext(ctx, &elbv2.DescribeTargetHealthInput{
		TargetGroupArn: aws.String(f.TargetGroupARN),
	})
	if err != nil {
		m.WithError(err).Warn("Failed to describe target health.")
		return
	}
	for _, description := range out.TargetHealthDescriptions {
		fmt.Fprintf(m.Out, "    target %v: %v\n",
			aws.StringValue(description.Target.Id),
			aws.StringValue(description.TargetHealth.State))
	}
}

func (m *Monitor) describeGroup(ctx context.Context, groupName string) (*autoscaling.Group, error) {
	out, err := m.AutoScaling.DescribeAutoScalingGroupsWithContext(ctx,
		&autoscaling.DescribeAutoScalingGroupsInput{
			AutoScalingGroupNames: []*string{aws.String(groupName)},
		})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if len(out.AutoScalingGroups) == 0 {
		return nil, trace.NotFound("auto scaling group %q not found", groupName)
	}
	return out.AutoScalingGroups[0], nil
}

func (m *Monitor) activeRefresh(ctx context.Context, groupName string) (*autoscaling.InstanceRefresh, error) {
	out, err := m.AutoScaling.DescribeInstanceRefreshesWithContext(ctx,
		&autoscaling.DescribeInstanceRefreshesInput{
			AutoScalingGroupName: aws.String(groupName),
		})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	for _, refresh := range out.InstanceRefreshes {
		switch aws.StringValue(refresh.Status) {
		case autoscaling.InstanceRefreshStatusPending,
			autoscaling.InstanceRefreshStatusInProgress,
			autoscaling.InstanceRefreshStatusCancelling:
			return refresh, nil
		}
	}
	return nil, nil
}
