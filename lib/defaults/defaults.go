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

package defaults

import "time"

const (
	// StackName is the name of the CloudFormation stack the infrastructure
	// is provisioned from
	StackName = "InfrastructureStack"

	// Region is the AWS region the stack is deployed to unless overridden
	Region = "us-east-1"

	// FastAPIFleet is the name of the API service fleet
	FastAPIFleet = "fastapi"
	// GatewayFleet is the name of the gateway service fleet
	GatewayFleet = "gateway"
	// BothFleets selects both fleets, API first
	BothFleets = "both"

	// FastAPIASGOutput is the stack output with the API auto scaling group name
	FastAPIASGOutput = "FastAPIASGName"
	// GatewayASGOutput is the stack output with the gateway auto scaling group name
	GatewayASGOutput = "GatewayASGName"
	// ALBDNSOutput is the stack output with the load balancer DNS name
	ALBDNSOutput = "SwaggerAlbDnsName"
	// ConfigBucketOutput is the stack output with the configuration bucket name
	ConfigBucketOutput = "ConfigBucketName"
	// FastAPITargetGroupOutput is the stack output with the API target group ARN
	FastAPITargetGroupOutput = "FastAPITargetGroupArn"
	// GatewayTargetGroupOutput is the stack output with the gateway target group ARN
	GatewayTargetGroupOutput = "GatewayTargetGroupArn"

	// FastAPIHealthPath is the ALB path probed to check API health
	FastAPIHealthPath = "/swagger/api/docs"
	// GatewayHealthPath is the ALB path probed to check gateway health
	GatewayHealthPath = "/swagger/gw/api-docs"

	// FastAPIComposeDir is the compose directory on API instances
	FastAPIComposeDir = "/opt/app"
	// GatewayComposeDir is the compose directory on gateway instances
	GatewayComposeDir = "/opt/gateway"

	// HealthProbeTimeout bounds a single health probe
	HealthProbeTimeout = 10 * time.Second

	// RefreshPollInterval is the delay between instance refresh status queries
	RefreshPollInterval = 30 * time.Second

	// RefreshInstanceWarmup is how long a replaced instance warms up before
	// it counts towards refresh progress
	RefreshInstanceWarmup = 60 * time.Second

	// RefreshMinHealthyPercent allows total replacement: with a single-instance
	// group a rolling refresh cannot keep any capacity in service
	RefreshMinHealthyPercent = 0

	// RefreshCheckpointPercent is the single refresh checkpoint
	RefreshCheckpointPercent = 100

	// RefreshCheckpointDelay is how long a refresh pauses on a checkpoint
	RefreshCheckpointDelay = 60 * time.Second

	// CancelSettleDelay is how long to wait after cancelling a conflicting
	// refresh before starting a new one
	CancelSettleDelay = 10 * time.Second

	// InterFleetDelay separates consecutive fleet rollouts
	InterFleetDelay = 30 * time.Second

	// CommandPollInterval is the delay between remote command status queries
	CommandPollInterval = 5 * time.Second

	// CommandPollAttempts bounds remote command polling per fleet member
	CommandPollAttempts = 30

	// CommandTimeout bounds remote command execution on the instance
	CommandTimeout = 120 * time.Second

	// RestartSettleDelay is the pause between stopping and starting containers
	// during an in-place restart
	RestartSettleDelay = 5 * time.Second

	// RunShellScriptDocument is the SSM document used to run shell commands
	RunShellScriptDocument = "AWS-RunShellScript"

	// MonitorInterval is the default delay between monitor iterations
	MonitorInterval = 30 * time.Second

	// ComposeFileName is the compose file uploaded to the config bucket
	ComposeFileName = "docker-compose.yml"

	// EnvFileName is the optional environment file uploaded alongside the
	// compose file
	EnvFileName = ".env"

	// SSHUser is the login user on fleet instances
	SSHUser = "ec2-user"

	// HumanDateFormat is how timestamps are rendered in console reports
	HumanDateFormat = "Mon Jan _2 15:04 UTC"
)
