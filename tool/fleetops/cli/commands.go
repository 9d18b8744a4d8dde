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
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Application represents the command-line "fleetops" application and contains
// definitions of all its flags, arguments and subcommands
type Application struct {
	*kingpin.Application
	// Debug allows to run the command in debug mode
	Debug *bool
	// Region is the AWS region the stack is deployed to
	Region *string
	// StackName is the CloudFormation stack to read metadata from
	StackName *string
	// VersionCmd outputs the binary version
	VersionCmd VersionCmd
	// RefreshCmd replaces fleet instances via an instance refresh
	RefreshCmd RefreshCmd
	// RestartCmd restarts fleet containers in place
	RestartCmd RestartCmd
	// MonitorCmd continuously reports fleet health
	MonitorCmd MonitorCmd
	// StatusCmd prints a one-shot infrastructure report
	StatusCmd StatusCmd
	// UploadConfigCmd uploads fleet configuration to the config bucket
	UploadConfigCmd UploadConfigCmd
	// SSHCmd opens a shell on a fleet instance
	SSHCmd SSHCmd
}

// VersionCmd outputs the binary version
type VersionCmd struct {
	*kingpin.CmdClause
}

// RefreshCmd replaces all instances of the targeted fleets through an auto
// scaling group instance refresh
type RefreshCmd struct {
	*kingpin.CmdClause
	// Target selects the fleets to roll out
	Target *string
	// Force cancels a conflicting in-progress refresh before starting
	Force *bool
}

// RestartCmd restarts service containers on the targeted fleets' existing
// instances
type RestartCmd struct {
	*kingpin.CmdClause
	// Target selects the fleets to restart
	Target *string
}

// MonitorCmd continuously reports fleet health
type MonitorCmd struct {
	*kingpin.CmdClause
	// Interval is the delay between iterations
	Interval *time.Duration
	// Alerts emits error-level log lines for unhealthy fleets
	Alerts *bool
	// Detailed adds instance counts and refresh progress to reports
	Detailed *bool
	// Once exits after a single iteration
	Once *bool
}

// StatusCmd prints a one-shot report of stack outputs and fleet health
type StatusCmd struct {
	*kingpin.CmdClause
}

// UploadConfigCmd uploads a fleet's compose and environment files to the
// configuration bucket
type UploadConfigCmd struct {
	*kingpin.CmdClause
	// Target is the fleet the configuration belongs to
	Target *string
	// Dir is the local directory holding the files
	Dir *string
}

// SSHCmd opens an interactive shell on the first in-service instance of
// a fleet
type SSHCmd struct {
	*kingpin.CmdClause
	// Target is the fleet to connect to
	Target *string
	// KeyPath is an optional private key to authenticate with
	KeyPath *string
}
