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
	"fmt"

	"github.com/fleetops/fleetops/lib/defaults"

	"gopkg.in/alecthomas/kingpin.v2"
)

// RegisterCommands registers all fleetops tool flags, arguments and subcommands
func RegisterCommands(app *kingpin.Application) Application {
	fleetops := Application{
		Application: app,
	}

	allTargets := []string{defaults.FastAPIFleet, defaults.GatewayFleet, defaults.BothFleets}
	singleTargets := []string{defaults.FastAPIFleet, defaults.GatewayFleet}

	fleetops.Debug = app.Flag("debug", "Enable debug mode.").Bool()
	fleetops.Region = app.Flag("region", "AWS region the infrastructure stack is deployed to.").Envar("AWS_REGION").Default(defaults.Region).String()
	fleetops.StackName = app.Flag("stack", "CloudFormation stack to read metadata from.").Default(defaults.StackName).String()

	fleetops.VersionCmd.CmdClause = app.Command("version", "Print version information and exit.")

	fleetops.RefreshCmd.CmdClause = app.Command("refresh", "Replace all instances of the targeted fleets via an auto scaling group instance refresh.")
	fleetops.RefreshCmd.Target = fleetops.RefreshCmd.Arg("target", fmt.Sprintf("Fleet to roll out: %v.", allTargets)).Required().Enum(allTargets...)
	fleetops.RefreshCmd.Force = fleetops.RefreshCmd.Flag("force", "Cancel a conflicting in-progress refresh before starting a new one.").Bool()

	fleetops.RestartCmd.CmdClause = app.Command("restart", "Restart service containers on the targeted fleets' existing instances.")
	fleetops.RestartCmd.Target = fleetops.RestartCmd.Arg("target", fmt.Sprintf("Fleet to restart: %v.", allTargets)).Required().Enum(allTargets...)

	fleetops.MonitorCmd.CmdClause = app.Command("monitor", "Continuously report fleet health.")
	fleetops.MonitorCmd.Interval = fleetops.MonitorCmd.Flag("interval", "Delay between iterations.").Default(defaults.MonitorInterval.String()).Duration()
	fleetops.MonitorCmd.Alerts = fleetops.MonitorCmd.Flag("alerts", "Emit error-level log lines for unhealthy fleets.").Bool()
	fleetops.MonitorCmd.Detailed = fleetops.MonitorCmd.Flag("detailed", "Include instance counts, target health and refresh progress.").Bool()
	fleetops.MonitorCmd.Once = fleetops.MonitorCmd.Flag("once", "Exit after a single iteration.").Bool()

	fleetops.StatusCmd.CmdClause = app.Command("status", "Print a one-shot report of stack outputs and fleet health.")

	fleetops.UploadConfigCmd.CmdClause = app.Command("upload-config", "Upload a fleet's compose and environment files to the configuration bucket.")
	fleetops.UploadConfigCmd.Target = fleetops.UploadConfigCmd.Arg("target", fmt.Sprintf("Fleet the configuration belongs to: %v.", singleTargets)).Required().Enum(singleTargets...)
	fleetops.UploadConfigCmd.Dir = fleetops.UploadConfigCmd.Flag("dir", "Local directory holding the configuration files.").Default(".").String()

	fleetops.SSHCmd.CmdClause = app.Command("ssh", "Open a shell on the first in-service instance of a fleet.")
	fleetops.SSHCmd.Target = fleetops.SSHCmd.Arg("target", fmt.Sprintf("Fleet to connect to: %v.", singleTargets)).Required().Enum(singleTargets...)
	fleetops.SSHCmd.KeyPath = fleetops.SSHCmd.Flag("identity", "Private key to authenticate with.").Short('i').String()

	return fleetops
}
