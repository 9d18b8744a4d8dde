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

	"github.com/fleetops/fleetops/lib/fleet"
	"github.com/fleetops/fleetops/lib/utils"

	"github.com/gravitational/trace"
	"github.com/gravitational/version"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField(trace.Component, "cli")

// Run parses CLI arguments and executes an appropriate fleetops command
func Run(fleetops Application) error {
	log.Debugf("Executing: %v.", os.Args)
	cmd, err := fleetops.Parse(os.Args[1:])
	if err != nil {
		return trace.Wrap(err)
	}

	trace.SetDebug(*fleetops.Debug)
	level := logrus.InfoLevel
	if *fleetops.Debug {
		level = logrus.DebugLevel
	}
	utils.InitLogger(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	utils.WatchTerminationSignals(ctx, cancel, log)

	switch cmd {
	case fleetops.VersionCmd.FullCommand():
		ver := version.Get()
		fmt.Printf("Version:\t%v\nGit Commit:\t%v\n", ver.Version, ver.GitCommit)
		return nil
	case fleetops.RefreshCmd.FullCommand():
		return executeRollout(ctx, fleetops,
			*fleetops.RefreshCmd.Target,
			fleet.StrategyFullReplacement,
			*fleetops.RefreshCmd.Force)
	case fleetops.RestartCmd.FullCommand():
		return executeRollout(ctx, fleetops,
			*fleetops.RestartCmd.Target,
			fleet.StrategyInPlaceRestart,
			false)
	case fleetops.MonitorCmd.FullCommand():
		return executeMonitor(ctx, fleetops)
	case fleetops.StatusCmd.FullCommand():
		return executeStatus(ctx, fleetops)
	case fleetops.UploadConfigCmd.FullCommand():
		return executeUploadConfig(ctx, fleetops,
			*fleetops.UploadConfigCmd.Target,
			*fleetops.UploadConfigCmd.Dir)
	case fleetops.SSHCmd.FullCommand():
		return executeSSH(ctx, fleetops,
			*fleetops.SSHCmd.Target,
			*fleetops.SSHCmd.KeyPath)
	}
	return trace.NotFound("unknown command %v", cmd)
}
