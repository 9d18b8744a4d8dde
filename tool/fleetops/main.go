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

package main

import (
	stdlog "log"
	"os"

	"github.com/fleetops/fleetops/lib/utils"
	"github.com/fleetops/fleetops/tool/common"
	"github.com/fleetops/fleetops/tool/fleetops/cli"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	utils.InitLogger(log.InfoLevel)
	stdlog.SetOutput(log.StandardLogger().Writer())
	app := kingpin.New("fleetops", "Operations tool for the API and gateway fleets: rollouts, health monitoring and configuration upload.")
	if err := run(app); err != nil {
		log.WithError(err).Debug("Command failed.")
		common.PrintError(err)
		os.Exit(1)
	}
}

func run(app *kingpin.Application) error {
	fleetops := cli.RegisterCommands(app)
	return cli.Run(fleetops)
}
