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

// Package fleet describes the two service fleets this tool operates on and
// resolves their identities from stack metadata. Fleets are constructed fresh
// per invocation: metadata is re-resolved every run and the resolved group
// names are treated as immutable for the remainder of the run.
package fleet

import (
	"fmt"

	"github.com/fleetops/fleetops/lib/defaults"
	"github.com/fleetops/fleetops/lib/stack"

	"github.com/gravitational/trace"
)

// Strategy determines how a fleet rollout replaces running service code
type Strategy string

const (
	// StrategyFullReplacement replaces all fleet instances via an ASG
	// instance refresh
	StrategyFullReplacement Strategy = "full-replacement"
	// StrategyInPlaceRestart restarts service containers on the existing
	// instances via remote command execution
	StrategyInPlaceRestart Strategy = "in-place-restart"
)

// Fleet identifies one horizontally scaled service group
type Fleet struct {
	// Name is the fleet name, fastapi or gateway
	Name string
	// GroupName is the auto scaling group backing the fleet. Empty if the
	// infrastructure stack has not been deployed
	GroupName string
	// TargetGroupARN is the load balancer target group the fleet serves
	TargetGroupARN string
	// HealthURL is the endpoint probed to validate fleet health. Empty if
	// the load balancer DNS name could not be resolved
	HealthURL string
	// ComposeDir is the directory on fleet instances holding the compose file
	ComposeDir string
	// Strategy is how rollouts restart this fleet
	Strategy Strategy
}

// String returns a human friendly fleet description
func (f Fleet) String() string {
	return fmt.Sprintf("fleet(%v, group=%v)", f.Name, f.GroupName)
}

// definition carries the static attributes of a known fleet
type definition struct {
	groupOutput  string
	targetOutput string
	healthPath   string
	composeDir   string
}

var definitions = map[string]definition{
	defaults.FastAPIFleet: {
		groupOutput:  defaults.FastAPIASGOutput,
		targetOutput: defaults.FastAPITargetGroupOutput,
		healthPath:   defaults.FastAPIHealthPath,
		composeDir:   defaults.FastAPIComposeDir,
	},
	defaults.GatewayFleet: {
		groupOutput:  defaults.GatewayASGOutput,
		targetOutput: defaults.GatewayTargetGroupOutput,
		healthPath:   defaults.GatewayHealthPath,
		composeDir:   defaults.GatewayComposeDir,
	},
}

// Resolve builds the named fleet from stack metadata. The group name may
// resolve empty when the stack is not deployed, starting a rollout against
// such a fleet fails with a not found error
func Resolve(metadata stack.Metadata, name string, strategy Strategy) (*Fleet, error) {
	definition, ok := definitions[name]
	if !ok {
		return nil, trace.NotFound("unknown fleet %q, valid fleets are: %v, %v",
			name, defaults.FastAPIFleet, defaults.GatewayFleet)
	}
	fleet := &Fleet{
		Name:           name,
		GroupName:      metadata.Output(definition.groupOutput),
		TargetGroupARN: metadata.Output(definition.targetOutput),
		ComposeDir:     definition.composeDir,
		Strategy:       strategy,
	}
	if dnsName := metadata.Output(defaults.ALBDNSOutput); dnsName != "" {
		fleet.HealthURL = fmt.Sprintf("http://%v%v", dnsName, definition.healthPath)
	}
	return fleet, nil
}

// ResolveTarget expands a CLI target argument into the ordered list of fleets
// to operate on. The API fleet always precedes the gateway fleet since the
// gateway fronts the API
func ResolveTarget(metadata stack.Metadata, target string, strategy Strategy) ([]Fleet, error) {
	var names []string
	switch target {
	case defaults.FastAPIFleet, defaults.GatewayFleet:
		names = []string{target}
	case defaults.BothFleets:
		names = []string{defaults.FastAPIFleet, defaults.GatewayFleet}
	default:
		return nil, trace.BadParameter("unknown target %q, valid targets are: %v, %v, %v",
			target, defaults.FastAPIFleet, defaults.GatewayFleet, defaults.BothFleets)
	}
	fleets := make([]Fleet, 0, len(names))
	for _, name := range names {
		fleet, err := Resolve(metadata, name, strategy)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		fleets = append(fleets, *fleet)
	}
	return fleets, nil
}
