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

package fleet

import (
	"testing"

	"github.com/fleetops/fleetops/lib/stack"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestFleet(t *testing.T) { check.TestingT(t) }

type FleetSuite struct{}

var _ = check.Suite(&FleetSuite{})

func deployedMetadata() stack.Metadata {
	return stack.Metadata{
		"FastAPIASGName":        "api-asg",
		"GatewayASGName":        "gw-asg",
		"SwaggerAlbDnsName":     "alb.example.com",
		"FastAPITargetGroupArn": "arn:api",
		"GatewayTargetGroupArn": "arn:gw",
	}
}

// TestResolvesFleet verifies fleet attributes resolve from stack metadata
func (s *FleetSuite) TestResolvesFleet(c *check.C) {
	fleet, err := Resolve(deployedMetadata(), "fastapi", StrategyFullReplacement)
	c.Assert(err, check.IsNil)
	c.Assert(fleet.GroupName, check.Equals, "api-asg")
	c.Assert(fleet.TargetGroupARN, check.Equals, "arn:api")
	c.Assert(fleet.HealthURL, check.Equals, "http://alb.example.com/swagger/api/docs")
	c.Assert(fleet.ComposeDir, check.Equals, "/opt/app")
	c.Assert(fleet.Strategy, check.Equals, StrategyFullReplacement)
}

// TestResolvesGatewayFleet verifies the gateway fleet resolves its own
// outputs and health path
func (s *FleetSuite) TestResolvesGatewayFleet(c *check.C) {
	fleet, err := Resolve(deployedMetadata(), "gateway", StrategyInPlaceRestart)
	c.Assert(err, check.IsNil)
	c.Assert(fleet.GroupName, check.Equals, "gw-asg")
	c.Assert(fleet.HealthURL, check.Equals, "http://alb.example.com/swagger/gw/api-docs")
	c.Assert(fleet.ComposeDir, check.Equals, "/opt/gateway")
}

// TestResolvesUndeployedFleet verifies that absent outputs resolve to empty
// attributes instead of failing
func (s *FleetSuite) TestResolvesUndeployedFleet(c *check.C) {
	fleet, err := Resolve(stack.Metadata{}, "fastapi", StrategyFullReplacement)
	c.Assert(err, check.IsNil)
	c.Assert(fleet.GroupName, check.Equals, "")
	c.Assert(fleet.HealthURL, check.Equals, "")
}

// TestUnknownFleet verifies unknown fleet names are rejected
func (s *FleetSuite) TestUnknownFleet(c *check.C) {
	_, err := Resolve(deployedMetadata(), "frontend", StrategyFullReplacement)
	c.Assert(trace.IsNotFound(err), check.Equals, true)
}

// TestResolveTargetBoth verifies that the both target expands to the API
// fleet first
func (s *FleetSuite) TestResolveTargetBoth(c *check.C) {
	fleets, err := ResolveTarget(deployedMetadata(), "both", StrategyFullReplacement)
	c.Assert(err, check.IsNil)
	c.Assert(fleets, check.HasLen, 2)
	c.Assert(fleets[0].Name, check.Equals, "fastapi")
	c.Assert(fleets[1].Name, check.Equals, "gateway")
}

// TestResolveTargetSingle verifies single fleet targets
func (s *FleetSuite) TestResolveTargetSingle(c *check.C) {
	fleets, err := ResolveTarget(deployedMetadata(), "gateway", StrategyInPlaceRestart)
	c.Assert(err, check.IsNil)
	c.Assert(fleets, check.HasLen, 1)
	c.Assert(fleets[0].Name, check.Equals, "gateway")
	c.Assert(fleets[0].Strategy, check.Equals, StrategyInPlaceRestart)
}

// TestResolveTargetUnknown verifies unknown targets are rejected as bad
// parameters
func (s *FleetSuite) TestResolveTargetUnknown(c *check.C) {
	_, err := ResolveTarget(deployedMetadata(), "all", StrategyFullReplacement)
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}
