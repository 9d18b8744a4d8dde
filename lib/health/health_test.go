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

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gopkg.in/check.v1"
)

func TestHealth(t *testing.T) { check.TestingT(t) }

type HealthSuite struct{}

var _ = check.Suite(&HealthSuite{})

func (s *HealthSuite) newProber(c *check.C, timeout time.Duration) *Prober {
	prober, err := New(Config{Timeout: timeout})
	c.Assert(err, check.IsNil)
	return prober
}

// TestHealthyEndpoint verifies a 2xx response yields a healthy sample
func (s *HealthSuite) TestHealthyEndpoint(c *check.C) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	defer server.Close()

	sample := s.newProber(c, time.Second).Probe(context.TODO(), server.URL)
	c.Assert(sample.Healthy, check.Equals, true)
	c.Assert(sample.URL, check.Equals, server.URL)
}

// TestUnhealthyStatus verifies non-2xx responses yield unhealthy samples
func (s *HealthSuite) TestUnhealthyStatus(c *check.C) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
	defer server.Close()

	sample := s.newProber(c, time.Second).Probe(context.TODO(), server.URL)
	c.Assert(sample.Healthy, check.Equals, false)
}

// TestUnreachableEndpoint verifies connection failures yield unhealthy
// samples, not errors
func (s *HealthSuite) TestUnreachableEndpoint(c *check.C) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	sample := s.newProber(c, time.Second).Probe(context.TODO(), server.URL)
	c.Assert(sample.Healthy, check.Equals, false)
}

// TestProbeTimeout verifies a slow endpoint is reported unhealthy once the
// probe timeout elapses
func (s *HealthSuite) TestProbeTimeout(c *check.C) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
	defer func() {
		close(release)
		server.Close()
	}()

	sample := s.newProber(c, 50*time.Millisecond).Probe(context.TODO(), server.URL)
	c.Assert(sample.Healthy, check.Equals, false)
}

// TestMalformedURL verifies invalid URLs yield unhealthy samples
func (s *HealthSuite) TestMalformedURL(c *check.C) {
	sample := s.newProber(c, time.Second).Probe(context.TODO(), "http://[malformed")
	c.Assert(sample.Healthy, check.Equals, false)
}
