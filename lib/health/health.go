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

// Package health implements a bounded-timeout HTTP prober for the service
// health endpoints exposed through the load balancer.
package health

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/fleetops/fleetops/lib/defaults"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Sample is the result of probing one endpoint at one instant
type Sample struct {
	// URL is the probed endpoint
	URL string
	// Healthy is true if the endpoint responded with a 2xx status within
	// the probe timeout
	Healthy bool
	// Timestamp is when the probe completed
	Timestamp time.Time
}

// Config is the prober configuration
type Config struct {
	// Client is the HTTP client used for probes
	Client *http.Client
	// Timeout bounds a single probe
	Timeout time.Duration
	// Clock is used to timestamp samples
	Clock clockwork.Clock
}

// CheckAndSetDefaults validates the config and fills in defaults
func (c *Config) CheckAndSetDefaults() error {
	if c.Timeout == 0 {
		c.Timeout = defaults.HealthProbeTimeout
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Prober issues health probes against HTTP endpoints. A probe never returns
// an error: any failure mode yields an unhealthy sample, retry policy belongs
// to the caller
type Prober struct {
	Config
	log.FieldLogger
}

// New returns a new health prober
func New(config Config) (*Prober, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Prober{
		Config:      config,
		FieldLogger: log.WithField(trace.Component, "health"),
	}, nil
}

// Probe issues a single GET against the provided URL. Network errors,
// non-2xx statuses and timeouts all produce an unhealthy sample
func (p *Prober) Probe(ctx context.Context, url string) Sample {
	sample := Sample{URL: url, Timestamp: p.Clock.Now()}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		p.WithError(err).WithField("url", url).Warn("Failed to build probe request.")
		return sample
	}
	resp, err := p.Client.Do(req.WithContext(ctx))
	if err != nil {
		p.WithError(err).WithField("url", url).Debug("Probe failed.")
		return sample
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)
	sample.Healthy = resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	sample.Timestamp = p.Clock.Now()
	if !sample.Healthy {
		p.WithFields(log.Fields{
			"url":    url,
			"status": resp.StatusCode,
		}).Debug("Endpoint is not healthy.")
	}
	return sample
}
