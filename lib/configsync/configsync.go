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

// Package configsync uploads service configuration to the S3 bucket fleet
// instances pull from at boot. The bucket layout is <fleet>/docker-compose.yml
// plus an optional <fleet>/.env.
package configsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fleetops/fleetops/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// Uploader is an interface representing the S3 upload manager
type Uploader interface {
	UploadWithContext(aws.Context, *s3manager.UploadInput, ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Config is the config uploader configuration
type Config struct {
	// Uploader performs the S3 uploads
	Uploader Uploader
	// Bucket is the configuration bucket name
	Bucket string
}

// CheckAndSetDefaults validates the config
func (c *Config) CheckAndSetDefaults() error {
	if c.Uploader == nil {
		return trace.BadParameter("missing parameter Uploader")
	}
	if c.Bucket == "" {
		return trace.NotFound(
			"configuration bucket is not known, deploy the infrastructure stack first")
	}
	return nil
}

// Sync uploads fleet configuration files to the config bucket
type Sync struct {
	Config
	log.FieldLogger
}

// New returns a new config uploader
func New(config Config) (*Sync, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Sync{
		Config:      config,
		FieldLogger: log.WithField(trace.Component, "configsync"),
	}, nil
}

// NewFromSession returns a config uploader bound to the given AWS session
func NewFromSession(sess *session.Session, bucket string) (*Sync, error) {
	return New(Config{
		Uploader: s3manager.NewUploader(sess),
		Bucket:   bucket,
	})
}

// Upload pushes the compose file and, if present, the environment file from
// dir to the fleet's prefix in the config bucket. The compose file is
// required, the environment file is optional
func (s *Sync) Upload(ctx context.Context, fleetName, dir string) error {
	composePath := filepath.Join(dir, defaults.ComposeFileName)
	if err := s.uploadFile(ctx, fleetName, composePath); err != nil {
		return trace.Wrap(err)
	}
	envPath := filepath.Join(dir, defaults.EnvFileName)
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			s.Debugf("No %v in %v, skipping.", defaults.EnvFileName, dir)
			return nil
		}
		return trace.ConvertSystemError(err)
	}
	return trace.Wrap(s.uploadFile(ctx, fleetName, envPath))
}

func (s *Sync) uploadFile(ctx context.Context, fleetName, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer file.Close()
	key := fmt.Sprintf("%v/%v", fleetName, filepath.Base(path))
	_, err = s.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return trace.Wrap(err, "failed to upload %v to s3://%v/%v", path, s.Bucket, key)
	}
	s.WithFields(log.Fields{
		"path": path,
		"key":  key,
	}).Info("Uploaded configuration file.")
	return nil
}
