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

package configsync

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestConfigSync(t *testing.T) { check.TestingT(t) }

type SyncSuite struct{}

var _ = check.Suite(&SyncSuite{})

// TestUploadsComposeAndEnv verifies both configuration files land under the
// fleet prefix
func (s *SyncSuite) TestUploadsComposeAndEnv(c *check.C) {
	dir := c.MkDir()
	c.Assert(ioutil.WriteFile(filepath.Join(dir, "docker-compose.yml"),
		[]byte("version: '3'\n"), 0644), check.IsNil)
	c.Assert(ioutil.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PORT=8000\n"), 0644), check.IsNil)

	uploader := &mockUploader{}
	sync, err := New(Config{Uploader: uploader, Bucket: "config-bucket"})
	c.Assert(err, check.IsNil)

	c.Assert(sync.Upload(context.TODO(), "fastapi", dir), check.IsNil)
	c.Assert(uploader.keys, check.DeepEquals, []string{
		"fastapi/docker-compose.yml",
		"fastapi/.env",
	})
}

// TestEnvFileOptional verifies a missing environment file is skipped
func (s *SyncSuite) TestEnvFileOptional(c *check.C) {
	dir := c.MkDir()
	c.Assert(ioutil.WriteFile(filepath.Join(dir, "docker-compose.yml"),
		[]byte("version: '3'\n"), 0644), check.IsNil)

	uploader := &mockUploader{}
	sync, err := New(Config{Uploader: uploader, Bucket: "config-bucket"})
	c.Assert(err, check.IsNil)

	c.Assert(sync.Upload(context.TODO(), "gateway", dir), check.IsNil)
	c.Assert(uploader.keys, check.DeepEquals, []string{"gateway/docker-compose.yml"})
}

// TestComposeFileRequired verifies a missing compose file fails the upload
func (s *SyncSuite) TestComposeFileRequired(c *check.C) {
	uploader := &mockUploader{}
	sync, err := New(Config{Uploader: uploader, Bucket: "config-bucket"})
	c.Assert(err, check.IsNil)

	err = sync.Upload(context.TODO(), "fastapi", c.MkDir())
	c.Assert(err, check.NotNil)
	c.Assert(uploader.keys, check.HasLen, 0)
}

// TestRequiresBucket verifies the uploader refuses to construct without a
// resolved bucket
func (s *SyncSuite) TestRequiresBucket(c *check.C) {
	_, err := New(Config{Uploader: &mockUploader{}})
	c.Assert(trace.IsNotFound(err), check.Equals, true)
}

type mockUploader struct {
	keys []string
}

func (m *mockUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	m.keys = append(m.keys, aws.StringValue(input.Key))
	return &s3manager.UploadOutput{}, nil
}
