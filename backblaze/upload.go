// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package backblaze mirrors manifest records and newly created partitions
// to Backblaze B2, per §4.I's off-box durability requirement. It is wired
// in as manifest.Tracker.Archive and never called on the hot query path,
// so every failure here is logged and returned rather than retried.
package backblaze

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/chartvault/mdcore/data"
)

// remoteKey joins remoteDir and the local file's base name with a forward
// slash regardless of host OS, since B2 object keys are POSIX paths.
func remoteKey(localPath, remoteDir string) string {
	return path.Join(remoteDir, filepath.Base(localPath))
}

// Upload authorizes against B2 using viper-sourced application
// credentials, resolves bucketName, and uploads the file at localPath
// under remoteDir. It is the sole Archive implementation manifest.Tracker
// wires in via NewWithArchive.
func Upload(localPath, bucketName, remoteDir string) error {
	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucketName).Msg("authorize backblaze failed")
		return data.NewError(data.KindInternal, "authorize backblaze", err)
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		log.Error().Err(err).Str("bucket", bucketName).Msg("lookup backblaze bucket failed")
		return data.NewError(data.KindInternal, "lookup backblaze bucket "+bucketName, err)
	}
	if bucket == nil {
		log.Error().Str("bucket", bucketName).Msg("backblaze bucket does not exist")
		return data.NewError(data.KindNotFound, "backblaze bucket "+bucketName, nil)
	}

	reader, err := os.Open(localPath)
	if err != nil {
		log.Error().Err(err).Str("path", localPath).Msg("open file for backblaze archival failed")
		return data.NewError(data.KindInternal, "open "+localPath+" for archival", err)
	}
	defer reader.Close()

	key := remoteKey(localPath, remoteDir)
	file, err := bucket.UploadFile(key, map[string]string{}, reader)
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("bucket", bucketName).Msg("upload to backblaze failed")
		return data.NewError(data.KindInternal, fmt.Sprintf("upload %s to backblaze bucket %s", key, bucketName), err)
	}

	log.Info().Str("key", file.Name).Int64("bytes", file.ContentLength).Str("fileID", file.ID).Msg("archived file to backblaze")
	return nil
}
