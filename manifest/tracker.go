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

// Package manifest records append-only provenance for every partition
// creation (carrying the hash of the schema DDL applied to it) and every
// acquire-data run. A Greeks batch does not write a record of its own;
// its failure shows only as the acquire-data record's failed status.
// Grounded on the
// run-bookkeeping fields of the teacher's library.Subscription (LastRun,
// TotalRecords, NumRecordsLastImport) but rewritten as one immutable JSON
// file per run_id instead of mutable database columns, per §4.I: "the
// tracker never reads them back for control decisions."
package manifest

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chartvault/mdcore/backblaze"
	"github.com/chartvault/mdcore/data"
)

// Tracker writes manifest records into a directory tree, one file per
// run_id, and optionally mirrors them (and newly created partitions) to
// Backblaze B2 for off-box durability.
type Tracker struct {
	Dir   string
	Filer data.Filer

	// Archive, when non-nil, is called with the local file path of every
	// manifest record and every newly created partition. It is wired to
	// backblaze.Upload by NewWithArchive; nil disables archival.
	Archive func(path, remoteDir string) error
}

// New creates a Tracker rooted at dir, creating it if necessary. Writes
// go through a data.FSFiler rooted at dir, per §4.I.
func New(dir string) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, data.NewError(data.KindInternal, "create manifest directory", err)
	}
	return &Tracker{Dir: dir, Filer: &data.FSFiler{BasePath: dir}}, nil
}

// NewWithArchive is New plus best-effort Backblaze B2 mirroring of every
// record and created partition, grounded on backblaze/upload.go.
func NewWithArchive(dir, bucket string) (*Tracker, error) {
	t, err := New(dir)
	if err != nil {
		return nil, err
	}
	t.Archive = func(path, remoteDir string) error {
		return backblaze.Upload(path, bucket, remoteDir)
	}
	return t, nil
}

// NewRunID generates a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record appends one manifest entry. The record is immutable once
// written: callers construct a fresh data.ManifestRecord per event rather
// than mutating a prior one.
func (t *Tracker) Record(rec data.ManifestRecord) error {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.Ended == 0 {
		rec.Ended = time.Now().UnixMilli()
	}

	buf, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return data.NewError(data.KindInternal, "marshal manifest record", err)
	}

	name := fmt.Sprintf("%s.json", rec.RunID)
	fn, err := t.Filer.CreateFile(name, buf)
	if err != nil {
		return data.NewError(data.KindInternal, "write manifest record", err)
	}

	if t.Archive != nil {
		if err := t.Archive(fn, string(rec.Category)); err != nil {
			log.Error().Err(err).Str("run_id", rec.RunID).Msg("manifest archival to backblaze failed, local record retained")
		}
	}

	return nil
}

// ArchivePartition mirrors a freshly created partition file to B2, when
// archival is configured. Best-effort: failures are logged, never fatal.
func (t *Tracker) ArchivePartition(path string, key data.PartitionKey) {
	if t.Archive == nil {
		return
	}
	if err := t.Archive(path, string(key.Category)); err != nil {
		log.Error().Err(err).Str("path", path).Msg("partition archival to backblaze failed")
	}
}
