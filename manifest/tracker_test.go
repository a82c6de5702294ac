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
package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/chartvault/mdcore/data"
)

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "manifests")
	tr, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected manifest directory to exist: %v", err)
	}
	if tr.Archive != nil {
		t.Error("New should leave Archive nil")
	}
}

func TestTrackerRecordWritesFile(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := data.ManifestRecord{
		RunID:    "test-run-1",
		Category: data.CategoryStocks,
		Symbol:   "AAPL",
		Status:   data.StatusIngested,
	}
	if err := tr.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	path := filepath.Join(dir, "test-run-1.json")
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected manifest file at %s: %v", path, err)
	}

	var got data.ManifestRecord
	if err := json.Unmarshal(buf, &got); err != nil {
		t.Fatalf("unmarshal manifest record: %v", err)
	}
	if got.RunID != "test-run-1" || got.Symbol != "AAPL" || got.Status != data.StatusIngested {
		t.Errorf("round-tripped record mismatch: %+v", got)
	}
	if got.Ended == 0 {
		t.Error("expected Record to fill in Ended when zero")
	}
}

func TestTrackerRecordGeneratesRunID(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := tr.Record(data.ManifestRecord{Symbol: "SPY"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one manifest file, got %d", len(entries))
	}
	if entries[0].Name() == ".json" {
		t.Error("expected a generated run_id in the filename")
	}
}

func TestNewRunIDUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if a == b {
		t.Error("expected distinct run IDs")
	}
	if a == "" {
		t.Error("expected non-empty run ID")
	}
}

func TestArchivePartitionNoopWithoutArchive(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.ArchivePartition("/some/path", data.PartitionKey{Category: data.CategoryStocks})
}
