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
package data

// ManifestStatus is the lifecycle state recorded for one run_id.
type ManifestStatus string

const (
	StatusCreated        ManifestStatus = "created"
	StatusIngested       ManifestStatus = "ingested"
	StatusGreeksComputed ManifestStatus = "greeks-computed"
	StatusFailed         ManifestStatus = "failed"
)

// ManifestRecord is one append-only provenance entry, per §3/§4.I.
type ManifestRecord struct {
	RunID      string         `json:"run_id"`
	Started    int64          `json:"started"`
	Ended      int64          `json:"ended"`
	Category   Category       `json:"category"`
	Symbol     string         `json:"symbol"`
	Date       string         `json:"date"`
	SchemaHash string         `json:"schema_hash"`
	Status     ManifestStatus `json:"status"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RunSummary is the in-process bookkeeping result of one acquire/batch run,
// mirrored after the teacher's library.RunSummary concept.
type RunSummary struct {
	RunID           string `json:"run_id"`
	StartTime       int64  `json:"start_time"`
	EndTime         int64  `json:"end_time"`
	NumObservations int    `json:"num_observations"`
	NumErrors       int    `json:"num_errors"`
}
