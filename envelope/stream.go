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
package envelope

import (
	"io"

	"github.com/goccy/go-json"
)

// RecordType discriminates one line of a record-framed stream, per §4.G.
type RecordType string

const (
	TypeBarsHeader    RecordType = "bars-header"
	TypeBar           RecordType = "bar"
	TypeBarsFooter    RecordType = "bars-footer"
	TypeOptionsHeader RecordType = "options-header"
	TypeOption        RecordType = "option"
	TypeOptionsFooter RecordType = "options-footer"
)

// Record is one newline-terminated document in a streamed response. Row
// carries a header's identifying fields or a single data row; Meta is
// only populated on footer records.
type Record struct {
	Type   RecordType `json:"type"`
	Schema string     `json:"schema,omitempty"`
	Symbol string     `json:"symbol,omitempty"`
	Row    any        `json:"row,omitempty"`
	Meta   *Meta      `json:"meta,omitempty"`
}

// StreamWriter emits a header record, a row record per data item, and a
// footer record, never buffering the full sequence — each call suspends
// only on the underlying io.Writer, matching the channel-drain shape of
// the teacher's provider.Dataset.Fetch.
type StreamWriter struct {
	enc *json.Encoder
}

// NewStreamWriter wraps w for record-framed output.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{enc: json.NewEncoder(w)}
}

// Header writes the opening record for a bars or options stream.
func (s *StreamWriter) Header(t RecordType, symbol string) error {
	return s.enc.Encode(Record{Type: t, Schema: Schema, Symbol: symbol})
}

// Row writes one data record.
func (s *StreamWriter) Row(t RecordType, row any) error {
	return s.enc.Encode(Record{Type: t, Row: row})
}

// Footer writes the closing record carrying the request's Meta.
func (s *StreamWriter) Footer(t RecordType, meta Meta) error {
	return s.enc.Encode(Record{Type: t, Meta: &meta})
}
