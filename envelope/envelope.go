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

// Package envelope assembles the versioned response document (or
// record-framed stream) described in §4.G, and maps error kinds to
// process exit codes per §6/§7. Serialized with goccy/go-json (already
// an indirect teacher dependency, used here directly for speed on large
// payloads), grounded on the channel-drain shape of the teacher's
// provider.Dataset.Fetch for the streaming writer.
package envelope

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/chartvault/mdcore/data"
)

// Schema is the fixed envelope-version constant carried on every
// response, per §4.G.
const Schema = "history.v1"

// Envelope is the single-document response shape: {schema, ok, data,
// meta, error?}.
type Envelope struct {
	Schema string      `json:"schema"`
	OK     bool        `json:"ok"`
	Data   any         `json:"data,omitempty"`
	Meta   Meta        `json:"meta"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the error arm of an envelope, per §4.G/§7.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Success builds an ok:true envelope carrying data and meta.
func Success(data any, meta Meta) Envelope {
	return Envelope{Schema: Schema, OK: true, Data: data, Meta: meta}
}

// Failure builds an ok:false envelope from err, classifying it via
// data.KindOf so the caller need not inspect err itself.
func Failure(err error, meta Meta) Envelope {
	kind := data.KindOf(err)
	return Envelope{
		Schema: Schema,
		OK:     false,
		Meta:   meta,
		Error: &ErrorBody{
			Code:    kind.Code(),
			Message: err.Error(),
			Hint:    hintOf(err),
		},
	}
}

// ExitCode returns the process exit code for err per §4.G/§6: 0 success,
// 64 usage error, 65 data error, 70 internal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return data.KindOf(err).ExitCode()
}

func hintOf(err error) string {
	var e *data.Error
	for err != nil {
		if de, ok := err.(*data.Error); ok {
			e = de
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return ""
	}
	return e.Hint
}

// Write encodes env as a single newline-terminated JSON document to w.
func Write(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	return enc.Encode(env)
}
