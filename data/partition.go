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

import "time"

// PartitionKey identifies a single physical partition file, per §3/§4.A.
type PartitionKey struct {
	Category    Category
	Symbol      string
	Date        time.Time
	Granularity Granularity
}

// Ref is a resolved, existing partition: its filesystem path plus the
// bucket it covers, used by the Query Engine to build UNION ALL SQL and
// by the Partition Router to report what it found.
type Ref struct {
	Key        PartitionKey
	Path       string
	BucketFrom time.Time
	BucketTo   time.Time
}

// Table returns the primary data table name this partition exposes for
// the given key, per §4.C.
func (r Ref) Table() string {
	if r.Key.Category.IsEquityFamily() {
		return "bars_eq"
	}
	return OptionAggsTable(r.Key.Symbol, r.Key.Date)
}
