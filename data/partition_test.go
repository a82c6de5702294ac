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

import (
	"testing"
	"time"
)

func TestRefTableEquityFamily(t *testing.T) {
	ref := Ref{Key: PartitionKey{Category: CategoryStocks, Symbol: "AAPL", Date: time.Now()}}
	if got, want := ref.Table(), "bars_eq"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
}

func TestRefTableOptions(t *testing.T) {
	month := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	ref := Ref{Key: PartitionKey{Category: CategoryOptions, Symbol: "SPY", Date: month}}
	if got, want := ref.Table(), "op_aggs_spy_2024_06"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
}
