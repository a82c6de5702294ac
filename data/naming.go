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
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// SymbolSlug normalizes a ticker/underlying into the lowercase,
// underscore-joined form used in table, view, and partition-file names.
// Table/view names derived this way are the only dynamic-SQL identifier
// fragments the engine ever interpolates (§9 redesign note): they come
// from this trusted, pure function, never from arbitrary request strings.
func SymbolSlug(symbol string) string {
	s := slug.Make(strings.ToLower(symbol))
	return strings.ReplaceAll(s, "-", "_")
}

// OptionAggsTable returns the per-month options bars table name for a
// symbol, per §4.C: op_aggs_<symbol>_<YYYY>_<MM>.
func OptionAggsTable(symbol string, month time.Time) string {
	return fmt.Sprintf("op_aggs_%s_%04d_%02d", SymbolSlug(symbol), month.Year(), int(month.Month()))
}

// OptionGreeksTable returns the sibling Greeks table name for a symbol's
// monthly options partition, per §4.C: op_iv_greeks_<symbol>_<YYYY>_<MM>.
func OptionGreeksTable(symbol string, month time.Time) string {
	return fmt.Sprintf("op_iv_greeks_%s_%04d_%02d", SymbolSlug(symbol), month.Year(), int(month.Month()))
}

// OptionMetaTable returns the per-month contract metadata table name.
func OptionMetaTable(symbol string, month time.Time) string {
	return fmt.Sprintf("op_meta_%s_%04d_%02d", SymbolSlug(symbol), month.Year(), int(month.Month()))
}

// UnifiedAggsView returns the v_op_aggs_<symbol> UnifiedView name, per §3.
func UnifiedAggsView(symbol string) string {
	return fmt.Sprintf("v_op_aggs_%s", SymbolSlug(symbol))
}

// UnifiedGreeksView returns the v_op_greeks_<symbol> UnifiedView name.
func UnifiedGreeksView(symbol string) string {
	return fmt.Sprintf("v_op_greeks_%s", SymbolSlug(symbol))
}
