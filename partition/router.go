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

// Package partition maps a (category, symbol, date, granularity) key to a
// physical partition file, resolves existing partitions spanning a date
// range, and idempotently creates new ones. There is no teacher file for
// sharding (the teacher is a single Postgres database); this package is
// grounded on the pure-function, constant-driven naming idiom in the
// teacher's data.DataTypes table and on the directory-bootstrap style of
// the pack's Klingon-tech-klingdex storage.New (os.MkdirAll + path.Join),
// per §4.A.
package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/manifest"
	"github.com/chartvault/mdcore/pool"
	"github.com/chartvault/mdcore/schema"
)

// Router maps partition keys to filesystem paths and creates partitions
// on demand.
type Router struct {
	Root     string
	Pool     *pool.Pool
	Schema   *schema.Manager
	Manifest *manifest.Tracker
}

// New creates a Router rooted at dataRoot, sharing pool, schema manager,
// and manifest tracker with the rest of the engine.
func New(dataRoot string, p *pool.Pool, s *schema.Manager, m *manifest.Tracker) *Router {
	return &Router{Root: dataRoot, Pool: p, Schema: s, Manifest: m}
}

// bucketStart returns the start of the time-bucket that owns ts for the
// given category/granularity, per the rules in §3. The earlier bucket
// owns a boundary timestamp (ts < next-bucket-start), so bucketStart is
// always a closed-open interval start.
func bucketStart(cat data.Category, gran data.Granularity, ts time.Time) time.Time {
	ts = ts.UTC()
	switch {
	case cat.IsEquityFamily() && gran == data.Granularity5Min:
		startYear := (ts.Year() / 5) * 5
		return time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	case cat.IsEquityFamily():
		// 1min, 1day, and tick-like equity granularities bucket yearly,
		// except tick/trade/quote which bucket monthly per §3.
		if gran.IsTickLike() {
			return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
		return time.Date(ts.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case cat == data.CategoryOptions && gran == data.Granularity5Min:
		startYear := (ts.Year() / 5) * 5
		return time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		// options × 1min, and any-family tick/trade/quote: monthly.
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func bucketEnd(cat data.Category, gran data.Granularity, start time.Time) time.Time {
	switch {
	case gran == data.Granularity5Min:
		return start.AddDate(5, 0, 0)
	case cat.IsEquityFamily() && !gran.IsTickLike():
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Name returns the partition filename for key. It is a pure function:
// two calls with equal inputs return byte-equal names (§8 invariant 6).
func Name(key data.PartitionKey) (string, error) {
	if !key.Category.Valid() {
		return "", data.NewError(data.KindInvalidInput, fmt.Sprintf("unknown category %q", key.Category), nil)
	}
	if !key.Granularity.Valid() {
		return "", data.NewError(data.KindInvalidInput, fmt.Sprintf("unknown granularity %q", key.Granularity), nil)
	}

	start := bucketStart(key.Category, key.Granularity, key.Date)
	symbol := data.SymbolSlug(key.Symbol)

	switch {
	case key.Granularity == data.Granularity5Min:
		return fmt.Sprintf("%s_%s_%d.db", symbol, key.Category, start.Year()), nil
	case key.Category.IsEquityFamily() && !key.Granularity.IsTickLike():
		return fmt.Sprintf("%s_%s_%d.db", symbol, key.Category, start.Year()), nil
	default:
		return fmt.Sprintf("%s_%s_%d_%02d.db", symbol, key.Category, start.Year(), int(start.Month())), nil
	}
}

// Path returns the full filesystem path for key under the router's root,
// rooted at Root/<category>/<filename>.
func (r *Router) Path(key data.PartitionKey) (string, error) {
	name, err := Name(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.Root, string(key.Category), name), nil
}

// Resolve enumerates the partitions spanning [from, to] for (category,
// symbol, granularity), in chronological order, skipping buckets that do
// not exist on disk (§4.A: "missing partitions are silently skipped").
// An inverted range (from > to) returns an empty, non-error result.
func (r *Router) Resolve(cat data.Category, symbol string, from, to time.Time, gran data.Granularity) ([]data.Ref, error) {
	if from.After(to) {
		return nil, nil
	}

	var refs []data.Ref
	cursor := bucketStart(cat, gran, from)
	seen := make(map[string]bool)

	for !cursor.After(to) {
		key := data.PartitionKey{Category: cat, Symbol: symbol, Date: cursor, Granularity: gran}
		path, err := r.Path(key)
		if err != nil {
			return nil, err
		}

		if !seen[path] {
			seen[path] = true
			if _, err := os.Stat(path); err == nil {
				refs = append(refs, data.Ref{
					Key:        key,
					Path:       path,
					BucketFrom: cursor,
					BucketTo:   bucketEnd(cat, gran, cursor),
				})
			} else if !os.IsNotExist(err) {
				return nil, data.NewError(data.KindInternal, "stat partition "+path, err)
			}
		}

		next := bucketEnd(cat, gran, cursor)
		if !next.After(cursor) {
			break // defensive: bucketEnd must always advance
		}
		cursor = next
	}

	return refs, nil
}

// Ensure idempotently creates the directory, file, schema, and manifest
// record for key, returning the resolved partition reference.
func (r *Router) Ensure(key data.PartitionKey) (data.Ref, error) {
	path, err := r.Path(key)
	if err != nil {
		return data.Ref{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return data.Ref{}, data.NewError(data.KindInternal, "create category directory", err)
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	conn, err := r.Pool.Open(path)
	if err != nil {
		return data.Ref{}, err
	}

	hash, err := r.Schema.Apply(conn, key)
	if err != nil {
		return data.Ref{}, err
	}

	if isNew && r.Manifest != nil {
		runID := manifest.NewRunID()
		if err := r.Manifest.Record(data.ManifestRecord{
			RunID:      runID,
			Started:    time.Now().UnixMilli(),
			Category:   key.Category,
			Symbol:     key.Symbol,
			Date:       key.Date.Format("2006-01-02"),
			SchemaHash: hash,
			Status:     data.StatusCreated,
		}); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to record manifest for new partition")
		}
		r.Manifest.ArchivePartition(path, key)
	}

	start := bucketStart(key.Category, key.Granularity, key.Date)
	return data.Ref{
		Key:        key,
		Path:       path,
		BucketFrom: start,
		BucketTo:   bucketEnd(key.Category, key.Granularity, start),
	}, nil
}
