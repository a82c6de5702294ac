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

// Package figi maintains an in-memory ticker -> composite FIGI cache and
// a thin OpenFIGI client used by catalog's optional enrichment step
// (§4.H). The teacher loaded this cache from a Postgres asset table;
// the engine has no such table, so Cache.LoadFromFile seeds it from a
// small operator-maintained JSON file instead, keeping the
// concurrent-map structure (alphadose/haxmap) the teacher chose.
package figi

import (
	"encoding/json"
	"os"

	"github.com/alphadose/haxmap"
)

// Cache is a concurrent ticker -> composite FIGI map.
type Cache struct {
	m *haxmap.Map[string, string]
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{m: haxmap.New[string, string]()}
}

// Get returns the cached composite FIGI for ticker, if any.
func (c *Cache) Get(ticker string) (string, bool) {
	return c.m.Get(ticker)
}

// Set records a ticker -> composite FIGI mapping.
func (c *Cache) Set(ticker, figi string) {
	c.m.Set(ticker, figi)
}

// LoadFromFile seeds the cache from a JSON object of ticker -> composite
// FIGI pairs. A missing file is not an error: the cache simply starts
// empty and enrichment falls through to the OpenFIGI client on demand.
func (c *Cache) LoadFromFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for ticker, figiCode := range m {
		c.m.Set(ticker, figiCode)
	}
	return nil
}
