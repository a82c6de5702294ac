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

// Package catalog holds the in-memory symbol -> metadata universe and
// its selectors, per §4.H. Grounded on the teacher's data.Asset field
// set (CompositeFigi carried straight across the domain boundary) and
// the classification logic in provider/polygon.go for what counts as
// an equity-family instrument.
package catalog

import (
	"context"
	"embed"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/figi"
)

//go:embed universe.toml
var embeddedUniverse embed.FS

// OptionStyle distinguishes American-style (exercisable any time before
// expiration) from European-style (exercisable only at expiration)
// contracts.
type OptionStyle string

const (
	StyleAmerican OptionStyle = "American"
	StyleEuropean OptionStyle = "European"
)

// Settlement distinguishes physical delivery from cash settlement.
type Settlement string

const (
	SettlementPhysical Settlement = "Physical"
	SettlementCash     Settlement = "Cash"
)

// Asset is one universe entry, per §4.H.
type Asset struct {
	Symbol             string         `toml:"symbol" json:"symbol"`
	Category           data.Category  `toml:"category" json:"category"`
	OptionStyle        OptionStyle    `toml:"option_style" json:"option_style"`
	Settlement         Settlement     `toml:"settlement" json:"settlement"`
	TypicalDailyVolume int64          `toml:"typical_daily_volume" json:"typical_daily_volume"`
	MinStrikeIncrement float64        `toml:"min_strike_increment" json:"min_strike_increment"`
	PreferredDTE       []int          `toml:"preferred_dte" json:"preferred_dte"`
	CanonicalRoot      string         `toml:"canonical_root" json:"canonical_root"`
	Priority           int            `toml:"priority" json:"priority"`
	CompositeFigi      string         `toml:"-" json:"composite_figi,omitempty"`
}

type universeFile struct {
	Assets []Asset `toml:"asset"`
}

// Catalog is an in-memory symbol -> Asset universe.
type Catalog struct {
	bySymbol map[string]Asset
	figi     *figi.Cache
}

// Load parses the embedded universe fixture into a Catalog.
func Load() (*Catalog, error) {
	b, err := embeddedUniverse.ReadFile("universe.toml")
	if err != nil {
		return nil, data.NewError(data.KindInternal, "read embedded universe fixture", err)
	}

	var uf universeFile
	if err := toml.Unmarshal(b, &uf); err != nil {
		return nil, data.NewError(data.KindInternal, "parse embedded universe fixture", err)
	}

	c := &Catalog{bySymbol: make(map[string]Asset, len(uf.Assets))}
	for _, a := range uf.Assets {
		c.bySymbol[a.Symbol] = a
	}
	return c, nil
}

// WithFigiCache attaches an optional FIGI cache used by Enrich.
func (c *Catalog) WithFigiCache(cache *figi.Cache) *Catalog {
	c.figi = cache
	return c
}

// Get returns the Asset for symbol.
func (c *Catalog) Get(symbol string) (Asset, bool) {
	a, ok := c.bySymbol[symbol]
	return a, ok
}

// All returns every catalog entry, in no particular order.
func (c *Catalog) All() []Asset {
	out := make([]Asset, 0, len(c.bySymbol))
	for _, a := range c.bySymbol {
		out = append(out, a)
	}
	return out
}

// Enrich fills CompositeFigi for every catalog entry missing one, first
// from the attached figi.Cache and, failing that, via client (which may
// be nil to skip live lookups entirely). Best-effort: a lookup failure
// is swallowed, leaving CompositeFigi empty for that symbol.
func (c *Catalog) Enrich(ctx context.Context, client *figi.Client) {
	if c.figi == nil {
		return
	}
	for symbol, a := range c.bySymbol {
		if a.CompositeFigi != "" {
			continue
		}
		if cached, ok := c.figi.Get(symbol); ok {
			a.CompositeFigi = cached
			c.bySymbol[symbol] = a
			continue
		}
		if client == nil {
			continue
		}
		if looked, err := client.LookupComposite(ctx, symbol); err == nil && looked != "" {
			a.CompositeFigi = looked
			c.figi.Set(symbol, looked)
			c.bySymbol[symbol] = a
		}
	}
}

// ByCategory returns every asset in category.
func (c *Catalog) ByCategory(cat data.Category) []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	sortBySymbol(out)
	return out
}

// PriorityAtLeast returns every asset with priority >= k.
func (c *Catalog) PriorityAtLeast(k int) []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Priority >= k {
			out = append(out, a)
		}
	}
	sortBySymbol(out)
	return out
}

func sortBySymbol(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
}

func sortByPriorityDesc(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Priority != assets[j].Priority {
			return assets[i].Priority > assets[j].Priority
		}
		return assets[i].Symbol < assets[j].Symbol
	})
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
