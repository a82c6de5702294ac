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
package catalog

import (
	"github.com/chartvault/mdcore/data"
)

// Strategy names a deterministic symbol-selection rule, per §4.H.
type Strategy string

const (
	StrategyZeroDTE      Strategy = "ZeroDTE"
	StrategyLEAPS        Strategy = "LEAPS"
	StrategyWeeklyIncome Strategy = "WeeklyIncome"
	StrategyMomentum     Strategy = "Momentum"
	StrategyVolatility   Strategy = "Volatility"
	StrategyScalping     Strategy = "Scalping"
	StrategySwing        Strategy = "Swing"
)

// zeroDTERoster is the hard-coded roster of majors for the ZeroDTE
// strategy, per §4.H: indices plus SPY/QQQ/IWM plus five mega-cap
// stocks.
var zeroDTERoster = []string{
	"SPX", "NDX", "RUT", "VIX",
	"SPY", "QQQ", "IWM",
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL",
}

// volatilityRoster is the fixed roster for the Volatility strategy,
// per §4.H.
var volatilityRoster = []string{"SPX", "VIX", "SPY", "QQQ", "UVXY", "SQQQ"}

// ZeroDTESet returns the catalog entries in the hard-coded ZeroDTE
// roster that exist in this catalog.
func (c *Catalog) ZeroDTESet() []Asset {
	return c.rosterSet(zeroDTERoster)
}

// LEAPSSet returns, per §4.H, every symbol whose preferred DTE list
// contains 180 or 365, top 50 by priority.
func (c *Catalog) LEAPSSet() []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if containsInt(a.PreferredDTE, 180) || containsInt(a.PreferredDTE, 365) {
			out = append(out, a)
		}
	}
	sortByPriorityDesc(out)
	return firstN(out, 50)
}

// WeeklyIncomeSet returns, per §4.H, all ETFs union priority >= 7,
// first 20 by symbol.
func (c *Catalog) WeeklyIncomeSet() []Asset {
	seen := make(map[string]bool)
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Category == data.CategoryETFs || a.Priority >= 7 {
			if !seen[a.Symbol] {
				seen[a.Symbol] = true
				out = append(out, a)
			}
		}
	}
	sortBySymbol(out)
	return firstN(out, 20)
}

// MomentumSet returns, per §4.H, stocks with priority >= 6, first 30 by
// symbol.
func (c *Catalog) MomentumSet() []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Category == data.CategoryStocks && a.Priority >= 6 {
			out = append(out, a)
		}
	}
	sortBySymbol(out)
	return firstN(out, 30)
}

// VolatilitySet returns the fixed Volatility roster entries present in
// this catalog, per §4.H.
func (c *Catalog) VolatilitySet() []Asset {
	return c.rosterSet(volatilityRoster)
}

// ScalpingSet selects the highest-liquidity names in the universe:
// priority >= 8, first 15 by priority then symbol. The distilled spec
// names "Scalping" as a valid strategy-set argument without specifying
// its rule; this fills that gap with the obvious reading of
// scalping's requirement (tight spreads, deep liquidity), recorded as
// an Open Question decision.
func (c *Catalog) ScalpingSet() []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Priority >= 8 {
			out = append(out, a)
		}
	}
	sortByPriorityDesc(out)
	return firstN(out, 15)
}

// SwingSet selects mid-priority names suited to a multi-day holding
// period: priority in [4,7], first 25 by symbol. Like ScalpingSet, this
// is an Open Question decision filling a gap the distilled spec leaves
// unstated.
func (c *Catalog) SwingSet() []Asset {
	var out []Asset
	for _, a := range c.bySymbol {
		if a.Priority >= 4 && a.Priority <= 7 {
			out = append(out, a)
		}
	}
	sortBySymbol(out)
	return firstN(out, 25)
}

// StrategySet dispatches to the named strategy's selector.
func (c *Catalog) StrategySet(s Strategy) ([]Asset, error) {
	switch s {
	case StrategyZeroDTE:
		return c.ZeroDTESet(), nil
	case StrategyLEAPS:
		return c.LEAPSSet(), nil
	case StrategyWeeklyIncome:
		return c.WeeklyIncomeSet(), nil
	case StrategyMomentum:
		return c.MomentumSet(), nil
	case StrategyVolatility:
		return c.VolatilitySet(), nil
	case StrategyScalping:
		return c.ScalpingSet(), nil
	case StrategySwing:
		return c.SwingSet(), nil
	default:
		return nil, data.NewError(data.KindInvalidInput, "unknown strategy "+string(s), nil)
	}
}

func (c *Catalog) rosterSet(roster []string) []Asset {
	var out []Asset
	for _, symbol := range roster {
		if a, ok := c.bySymbol[symbol]; ok {
			out = append(out, a)
		}
	}
	return out
}

func firstN(assets []Asset, n int) []Asset {
	if len(assets) <= n {
		return assets
	}
	return assets[:n]
}
