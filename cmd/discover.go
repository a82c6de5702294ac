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
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chartvault/mdcore/catalog"
)

// discoverCmd represents the discover command, grounded on the teacher's
// cmd/info.go glamour-rendered summary, repointed at the Universe
// Catalog instead of a Postgres library summary.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Summarize the known universe of symbols and strategy sets",
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := bootstrap()
		if err != nil {
			log.Fatal().Err(err).Msg("could not start engine")
		}
		defer eng.Close()

		summary := discoverySummary(eng.catalog)

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build renderer")
		}

		out, err := r.Render(summary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func discoverySummary(cat *catalog.Catalog) string {
	var b strings.Builder
	assets := cat.All()

	fmt.Fprintf(&b, "# Universe Catalog\n\n")
	fmt.Fprintf(&b, "%d symbols tracked.\n\n", len(assets))

	fmt.Fprintf(&b, "## By category\n\n")
	for _, c := range []string{"stocks", "etfs", "indices", "options"} {
		n := 0
		for _, a := range assets {
			if string(a.Category) == c {
				n++
			}
		}
		fmt.Fprintf(&b, "* %s: %d\n", c, n)
	}

	fmt.Fprintf(&b, "\n## Strategy sets\n\n")
	for _, s := range []catalog.Strategy{
		catalog.StrategyZeroDTE, catalog.StrategyLEAPS, catalog.StrategyWeeklyIncome,
		catalog.StrategyMomentum, catalog.StrategyVolatility, catalog.StrategyScalping, catalog.StrategySwing,
	} {
		set, err := cat.StrategySet(s)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "* %s: %d symbols\n", s, len(set))
	}

	return b.String()
}
