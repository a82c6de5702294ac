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
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/envelope"
	"github.com/chartvault/mdcore/greeks"
	"github.com/chartvault/mdcore/quality"
)

var (
	optionsSymbol    string
	optionsDate      string
	optionsFormat    string
	optionsATMWindow int
	optionsDTEFocus  []int
)

var getOptionsCmd = &cobra.Command{
	Use:   "get-options",
	Short: "Fetch an options chain for an underlying on a trading day",
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()

		day, err := parseFlexibleTime(optionsDate)
		if err != nil {
			writeFailure(data.NewError(data.KindInvalidInput, "parse --date", err))
			return
		}

		eng, err := bootstrap()
		if err != nil {
			log.Fatal().Err(err).Msg("could not start engine")
		}
		defer eng.Close()

		ctx := context.Background()
		from := day
		to := day.Add(24 * time.Hour)
		result, err := eng.query.OptionsChain(ctx, optionsSymbol, from, to, optionsATMWindow, optionsDTEFocus)
		if err != nil {
			writeFailure(err)
			return
		}

		samples := make([]quality.OptionQuoteSample, 0, len(result.Rows))
		for _, r := range result.Rows {
			sample := quality.OptionQuoteSample{
				Contract: r.Contract,
				TS:       r.TS,
				Bid:      r.Low,
				Mid:      r.Close,
				Ask:      r.High,
			}
			if meta, err := greeks.ParseOCC(r.Contract); err == nil {
				sample.Expiration = meta.Expiration
				sample.OptionType = meta.OptionType
				sample.Strike = meta.Strike
			}
			samples = append(samples, sample)
		}

		report := quality.ValidateOptionQuotes(samples, time.Now())
		total := time.Since(start)
		meta := envelope.NewMeta(len(result.Rows), 0, total, total, envelope.CacheWarm, envelope.SourceHint(result.Source))
		meta.Quality = &report

		if optionsFormat == "jsonl" {
			sw := envelope.NewStreamWriter(os.Stdout)
			if err := sw.Header(envelope.TypeOptionsHeader, optionsSymbol); err != nil {
				log.Fatal().Err(err).Msg("could not write stream header")
			}
			for _, r := range result.Rows {
				if err := sw.Row(envelope.TypeOption, r); err != nil {
					log.Fatal().Err(err).Msg("could not write stream row")
				}
			}
			if err := sw.Footer(envelope.TypeOptionsFooter, meta); err != nil {
				log.Fatal().Err(err).Msg("could not write stream footer")
			}
			return
		}

		env := envelope.Success(result.Rows, meta)
		if err := envelope.Write(os.Stdout, env); err != nil {
			log.Fatal().Err(err).Msg("could not write envelope")
		}
	},
}

func init() {
	rootCmd.AddCommand(getOptionsCmd)
	getOptionsCmd.Flags().StringVar(&optionsSymbol, "symbol", "", "underlying symbol (required)")
	getOptionsCmd.Flags().StringVar(&optionsDate, "date", "", "trading day, RFC3339 or YYYY-MM-DD (required)")
	getOptionsCmd.Flags().StringVar(&optionsFormat, "format", "json", "json or jsonl")
	getOptionsCmd.Flags().IntVar(&optionsATMWindow, "atm-window", 0, "strikes above/below the underlying price to include (0 = no narrowing)")
	getOptionsCmd.Flags().IntSliceVar(&optionsDTEFocus, "dte-focus", nil, "days-to-expiry values to restrict the chain to (empty = all)")
	_ = getOptionsCmd.MarkFlagRequired("symbol")
	_ = getOptionsCmd.MarkFlagRequired("date")
}
