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
	"github.com/chartvault/mdcore/quality"
)

var (
	barsSymbol      string
	barsFrom        string
	barsTo          string
	barsGranularity string
	barsFormat      string
)

var getBarsCmd = &cobra.Command{
	Use:   "get-bars",
	Short: "Fetch equity/ETF/index bars for a symbol over a date range",
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()

		from, to, err := parseRange(barsFrom, barsTo)
		if err != nil {
			writeFailure(err)
			return
		}

		gran, err := parseGranularity(barsGranularity)
		if err != nil {
			writeFailure(err)
			return
		}

		eng, err := bootstrap()
		if err != nil {
			log.Fatal().Err(err).Msg("could not start engine")
		}
		defer eng.Close()

		asset, ok := eng.catalog.Get(barsSymbol)
		if !ok {
			writeFailure(data.NewError(data.KindNotFound, "symbol not in catalog: "+barsSymbol, nil))
			return
		}

		ctx := context.Background()
		result, err := eng.query.RangeBars(ctx, asset.Category, barsSymbol, from, to, gran)
		if err != nil {
			writeFailure(err)
			return
		}

		bars := make([]data.EquityBar, 0, len(result.Rows))
		for _, row := range result.Rows {
			bars = append(bars, rowToEquityBar(row))
		}

		report := quality.ValidateEquityBars(bars)
		total := time.Since(start)
		meta := envelope.NewMeta(len(bars), 0, total, total, envelope.CacheWarm, envelope.SourceHint(result.Source))
		meta.Quality = &report

		if barsFormat == "jsonl" {
			sw := envelope.NewStreamWriter(os.Stdout)
			if err := sw.Header(envelope.TypeBarsHeader, barsSymbol); err != nil {
				log.Fatal().Err(err).Msg("could not write stream header")
			}
			for _, b := range bars {
				if err := sw.Row(envelope.TypeBar, b); err != nil {
					log.Fatal().Err(err).Msg("could not write stream row")
				}
			}
			if err := sw.Footer(envelope.TypeBarsFooter, meta); err != nil {
				log.Fatal().Err(err).Msg("could not write stream footer")
			}
			return
		}

		env := envelope.Success(bars, meta)
		if err := envelope.Write(os.Stdout, env); err != nil {
			log.Fatal().Err(err).Msg("could not write envelope")
		}
	},
}

func init() {
	rootCmd.AddCommand(getBarsCmd)
	getBarsCmd.Flags().StringVar(&barsSymbol, "symbol", "", "symbol to fetch bars for (required)")
	getBarsCmd.Flags().StringVar(&barsFrom, "from", "", "range start, RFC3339 or YYYY-MM-DD (required)")
	getBarsCmd.Flags().StringVar(&barsTo, "to", "", "range end, RFC3339 or YYYY-MM-DD (required)")
	getBarsCmd.Flags().StringVar(&barsGranularity, "granularity", "1d", "1m, 5m, or 1d")
	getBarsCmd.Flags().StringVar(&barsFormat, "format", "json", "json or jsonl")
	_ = getBarsCmd.MarkFlagRequired("symbol")
	_ = getBarsCmd.MarkFlagRequired("from")
	_ = getBarsCmd.MarkFlagRequired("to")
}

// parseRange accepts either RFC3339 timestamps or bare YYYY-MM-DD dates,
// per §6's terse CLI examples.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := parseFlexibleTime(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, data.NewError(data.KindInvalidInput, "parse --from", err)
	}
	to, err := parseFlexibleTime(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, data.NewError(data.KindInvalidInput, "parse --to", err)
	}
	return from, to, nil
}

func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseGranularity(s string) (data.Granularity, error) {
	switch s {
	case "1m":
		return data.Granularity1Min, nil
	case "5m":
		return data.Granularity5Min, nil
	case "1d":
		return data.Granularity1Day, nil
	default:
		return "", data.NewError(data.KindInvalidInput, "unknown granularity "+s, nil)
	}
}

func rowToEquityBar(row map[string]any) data.EquityBar {
	return data.EquityBar{
		Ticker: toString(row["ticker"]),
		TS:     toInt64(row["ts"]),
		Open:   toFloat64(row["o"]),
		High:   toFloat64(row["h"]),
		Low:    toFloat64(row["l"]),
		Close:  toFloat64(row["c"]),
		Volume: toInt64(row["v"]),
		Trades: toInt64(row["trades"]),
		VWAP:   toFloat64(row["vwap"]),
		Source: toString(row["source"]),
	}
}

func writeFailure(err error) {
	env := envelope.Failure(err, envelope.NewMeta(0, 0, 0, 0, envelope.CacheCold, envelope.SourceEmpty))
	_ = envelope.Write(os.Stdout, env)
	os.Exit(envelope.ExitCode(err))
}
