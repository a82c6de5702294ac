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
package figi

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	openFigiBaseURL     = "https://api.openfigi.com"
	openFigiMappingPath = "/v3/mapping"
)

type mappingResponse struct {
	Data []openFigiAsset `json:"data"`
}

type openFigiAsset struct {
	CompositeFIGI string `json:"compositeFIGI"`
}

type openFigiQuery struct {
	IdType       string `json:"idType"`
	IdValue      string `json:"idValue"`
	ExchangeCode string `json:"exchCode"`
	MarketSecDes string `json:"marketSecDes"`
}

// Client is a rate-limited OpenFIGI mapping client used to enrich
// catalog entries that have no cached composite FIGI, grounded on the
// teacher's openfigi.go rate-limit/request shape (25 requests per 6
// seconds without an API key).
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

// NewClient creates a Client. apiKey may be empty to use OpenFIGI's
// unauthenticated rate limit.
func NewClient(apiKey string) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(openFigiBaseURL),
		limiter: rate.NewLimiter(rate.Every((6*time.Second)/25), 10),
		apiKey:  apiKey,
	}
}

// LookupComposite resolves ticker's composite FIGI against the US
// equity market sector, returning "" if OpenFIGI has no mapping.
func (c *Client) LookupComposite(ctx context.Context, ticker string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := []openFigiQuery{{
		IdType:       "TICKER",
		IdValue:      ticker,
		ExchangeCode: "US",
		MarketSecDes: "Equity",
	}}

	var mapped []mappingResponse
	req := c.http.R().SetContext(ctx).SetBody(query).SetResult(&mapped)
	if c.apiKey != "" {
		req.SetHeader("X-OPENFIGI-APIKEY", c.apiKey)
	}

	resp, err := req.Post(openFigiMappingPath)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("openfigi mapping request failed")
		return "", err
	}
	if resp.StatusCode() >= 400 {
		log.Warn().Int("status", resp.StatusCode()).Str("ticker", ticker).Msg("openfigi mapping returned an error status")
		return "", nil
	}

	for _, m := range mapped {
		for _, a := range m.Data {
			if a.CompositeFIGI != "" {
				return a.CompositeFIGI, nil
			}
		}
	}
	return "", nil
}
