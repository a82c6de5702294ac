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

// Package healthcheck pings an operator-configured dead-man's-switch
// URL (e.g. healthchecks.io) when an acquire-data run finishes (its
// ingestion plus, for option bars, its Greeks batch), so a stalled or
// crashed run is noticed externally. Adapted from
// the teacher's healthchecks.io check-management client: that client
// created/paused/resumed named checks against an account-wide API key;
// this engine has no check-management concern, only a single
// completion ping per acquire-data run, so Create/Pause/Resume/Delete are
// replaced with Success/Failure against one pre-provisioned ping URL.
package healthcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/chartvault/mdcore/data"
)

// ErrStatus reports a ping endpoint returning an unexpected status code.
var ErrStatus = errors.New("healthcheck ping returned an unexpected status code")

// Client pings a single dead-man's-switch URL on run completion.
// A Client constructed with an empty pingURL is a valid no-op,
// so wiring a heartbeat is entirely optional per deployment.
type Client struct {
	http    *resty.Client
	pingURL string
}

// NewClient creates a Client targeting pingURL. An empty pingURL yields
// a Client whose Success/Failure calls are no-ops.
func NewClient(pingURL string) *Client {
	return &Client{http: resty.New(), pingURL: pingURL}
}

// Success pings the configured URL to report a completed batch run,
// per §4.E/§4.I's manifest-adjacent bookkeeping. The run summary is
// sent as the ping body for operator visibility; delivery failures are
// returned, not panicked, so callers can log-and-continue rather than
// let a monitoring hiccup fail the batch itself.
func (c *Client) Success(ctx context.Context, summary data.RunSummary) error {
	if c.pingURL == "" {
		return nil
	}
	return c.ping(ctx, c.pingURL, summary)
}

// Failure pings the configured URL's /fail suffix to report a batch run
// that did not complete cleanly.
func (c *Client) Failure(ctx context.Context, summary data.RunSummary) error {
	if c.pingURL == "" {
		return nil
	}
	return c.ping(ctx, c.pingURL+"/fail", summary)
}

func (c *Client) ping(ctx context.Context, url string, summary data.RunSummary) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(summary).
		Post(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
	return nil
}
