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
package greeks

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/pool"
	"github.com/chartvault/mdcore/query"
)

// defaultWidth is the default bounded-concurrency fan-out for a batch
// run, per §4.E. Isolated per-contract failures are aggregated rather
// than aborting the batch, grounded on the teacher's channel-based
// producer/consumer Fetch loop (provider.Dataset), reworked here around
// a semaphore-bounded worker pool instead of an unbounded goroutine per
// item.
const defaultWidth = 3

// Job is one (contract, bar) pair awaiting a Greeks computation.
type Job struct {
	Path        string
	GreeksTable string
	RiskFree    float64
	Underlying  data.Category
	Contract    data.ContractMetadata
	Bar         data.OptionBar
}

// Runner computes and persists implied volatility and Greeks for a
// batch of jobs with bounded concurrency.
type Runner struct {
	Pool    *pool.Pool
	Query   *query.Engine
	Width   int
	Limiter *rate.Limiter
}

// NewRunner creates a Runner with the given worker width (defaultWidth
// if width <= 0) and a rate limiter pacing underlying-price lookups, per
// §4.E's batch-runner requirement.
func NewRunner(p *pool.Pool, q *query.Engine, width int) *Runner {
	if width <= 0 {
		width = defaultWidth
	}
	return &Runner{
		Pool:    p,
		Query:   q,
		Width:   width,
		Limiter: rate.NewLimiter(rate.Limit(50), 10),
	}
}

// Result summarizes the outcome of a batch run.
type Result struct {
	Succeeded int
	Skipped   int
	Errors    error
}

// Run computes IV and Greeks for every job, persisting successes and
// accumulating per-job failures into Result.Errors rather than aborting
// the batch on the first error, per §4.E. It respects ctx cancellation
// between jobs.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Result, error) {
	sem := make(chan struct{}, r.Width)
	var wg sync.WaitGroup
	var mu sync.Mutex
	res := &Result{}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return res, data.NewError(data.KindCancelled, "batch run cancelled", ctx.Err())
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()

			skipped, err := r.runOne(ctx, j)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Errors = multierror.Append(res.Errors, err)
			case skipped:
				res.Skipped++
			default:
				res.Succeeded++
			}
		}(job)
	}

	wg.Wait()
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, j Job) (skipped bool, err error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return false, data.NewError(data.KindCancelled, "rate limiter wait", err)
	}

	spot, err := GetUnderlyingPrice(ctx, r.Query, j.Underlying, j.Contract.Underlying, time.UnixMilli(j.Bar.TS))
	if err != nil {
		return false, err
	}

	target := j.Bar.Mid()
	if target <= 0 {
		return true, nil
	}

	tYrs := time.Until(j.Contract.Expiration).Hours() / 24 / 365
	expiryTS := j.Contract.Expiration
	if refTime := time.UnixMilli(j.Bar.TS); refTime.Before(expiryTS) {
		tYrs = expiryTS.Sub(refTime).Hours() / 24 / 365
	} else {
		return true, nil // expired contract bar, nothing to solve
	}

	in := Inputs{
		Spot:     spot,
		Strike:   j.Contract.Strike,
		TimeYrs:  tYrs,
		RateFree: j.RiskFree,
		OptType:  j.Contract.OptionType,
	}

	iv, err := SolveIV(in, target)
	if err != nil {
		return true, nil // unconvergent observation: drop, not a batch failure
	}

	in.Sigma = iv
	gk := ComputeGreeks(in)

	result := data.OptionGreeks{
		Contract: j.Contract.Contract,
		TS:       j.Bar.TS,
		IV:       iv,
		Delta:    gk.Delta,
		Gamma:    gk.Gamma,
		Theta:    gk.Theta,
		Vega:     gk.Vega,
		Rho:      gk.Rho,
		RefPx:    spot,
		MidPx:    target,
	}
	if !result.Valid() {
		return true, nil
	}

	if err := Upsert(ctx, r.Pool, j.Path, j.GreeksTable, result); err != nil {
		return false, err
	}
	return false, nil
}
