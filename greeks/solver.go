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
	"math"

	"github.com/chartvault/mdcore/data"
)

// Solver parameters per §4.E: an initial guess of 20% volatility, an
// absolute tolerance of 1e-6 on the difference from the quoted mid price, and
// a hard cap on iterations so a non-convergent contract fails fast
// instead of spinning.
const (
	initialSigma  = 0.20
	solverTol     = 1e-6
	maxIterations = 100
	minSigma      = 1e-3
	maxSigma      = 5.0
)

// SolveIV runs Newton-Raphson with a bisection fallback to find the
// volatility that reprices targetPrice under in, per §4.E. It returns
// data.KindDataError when the solver fails to converge within
// maxIterations, so callers can drop the observation per §4.E's "IV <= 0
// or IV > 5 -> drop the observation" policy rather than persist a
// garbage value.
func SolveIV(in Inputs, targetPrice float64) (float64, error) {
	if in.TimeYrs <= 0 {
		return 0, data.NewError(data.KindDataError, "cannot solve implied volatility at or past expiration", nil)
	}
	if targetPrice <= 0 {
		return 0, data.NewError(data.KindDataError, "target price must be positive", nil)
	}

	sigma := initialSigma
	working := in

	for i := 0; i < maxIterations; i++ {
		working.Sigma = sigma
		price := Price(working)
		diff := price - targetPrice

		if math.Abs(diff) < solverTol {
			if sigma <= 0 || sigma > maxSigma {
				return 0, data.NewError(data.KindDataError, "implied volatility out of bounds after convergence", nil)
			}
			return sigma, nil
		}

		vega := ComputeGreeks(working).Vega * 100 // undo the per-point scaling in ComputeGreeks
		if vega < 1e-8 {
			break // flat vega region; fall through to bisection
		}

		next := sigma - diff/vega
		if next <= minSigma || next > maxSigma || math.IsNaN(next) {
			break
		}
		sigma = next
	}

	// Newton-Raphson stalled or diverged; fall back to bisection over the
	// admissible sigma band before giving up.
	return bisectIV(in, targetPrice)
}

func bisectIV(in Inputs, targetPrice float64) (float64, error) {
	lo, hi := minSigma, maxSigma
	working := in

	working.Sigma = lo
	fLo := Price(working) - targetPrice
	working.Sigma = hi
	fHi := Price(working) - targetPrice

	if fLo*fHi > 0 {
		return 0, data.NewError(data.KindDataError, "implied volatility did not converge: target price outside achievable range", nil)
	}

	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		working.Sigma = mid
		fMid := Price(working) - targetPrice

		if math.Abs(fMid) < solverTol {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
			fHi = fMid
		} else {
			lo = mid
			fLo = fMid
		}
		_ = fHi
	}

	return 0, data.NewError(data.KindDataError, "implied volatility solver exceeded max iterations", nil)
}
