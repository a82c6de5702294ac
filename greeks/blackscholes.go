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

// Abramowitz-Stegun 7.1.26 coefficients for the normal CDF approximation,
// per §4.E. Accurate to |error| < 7.5e-8.
const (
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
	asP  = 0.3275911
)

// normCDF approximates the standard normal cumulative distribution
// function via Abramowitz-Stegun 7.1.26.
func normCDF(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	z := math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + asP*z)
	poly := ((((asA5*t+asA4)*t+asA3)*t+asA2)*t + asA1) * t
	erf := 1.0 - poly*math.Exp(-z*z)

	return 0.5 * (1.0 + sign*erf)
}

// normPDF is the standard normal density, used by gamma and vega.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// Inputs bundles the observable state a Black-Scholes valuation needs,
// per §4.E: underlying spot, strike, time-to-expiration in years, a
// risk-free rate, and volatility.
type Inputs struct {
	Spot     float64
	Strike   float64
	TimeYrs  float64
	RateFree float64
	Sigma    float64
	OptType  data.OptionType
}

func (in Inputs) d1() float64 {
	return (math.Log(in.Spot/in.Strike) + (in.RateFree+0.5*in.Sigma*in.Sigma)*in.TimeYrs) / (in.Sigma * math.Sqrt(in.TimeYrs))
}

func (in Inputs) d2(d1 float64) float64 {
	return d1 - in.Sigma*math.Sqrt(in.TimeYrs)
}

// Price returns the theoretical Black-Scholes premium for in.
func Price(in Inputs) float64 {
	if in.TimeYrs <= 0 || in.Sigma <= 0 {
		return math.Max(0, intrinsic(in))
	}
	d1 := in.d1()
	d2 := in.d2(d1)

	if in.OptType == data.Put {
		return in.Strike*math.Exp(-in.RateFree*in.TimeYrs)*normCDF(-d2) - in.Spot*normCDF(-d1)
	}
	return in.Spot*normCDF(d1) - in.Strike*math.Exp(-in.RateFree*in.TimeYrs)*normCDF(d2)
}

func intrinsic(in Inputs) float64 {
	if in.OptType == data.Put {
		return in.Strike - in.Spot
	}
	return in.Spot - in.Strike
}

// Greeks holds the five first/second-order sensitivities computed at a
// given sigma.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// ComputeGreeks evaluates delta/gamma/theta/vega/rho for in at its
// current Sigma, per the standard Black-Scholes closed forms. At or past
// expiration (TimeYrs<=0) it returns the intrinsic-payoff Greeks: delta
// in {0,1} for a call or {-1,0} for a put, reflecting moneyness, with
// gamma/theta/vega/rho all zero since the option no longer has optional
// value, per §4.E.
func ComputeGreeks(in Inputs) Greeks {
	if in.TimeYrs <= 0 || in.Sigma <= 0 {
		return Greeks{Delta: expiryDelta(in)}
	}
	d1 := in.d1()
	d2 := in.d2(d1)
	sqrtT := math.Sqrt(in.TimeYrs)
	discount := math.Exp(-in.RateFree * in.TimeYrs)

	gamma := normPDF(d1) / (in.Spot * in.Sigma * sqrtT)
	vega := in.Spot * normPDF(d1) * sqrtT / 100 // per 1 vol point

	var delta, theta, rho float64
	if in.OptType == data.Put {
		delta = normCDF(d1) - 1
		theta = (-in.Spot*normPDF(d1)*in.Sigma/(2*sqrtT) + in.RateFree*in.Strike*discount*normCDF(-d2)) / 365
		rho = -in.Strike * in.TimeYrs * discount * normCDF(-d2) / 100
	} else {
		delta = normCDF(d1)
		theta = (-in.Spot*normPDF(d1)*in.Sigma/(2*sqrtT) - in.RateFree*in.Strike*discount*normCDF(d2)) / 365
		rho = in.Strike * in.TimeYrs * discount * normCDF(d2) / 100
	}

	return Greeks{Delta: delta, Gamma: gamma, Theta: theta, Vega: vega, Rho: rho}
}

// expiryDelta is the at-expiration delta: 1 for an in-the-money call, -1
// for an in-the-money put, 0 otherwise. Strike equal to spot is treated
// as out-of-the-money (delta 0) for both option types.
func expiryDelta(in Inputs) float64 {
	if in.OptType == data.Put {
		if in.Spot < in.Strike {
			return -1
		}
		return 0
	}
	if in.Spot > in.Strike {
		return 1
	}
	return 0
}
