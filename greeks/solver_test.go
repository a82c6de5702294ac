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
	"testing"

	"github.com/chartvault/mdcore/data"
)

func TestSolveIVRecoversKnownSigma(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 100, TimeYrs: 0.5, RateFree: 0.04, OptType: data.Call}
	in.Sigma = 0.30
	target := Price(in)

	solved, err := SolveIV(in, target)
	if err != nil {
		t.Fatalf("SolveIV: %v", err)
	}
	if !approxEqual(solved, 0.30, 1e-3) {
		t.Errorf("SolveIV recovered %v, want ~0.30", solved)
	}
}

func TestSolveIVRecoversDeepOTMViaBisection(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 150, TimeYrs: 0.25, RateFree: 0.04, OptType: data.Call}
	in.Sigma = 0.6
	target := Price(in)

	solved, err := SolveIV(in, target)
	if err != nil {
		t.Fatalf("SolveIV: %v", err)
	}
	if !approxEqual(solved, 0.6, 1e-2) {
		t.Errorf("SolveIV recovered %v, want ~0.6", solved)
	}
}

func TestSolveIVRejectsZeroTimeToExpiration(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 100, TimeYrs: 0, OptType: data.Call}
	if _, err := SolveIV(in, 5); err == nil {
		t.Error("expected an error when time-to-expiration is zero")
	} else if data.KindOf(err) != data.KindDataError {
		t.Errorf("error kind = %v, want DataError", data.KindOf(err))
	}
}

func TestSolveIVRejectsNonPositiveTarget(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 100, TimeYrs: 0.5, OptType: data.Call}
	if _, err := SolveIV(in, 0); err == nil {
		t.Error("expected an error for a non-positive target price")
	}
	if _, err := SolveIV(in, -1); err == nil {
		t.Error("expected an error for a negative target price")
	}
}

func TestSolveIVRejectsUnreachableTarget(t *testing.T) {
	in := Inputs{Spot: 100, Strike: 100, TimeYrs: 0.5, RateFree: 0.04, OptType: data.Call}
	if _, err := SolveIV(in, 1_000_000); err == nil {
		t.Error("expected an error for a target price no sigma in range can reach")
	}
}
