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
package pkginfo

import (
	"strings"
	"testing"
)

func TestBuildVersionStringIncludesFields(t *testing.T) {
	Version = "1.2.3"
	BuildDate = "2024-06-01"
	CommitHash = "abcdef0"

	s := BuildVersionString()
	for _, want := range []string{"mdengine 1.2.3", "2024-06-01", "abcdef0"} {
		if !strings.Contains(s, want) {
			t.Errorf("BuildVersionString() = %q, missing %q", s, want)
		}
	}
}

func TestGetDependencyListSortedAndNonEmptyFormat(t *testing.T) {
	deps := GetDependencyList()
	for i := 1; i < len(deps); i++ {
		if deps[i-1] > deps[i] {
			t.Errorf("GetDependencyList() not sorted: %q before %q", deps[i-1], deps[i])
		}
	}
	for _, d := range deps {
		if !strings.Contains(d, "=") {
			t.Errorf("dependency entry %q missing path=version format", d)
		}
	}
}
