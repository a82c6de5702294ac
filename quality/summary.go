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
package quality

import (
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Markdown renders r as a markdown document, grounded on the same
// strings.Builder + message.Printer shape as the teacher's
// library.Library.Summary. It returns plain markdown and does no glamour
// rendering itself; no command in cmd calls it.
func (r Report) Markdown(title string, asOf time.Time) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Graded: %s (%s)\n\n", timeago.English.Format(asOf), asOf.Local().Format("01/02/2006"))

	b.WriteString("## Scores\n\n")
	p.Fprintf(&b, "  * Completeness: %.1f%%\n", r.Completeness*100)
	p.Fprintf(&b, "  * Consistency:  %.1f%%\n", r.Consistency*100)
	p.Fprintf(&b, "  * Accuracy:     %.1f%%\n", r.Accuracy*100)
	p.Fprintf(&b, "  * Timeliness:   %.1f%%\n", r.Timeliness*100)
	p.Fprintf(&b, "\n**Overall: %.1f%% (grade %s)**\n\n", r.Overall*100, r.Grade)

	p.Fprintf(&b, "Checked %d observation(s).\n\n", r.Checked)

	if len(r.Violations) == 0 {
		b.WriteString("No violations detected.\n")
		return b.String()
	}

	b.WriteString("## Violations\n\n")
	max := len(r.Violations)
	if max > 20 {
		max = 20
	}
	for _, v := range r.Violations[:max] {
		fmt.Fprintf(&b, "  * %s\n", v)
	}
	if len(r.Violations) > max {
		fmt.Fprintf(&b, "  * ... and %d more\n", len(r.Violations)-max)
	}

	return b.String()
}
