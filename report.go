/*
 * Copyright 2024 the bitbox-torture authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package torture

import (
	"fmt"
	"io"
	"time"

	humanize "github.com/dustin/go-humanize"
)

// ProgressReporter prints one line per committed batch.
type ProgressReporter struct {
	w io.Writer
}

func NewProgressReporter(w io.Writer) *ProgressReporter {
	return &ProgressReporter{w: w}
}

func (p *ProgressReporter) Batch(res BatchResult, total int64, elapsed time.Duration) {
	line := fmt.Sprintf("batch=%s put=%s commit=%s total=%s elapsed=%s",
		humanize.Comma(res.Items),
		res.PutTime.Round(time.Microsecond),
		res.CommitTime.Round(time.Microsecond),
		humanize.Comma(total),
		elapsed.Round(time.Millisecond))
	if res.Stats != nil {
		line += " " + res.Stats.String()
	}
	fmt.Fprintln(p.w, line)
}
