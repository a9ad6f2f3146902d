// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package pbar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/csbde/tetherback/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 500

const (
	minBarLength     = 10
	maxBarLength     = 40
	defaultBarLength = 20
)

// Bar renders a single-line progress indicator. It is not safe for
// concurrent use.
type Bar struct {
	w     io.Writer
	label string
	bytes bool
	width int

	Total   int64
	Current int64

	startTime      time.Time
	lastUpdateTime time.Time
	lastCurrent    int64
	speed          float64 // bytes per second
	finished       bool
	closed         bool

	now func() time.Time
}

// New returns a bar measuring bytes against total.
func New(w io.Writer, label string, total int64) *Bar {
	return newBar(w, label, total, true)
}

// NewCounter returns a bar measuring a plain item count against total.
func NewCounter(w io.Writer, label string, total int64) *Bar {
	return newBar(w, label, total, false)
}

func newBar(w io.Writer, label string, total int64, bytes bool) *Bar {
	b := &Bar{
		w:     w,
		label: label,
		bytes: bytes,
		width: terminalWidth(w),
		Total: total,
		now:   time.Now,
	}
	b.startTime = b.now()
	b.lastUpdateTime = time.Unix(0, 0)
	return b
}

// Update records progress and redraws if the refresh interval elapsed.
func (b *Bar) Update(current int64) {
	b.Current = current
	b.Render(false)
}

// SetTotal changes the expected maximum, e.g. once the real size of a
// compressed stream is known.
func (b *Bar) SetTotal(total int64) {
	b.Total = total
}

// Finish marks the bar complete, draws it one last time and ends the line.
func (b *Bar) Finish() {
	if b.closed {
		return
	}
	b.closed = true
	b.finished = true

	if b.Current < b.Total {
		b.Current = b.Total
	}
	b.Render(true)
	fmt.Fprintln(b.w)
}

// Abort draws the bar as it stands and ends the line without marking it
// complete, so later output starts on a fresh line.
func (b *Bar) Abort() {
	if b.closed {
		return
	}
	b.closed = true

	b.Render(true)
	fmt.Fprintln(b.w)
}

// Percentage returns the completion ratio in [0, 100].
func (b *Bar) Percentage() float64 {
	if b.Total <= 0 {
		return 100
	}
	return min(float64(b.Current)/float64(b.Total)*100, 100)
}

func (b *Bar) Render(force bool) {
	now := b.now()
	elapsed := now.Sub(b.lastUpdateTime)
	if !force && elapsed < MinRefreshRate {
		return
	}

	if b.bytes {
		since, base := b.lastUpdateTime, b.lastCurrent
		if since.Before(b.startTime) {
			since, base = b.startTime, 0
		}
		if d := now.Sub(since).Seconds(); d > 0 {
			b.speed = float64(b.Current-base) / d
		}
	}

	b.lastUpdateTime = now
	b.lastCurrent = b.Current

	// \r returns to the start of the line; trailing spaces clear leftovers
	// of a previous, longer line.
	fmt.Fprintf(b.w, "\r  %s: [%s] %3.0f%% (%s)%s    ",
		b.label,
		b.bar(),
		b.Percentage(),
		b.amount(),
		b.rate())
}

func (b *Bar) barLength() int {
	if b.width <= 0 {
		return defaultBarLength
	}
	return max(minBarLength, min(maxBarLength, b.width-len(b.label)-60))
}

func (b *Bar) bar() string {
	n := b.barLength()

	filled := int(float64(n) * b.Percentage() / 100)
	if filled >= n {
		return strings.Repeat("=", n)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", n-filled-1)
}

func (b *Bar) amount() string {
	if !b.bytes {
		return strconv.FormatInt(b.Current, 10) + "/" + strconv.FormatInt(b.Total, 10)
	}
	return format.FormatBytes(b.Current) + "/" + format.FormatBytes(b.Total)
}

func (b *Bar) rate() string {
	if !b.bytes {
		return ""
	}
	if b.finished {
		return fmt.Sprintf(" | %s", format.FormatDuration(b.now().Sub(b.startTime)))
	}

	eta := "calculating..."
	if b.Current > 0 && b.speed > 0 {
		remaining := max(b.Total-b.Current, 0)
		eta = format.FormatDuration(time.Duration(float64(remaining)/b.speed*float64(time.Second))) + " remaining"
	}
	return fmt.Sprintf(" @ %.2fMB/s [%s]", b.speed/(1024*1024), eta)
}
