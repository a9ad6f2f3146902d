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
package backup

import (
	"io"

	"github.com/csbde/tetherback/pkg/pbar"
)

type Unit int

const (
	Bytes Unit = iota
	Items
)

// Progress observes a single copy or discovery step.
type Progress interface {
	Update(current int64)
	SetTotal(total int64)
	Finish()
	// Abort ends the indicator of a step that failed.
	Abort()
}

// ProgressFunc creates the indicator for one step.
type ProgressFunc func(label string, total int64, unit Unit) Progress

// TerminalProgress draws progress bars on w.
func TerminalProgress(w io.Writer) ProgressFunc {
	return func(label string, total int64, unit Unit) Progress {
		if unit == Items {
			return pbar.NewCounter(w, label, total)
		}
		return pbar.New(w, label, total)
	}
}

// NoProgress discards all progress updates.
func NoProgress(string, int64, Unit) Progress { return nopProgress{} }

type nopProgress struct{}

func (nopProgress) Update(int64)   {}
func (nopProgress) SetTotal(int64) {}
func (nopProgress) Finish()        {}
func (nopProgress) Abort()         {}
