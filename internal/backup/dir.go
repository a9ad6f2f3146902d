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
	"path/filepath"
	"time"

	osutils "github.com/csbde/tetherback/pkg/util/os"
)

const (
	DirPrefix     = "twrp-backup-"
	dirTimeLayout = "2006-01-02--15-04-05"
)

// DirName returns the backup directory name for t, in local time,
// e.g. "twrp-backup-2025-05-30--16-03-20". Names sort chronologically.
func DirName(t time.Time) string {
	return DirPrefix + t.Local().Format(dirTimeLayout)
}

// CreateDir creates a fresh backup directory under parent. It fails if the
// directory already exists.
func CreateDir(parent string, now time.Time) (string, error) {
	dir := filepath.Join(parent, DirName(now))
	if err := osutils.CreateDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}
