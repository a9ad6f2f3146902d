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
	"errors"
	"fmt"
	"strings"

	"github.com/csbde/tetherback/internal/disk"
)

// RecoveryMarker is the substring TWRP kernels carry in their release.
const RecoveryMarker = "-twrp-"

var ErrNotRecovery = errors.New("device not in TWRP recovery")

// NotRecoveryError reports the kernel of a device that is not booted into
// TWRP. It matches ErrNotRecovery.
type NotRecoveryError struct {
	Kernel string
}

func (e *NotRecoveryError) Error() string {
	return fmt.Sprintf("Device reports non-TWRP kernel (%s); please boot into TWRP recovery and retry.", e.Kernel)
}

func (e *NotRecoveryError) Is(target error) bool {
	return target == ErrNotRecovery
}

// CheckRecovery returns the device's kernel release, or an error wrapping
// ErrNotRecovery if it is not a TWRP kernel.
func CheckRecovery(q disk.Querier) (string, error) {
	out, err := q.Output("uname -r")
	if err != nil {
		return "", fmt.Errorf("failed to read kernel version: %w", err)
	}

	kver := strings.TrimSpace(string(out))
	if !strings.Contains(kver, RecoveryMarker) {
		return kver, &NotRecoveryError{Kernel: kver}
	}
	return kver, nil
}
