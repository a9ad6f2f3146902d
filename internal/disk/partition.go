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
package disk

import "fmt"

// Partition describes one partition of the device's block device as
// reported by sysfs. Values are immutable once discovered.
type Partition struct {
	Name    string // PARTNAME, e.g. "system"
	DevName string // DEVNAME, e.g. "mmcblk0p12"
	Num     int    // PARTN
	Sectors uint64 // size in SectorSize units
}

// DevicePath returns the path of the partition's block node on the device.
func (p Partition) DevicePath() string {
	return "/dev/block/" + p.DevName
}

// Size returns the uncompressed partition size in bytes.
func (p Partition) Size() uint64 {
	return p.Sectors * SectorSize
}

// SizeMiB returns the size truncated to whole mebibytes.
func (p Partition) SizeMiB() uint64 {
	return p.Sectors / (1 << 20 / SectorSize)
}

func (p Partition) String() string {
	return fmt.Sprintf("%s (%s, #%d, %d sectors)", p.Name, p.DevName, p.Num, p.Sectors)
}
