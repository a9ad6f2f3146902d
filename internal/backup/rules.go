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
	"fmt"

	"github.com/csbde/tetherback/internal/disk"
)

// Strategy selects how a partition is extracted from the device.
type Strategy int

const (
	// RawDump unmounts the block device and streams a gzipped dd of it.
	RawDump Strategy = iota
	// TarMount mounts the filesystem read-only and streams a gzipped tarball.
	TarMount
)

func (s Strategy) String() string {
	switch s {
	case RawDump:
		return "raw"
	case TarMount:
		return "tar"
	default:
		return "unknown"
	}
}

// Rule tells how a known partition is saved, and under which file name.
type Rule struct {
	Filename   string
	Strategy   Strategy
	MountPoint string // TarMount only
	TarOptions string // TarMount only
}

// Rules maps partition names to their rule. The file names follow the
// layout TWRP expects when restoring; /data/media is left out as TWRP does.
var Rules = map[string]Rule{
	"boot": {
		Filename: "boot.emmc.win",
		Strategy: RawDump,
	},
	"data": {
		Filename:   "data.ext4.win",
		Strategy:   TarMount,
		MountPoint: "/data",
		TarOptions: `-p --exclude="media*"`,
	},
	"system": {
		Filename:   "system.ext4.win",
		Strategy:   TarMount,
		MountPoint: "/system",
		TarOptions: "-p",
	},
}

func LookupRule(partName string) (Rule, bool) {
	r, ok := Rules[partName]
	return r, ok
}

// PrepareCommand returns the command that readies p for extraction.
func (r Rule) PrepareCommand(p disk.Partition) string {
	if r.Strategy == TarMount {
		return "mount -r " + r.MountPoint
	}
	return "umount " + p.DevicePath()
}

// StreamCommand returns the command writing the compressed image of p to
// its standard output. stty -onlcr keeps the pty from mangling the binary
// stream with CRLF translation.
func (r Rule) StreamCommand(p disk.Partition) string {
	if r.Strategy == TarMount {
		return fmt.Sprintf("stty -onlcr && tar -cz -C %s %s . 2> /dev/null", r.MountPoint, r.TarOptions)
	}
	return fmt.Sprintf("stty -onlcr && dd if=%s 2>/dev/null | gzip -f", p.DevicePath())
}
