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

import (
	"fmt"
)

// BlockDevice is the eMMC device holding the Android partitions.
const BlockDevice = "mmcblk0"

// Querier runs a command on the device and returns its standard output.
type Querier interface {
	Output(command string) ([]byte, error)
}

func blockUeventPath() string {
	return fmt.Sprintf("/sys/block/%s/uevent", BlockDevice)
}

func partitionAttrPath(n int, attr string) string {
	return fmt.Sprintf("/sys/block/%s/%sp%d/%s", BlockDevice, BlockDevice, n, attr)
}

// countPartitions reads NPARTS from the block device's uevent file.
func countPartitions(q Querier) (int, error) {
	ev, err := readUevent(q, blockUeventPath())
	if err != nil {
		return 0, err
	}

	count, err := ev.Int("NPARTS")
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: NPARTS=%d is negative", ErrMalformed, count)
	}
	return count, nil
}

// ReadPartition reads the descriptor of partition n (1-based).
func ReadPartition(q Querier, n int) (Partition, error) {
	ev, err := readUevent(q, partitionAttrPath(n, "uevent"))
	if err != nil {
		return Partition{}, err
	}

	name, err := ev.Get("PARTNAME")
	if err != nil {
		return Partition{}, fmt.Errorf("partition %d: %w", n, err)
	}

	devName, err := ev.Get("DEVNAME")
	if err != nil {
		return Partition{}, fmt.Errorf("partition %d: %w", n, err)
	}

	num, err := ev.Int("PARTN")
	if err != nil {
		return Partition{}, fmt.Errorf("partition %d: %w", n, err)
	}

	sizePath := partitionAttrPath(n, "size")
	out, err := q.Output("cat " + sizePath)
	if err != nil {
		return Partition{}, fmt.Errorf("failed to read %s: %w", sizePath, err)
	}

	sectors, err := ParseSectors(out)
	if err != nil {
		return Partition{}, fmt.Errorf("partition %d: %w", n, err)
	}

	return Partition{
		Name:    name,
		DevName: devName,
		Num:     num,
		Sectors: sectors,
	}, nil
}

// Discover builds the full partition map of BlockDevice, reading partitions
// 1..NPARTS in ascending order. onProgress, if not nil, is called with
// done=0 once the count is known, then after each partition with the number
// read so far. The first error aborts the whole discovery.
func Discover(q Querier, onProgress func(done, total int)) ([]Partition, error) {
	count, err := countPartitions(q)
	if err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(0, count)
	}

	partitions := make([]Partition, 0, count)
	for n := 1; n <= count; n++ {
		p, err := ReadPartition(q, n)
		if err != nil {
			return nil, err
		}
		partitions = append(partitions, p)

		if onProgress != nil {
			onProgress(n, count)
		}
	}
	return partitions, nil
}

func readUevent(q Querier, path string) (Uevent, error) {
	out, err := q.Output("cat " + path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ev, err := ParseUevent(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ev, nil
}
