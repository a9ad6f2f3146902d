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
	"time"

	"github.com/csbde/tetherback/internal/disk"
	"github.com/csbde/tetherback/internal/logger"
)

type Options struct {
	OutputDir   string // parent of the backup directory; "." if empty
	ReportFile  string // DFXML report path; disabled if empty
	Serial      string // recorded in the report
	Logger      *logger.Logger
	NewProgress ProgressFunc
	Now         func() time.Time
}

func (o *Options) setDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.NewProgress == nil {
		o.NewProgress = NoProgress
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result summarizes a completed backup.
type Result struct {
	Kernel     string
	Dir        string
	Partitions []disk.Partition
	Images     []Image
	Start      time.Time
}

// Run checks that the device is in recovery, reads its partition map and
// saves every partition that has a rule into a new backup directory.
// Stages run strictly in sequence; the first error stops the run.
func Run(sh Shell, opts Options) (*Result, error) {
	opts.setDefaults()
	log := opts.Logger

	start := opts.Now()

	kver, err := CheckRecovery(sh)
	if err != nil {
		return nil, err
	}
	log.Infof("Device reports TWRP kernel (%s).", kver)

	partitions, err := ReadPartitionMap(sh, log, opts.NewProgress)
	if err != nil {
		return nil, err
	}

	dir, err := CreateDir(opts.OutputDir, opts.Now())
	if err != nil {
		return nil, err
	}
	log.Infof("Saving TWRP backup images in %s/ ...", dir)

	res := &Result{
		Kernel:     kver,
		Dir:        dir,
		Partitions: partitions,
		Start:      start,
	}

	for _, p := range partitions {
		rule, ok := LookupRule(p.Name)
		if !ok {
			log.Debugf("skipping partition %s", p)
			continue
		}

		img, err := SavePartition(sh, dir, p, rule, log, opts.NewProgress)
		if err != nil {
			return nil, err
		}
		res.Images = append(res.Images, img)
	}

	if opts.ReportFile != "" {
		if err := WriteReport(opts.ReportFile, res, opts.Serial); err != nil {
			return nil, err
		}
		log.Infof("Report saved to %s", opts.ReportFile)
	}
	return res, nil
}

// ReadPartitionMap discovers the partitions of disk.BlockDevice, reporting
// progress as a partition count.
func ReadPartitionMap(q disk.Querier, log *logger.Logger, newProgress ProgressFunc) ([]disk.Partition, error) {
	var bar Progress

	partitions, err := disk.Discover(q, func(done, total int) {
		if done == 0 {
			log.Infof("Reading partition map for %s (%d partitions)...", disk.BlockDevice, total)
			bar = newProgress("partition map", int64(total), Items)
			return
		}
		bar.Update(int64(done))
	})
	if err != nil {
		if bar != nil {
			bar.Abort()
		}
		return nil, fmt.Errorf("failed to read partition map: %w", err)
	}
	bar.Finish()

	return partitions, nil
}
