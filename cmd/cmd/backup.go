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
package cmd

import (
	"time"

	"github.com/csbde/tetherback/internal/backup"
	"github.com/csbde/tetherback/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up boot, system and data partitions",
		Long: `The 'backup' command checks that the device runs a TWRP kernel, reads its partition map and
saves the boot partition as a raw gzipped image and the system and data filesystems as gzipped
tarballs (/data/media is excluded). Images are written to a new twrp-backup-<timestamp> directory.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunBackup,
	}

	addBackupFlags(cmd)
	return cmd
}

func addBackupFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", ".", "directory in which the backup directory is created")
	cmd.Flags().String("report", "", "write a DFXML report of the backup to this file")
	cmd.Flags().Bool("no-progress", false, "do not draw progress bars")
}

func RunBackup(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	reportFile, _ := cmd.Flags().GetString("report")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	bridge := newBridge(cmd, log)

	opts := backup.Options{
		OutputDir:   outputDir,
		ReportFile:  reportFile,
		Serial:      bridge.Serial,
		Logger:      log,
		NewProgress: backup.TerminalProgress(log.Writer()),
	}
	if noProgress {
		opts.NewProgress = backup.NoProgress
	}

	start := time.Now()

	res, err := backup.Run(bridge, opts)
	if err != nil {
		return err
	}

	var total int64
	for _, img := range res.Images {
		total += img.Size
	}
	log.Infof("Backup completed: %d images, %s in %s",
		len(res.Images), format.FormatBytes(total), format.FormatDuration(time.Since(start)))
	return nil
}
