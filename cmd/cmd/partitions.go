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
	"fmt"
	"text/tabwriter"

	"github.com/csbde/tetherback/internal/backup"
	"github.com/csbde/tetherback/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefinePartitionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partitions",
		Short: "List the partitions of the device",
		Long: `The 'partitions' command reads the partition map of the device, as the backup does, and prints it
as a table. The RULE column shows the image each partition would be saved to, if any.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunPartitions,
	}

	cmd.Flags().Bool("no-progress", false, "do not draw progress bars")
	return cmd
}

func RunPartitions(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	bridge := newBridge(cmd, log)

	kver, err := backup.CheckRecovery(bridge)
	if err != nil {
		return err
	}
	log.Infof("Device reports TWRP kernel (%s).", kver)

	newProgress := backup.TerminalProgress(log.Writer())
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		newProgress = backup.NoProgress
	}

	partitions, err := backup.ReadPartitionMap(bridge, log, newProgress)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUM\tNAME\tDEVICE\tSIZE\tRULE")

	for _, p := range partitions {
		rule := "-"
		if r, ok := backup.LookupRule(p.Name); ok {
			rule = r.Strategy.String() + " -> " + r.Filename
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.Num,
			p.Name,
			p.DevicePath(),
			format.FormatBytes(int64(p.Size())),
			rule,
		)
	}
	return w.Flush()
}
