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
	"errors"
	"fmt"
	"io"

	"github.com/csbde/tetherback/internal/adb"
	"github.com/csbde/tetherback/internal/backup"
	"github.com/csbde/tetherback/internal/env"
	"github.com/csbde/tetherback/internal/logger"
	"github.com/spf13/cobra"
)

const AppName = env.AppName

// Exit statuses of the process.
const (
	ExitOK          = 0
	ExitNotRecovery = 1
	ExitFailure     = 2
)

func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand returns the root command. Run without a subcommand, it
// performs a backup.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - back up an Android device running TWRP recovery over adb",
		Long: `Back up the boot, system and data partitions of an Android device booted into TWRP recovery.
Images are streamed over 'adb shell' into a new twrp-backup-<timestamp> directory, using the
file names TWRP itself uses, so that the backup can be restored from TWRP.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          RunBackup,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("adb", adb.DefaultPath, "path to the adb executable")
	flags.StringP("serial", "s", "", "serial number of the device to use, as listed by 'adb devices'")
	flags.String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")

	addBackupFlags(rootCmd)

	rootCmd.AddCommand(DefineBackupCommand())
	rootCmd.AddCommand(DefinePartitionsCommand())

	return rootCmd
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, backup.ErrNotRecovery):
		return ExitNotRecovery
	default:
		return ExitFailure
	}
}

// ReportError writes the failure of a command the way the logger would.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "[ERROR] %s\n", err)
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	s, _ := cmd.Flags().GetString("log-level")

	level, err := logger.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), level), nil
}

func newBridge(cmd *cobra.Command, log *logger.Logger) *adb.Bridge {
	path, _ := cmd.Flags().GetString("adb")
	serial, _ := cmd.Flags().GetString("serial")

	b := adb.New(path, serial)
	b.Stderr = log.Writer()
	return b
}
