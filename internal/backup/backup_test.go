package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/csbde/tetherback/internal/adb/adbtest"
	"github.com/csbde/tetherback/internal/disk"
	"github.com/csbde/tetherback/internal/logger"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

func newRecoveryDevice(t *testing.T) (*adbtest.Device, map[string][]byte) {
	t.Helper()

	dev := adbtest.NewDevice("3.4.0-twrp-g1234")
	dev.AddPartitions(
		adbtest.Part{Name: "boot", DevName: "mmcblk0p1", Sectors: 100},
		adbtest.Part{Name: "system", DevName: "mmcblk0p2", Sectors: 200},
		adbtest.Part{Name: "cache", DevName: "mmcblk0p3", Sectors: 50},
		adbtest.Part{Name: "data", DevName: "mmcblk0p4", Sectors: 300},
	)

	images := map[string][]byte{
		"boot.emmc.win":   adbtest.RandomImage(1000),
		"system.ext4.win": adbtest.RandomImage(2*ChunkSize + 1),
		"data.ext4.win":   adbtest.RandomImage(3000),
	}
	dev.SetStream("stty -onlcr && dd if=/dev/block/mmcblk0p1 2>/dev/null | gzip -f", images["boot.emmc.win"])
	dev.SetStream("stty -onlcr && tar -cz -C /system -p . 2> /dev/null", images["system.ext4.win"])
	dev.SetStream(`stty -onlcr && tar -cz -C /data -p --exclude="media*" . 2> /dev/null`, images["data.ext4.win"])
	dev.SetStream("stty -onlcr && dd if=/dev/block/mmcblk0p3 2>/dev/null | gzip -f", []byte("not wanted"))

	return dev, images
}

func TestRun(t *testing.T) {
	dev, images := newRecoveryDevice(t)
	parent := t.TempDir()

	var logs bytes.Buffer
	var rec progressRecorder
	res, err := Run(dev, Options{
		OutputDir:   parent,
		Logger:      logger.New(&logs, logger.InfoLevel),
		NewProgress: rec.New,
		Now:         func() time.Time { return testTime },
	})
	require.NoError(t, err)

	require.Equal(t, "3.4.0-twrp-g1234", res.Kernel)
	require.Equal(t, filepath.Join(parent, "twrp-backup-2024-01-02--03-04-05"), res.Dir)
	require.Len(t, res.Partitions, 4)
	require.Len(t, res.Images, 3)

	entries, err := os.ReadDir(res.Dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"boot.emmc.win", "data.ext4.win", "system.ext4.win"}, names)

	for name, want := range images {
		got, err := os.ReadFile(filepath.Join(res.Dir, name))
		require.NoError(t, err)
		require.NotEmpty(t, got)
		require.Equal(t, want, got, name)
	}

	require.Equal(t, []string{
		"uname -r",
		"cat /sys/block/mmcblk0/uevent",
		"cat /sys/block/mmcblk0/mmcblk0p1/uevent",
		"cat /sys/block/mmcblk0/mmcblk0p1/size",
		"cat /sys/block/mmcblk0/mmcblk0p2/uevent",
		"cat /sys/block/mmcblk0/mmcblk0p2/size",
		"cat /sys/block/mmcblk0/mmcblk0p3/uevent",
		"cat /sys/block/mmcblk0/mmcblk0p3/size",
		"cat /sys/block/mmcblk0/mmcblk0p4/uevent",
		"cat /sys/block/mmcblk0/mmcblk0p4/size",
		"umount /dev/block/mmcblk0p1",
		"stty -onlcr && dd if=/dev/block/mmcblk0p1 2>/dev/null | gzip -f",
		"mount -r /system",
		"stty -onlcr && tar -cz -C /system -p . 2> /dev/null",
		"mount -r /data",
		`stty -onlcr && tar -cz -C /data -p --exclude="media*" . 2> /dev/null`,
	}, dev.Commands())
	require.Zero(t, dev.OpenStreams())

	// partition map counter, then one bar per image
	require.Len(t, rec.bars, 4)
	require.Equal(t, Items, rec.bars[0].unit)
	require.Equal(t, []int64{1, 2, 3, 4}, rec.bars[0].updates)
	require.True(t, rec.bars[0].finished)
	for _, bar := range rec.bars[1:] {
		require.Equal(t, Bytes, bar.unit)
		require.Equal(t, int64(len(images[bar.label])), bar.total)
		require.True(t, bar.finished)
	}

	out := logs.String()
	require.Contains(t, out, "[INFO] Device reports TWRP kernel (3.4.0-twrp-g1234).\n")
	require.Contains(t, out, "[INFO] Reading partition map for mmcblk0 (4 partitions)...\n")
	require.Contains(t, out, "[INFO] Saving tarball of mmcblk0p4 (mounted at /data), 0 MiB uncompressed...\n")
	require.NotContains(t, out, "cache")
}

func TestRunStopsOnNonRecoveryKernel(t *testing.T) {
	dev := adbtest.NewDevice("3.4.0-perf-g5e3a1b4")
	dev.AddPartitions(adbtest.Part{Name: "boot", DevName: "mmcblk0p1", Sectors: 100})
	parent := t.TempDir()

	_, err := Run(dev, Options{OutputDir: parent})
	require.ErrorIs(t, err, ErrNotRecovery)

	require.Equal(t, []string{"uname -r"}, dev.Commands())

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunWithoutKnownPartitions(t *testing.T) {
	dev := adbtest.NewDevice("3.4.0-twrp-g1234")
	dev.AddPartitions(
		adbtest.Part{Name: "modem", DevName: "mmcblk0p1", Sectors: 100},
		adbtest.Part{Name: "cache", DevName: "mmcblk0p2", Sectors: 100},
	)

	res, err := Run(dev, Options{OutputDir: t.TempDir(), Now: func() time.Time { return testTime }})
	require.NoError(t, err)
	require.Empty(t, res.Images)

	entries, err := os.ReadDir(res.Dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunFailsOnExistingBackupDir(t *testing.T) {
	dev, _ := newRecoveryDevice(t)
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, DirName(testTime)), 0755))

	_, err := Run(dev, Options{OutputDir: parent, Now: func() time.Time { return testTime }})
	require.ErrorIs(t, err, os.ErrExist)

	for _, cmd := range dev.Commands() {
		require.False(t, strings.HasPrefix(cmd, "stty"), cmd)
	}
}

func TestRunFailsOnBrokenPartitionMap(t *testing.T) {
	dev, _ := newRecoveryDevice(t)
	dev.SetOutput("cat /sys/block/mmcblk0/mmcblk0p2/size", "size?\n")
	parent := t.TempDir()

	var rec progressRecorder
	_, err := Run(dev, Options{OutputDir: parent, NewProgress: rec.New})
	require.ErrorIs(t, err, disk.ErrMalformed)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.Len(t, rec.bars, 1)
	require.Equal(t, []int64{1}, rec.bars[0].updates)
	require.True(t, rec.bars[0].aborted)
	require.False(t, rec.bars[0].finished)
}

func TestRunRejectsNegativePartitionCount(t *testing.T) {
	dev := adbtest.NewDevice("3.4.0-twrp-g1234")
	dev.SetOutput("cat /sys/block/mmcblk0/uevent", "DEVNAME=mmcblk0\r\nNPARTS=-3\r\n")

	var rec progressRecorder
	_, err := Run(dev, Options{OutputDir: t.TempDir(), NewProgress: rec.New})
	require.ErrorIs(t, err, disk.ErrMalformed)
	require.Empty(t, rec.bars)
}

func TestRunWritesReport(t *testing.T) {
	dev, images := newRecoveryDevice(t)
	parent := t.TempDir()
	report := filepath.Join(t.TempDir(), "backup.xml")

	res, err := Run(dev, Options{
		OutputDir:  parent,
		ReportFile: report,
		Serial:     "0123456789ABCDEF",
		Now:        func() time.Time { return testTime },
	})
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)

	out := string(data)
	require.Contains(t, out, "<device_kernel>3.4.0-twrp-g1234</device_kernel>")
	require.Contains(t, out, "<device_serial>0123456789ABCDEF</device_serial>")
	require.Contains(t, out, "<backup_directory>"+filepath.Base(res.Dir)+"</backup_directory>")
	require.Contains(t, out, "<partitions>4</partitions>")
	require.Equal(t, 3, strings.Count(out, "<fileobject>"))
	require.Contains(t, out, "<filename>system.ext4.win</filename>")
	require.Contains(t, out, `<partition num="4" name="data" device="/dev/block/mmcblk0p4" mountpoint="/data" len="153600"></partition>`)
	for name, img := range images {
		require.Contains(t, out, "<filename>"+name+"</filename>")
		require.Contains(t, out, "<filesize>"+strconv.Itoa(len(img))+"</filesize>")
	}

	// The backup directory holds the images only.
	entries, err := os.ReadDir(res.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}
