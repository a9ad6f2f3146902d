package disk

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUevent(t *testing.T) {
	ev, err := ParseUevent([]byte("MAJOR=179\r\nDEVNAME=mmcblk0p3\r\n\r\nPARTNAME=boot\nODD=a=b\n"))
	require.NoError(t, err)

	require.Equal(t, Uevent{
		"MAJOR":    "179",
		"DEVNAME":  "mmcblk0p3",
		"PARTNAME": "boot",
		"ODD":      "a=b",
	}, ev)

	major, err := ev.Int("MAJOR")
	require.NoError(t, err)
	require.Equal(t, 179, major)
}

func TestParseUeventMalformed(t *testing.T) {
	_, err := ParseUevent([]byte("MAJOR=179\ngarbage\n"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestUeventLookupErrors(t *testing.T) {
	ev := Uevent{"NPARTS": "many"}

	_, err := ev.Get("PARTNAME")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = ev.Int("NPARTS")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseSectors(t *testing.T) {
	n, err := ParseSectors([]byte("  65536\r\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(65536), n)

	_, err = ParseSectors([]byte("12k"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseSectorsBound(t *testing.T) {
	n, err := ParseSectors([]byte(strconv.FormatUint(MaxSectors, 10)))
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxInt64/512*512), Partition{Sectors: n}.Size())
	require.LessOrEqual(t, Partition{Sectors: n}.Size(), uint64(math.MaxInt64))

	// 2^55 sectors overflow a uint64 byte count to zero.
	_, err = ParseSectors([]byte("36028797018963968"))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = ParseSectors([]byte(strconv.FormatUint(MaxSectors+1, 10)))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestPartitionSize(t *testing.T) {
	p := Partition{Name: "system", DevName: "mmcblk0p12", Num: 12, Sectors: 4096}

	require.Equal(t, "/dev/block/mmcblk0p12", p.DevicePath())
	require.Equal(t, uint64(4096*512), p.Size())
	require.Equal(t, uint64(2), p.SizeMiB())
}
