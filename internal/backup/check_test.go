package backup

import (
	"errors"
	"testing"

	"github.com/csbde/tetherback/internal/adb/adbtest"
	"github.com/stretchr/testify/require"
)

func TestCheckRecovery(t *testing.T) {
	dev := adbtest.NewDevice("3.4.0-twrp-gd25d1a2")

	kver, err := CheckRecovery(dev)
	require.NoError(t, err)
	require.Equal(t, "3.4.0-twrp-gd25d1a2", kver)
}

func TestCheckRecoveryRejectsOtherKernels(t *testing.T) {
	for _, kver := range []string{
		"3.4.0-perf-g5e3a1b4",
		"4.9.112-twrp",
		"twrp-3.4.0",
		"",
	} {
		_, err := CheckRecovery(adbtest.NewDevice(kver))
		require.ErrorIs(t, err, ErrNotRecovery, kver)
		require.EqualError(t, err, "Device reports non-TWRP kernel ("+kver+"); please boot into TWRP recovery and retry.")

		var nre *NotRecoveryError
		require.ErrorAs(t, err, &nre)
		require.Equal(t, kver, nre.Kernel)
	}
}

type offlineDevice struct{}

func (offlineDevice) Output(string) ([]byte, error) {
	return nil, errors.New("error: no devices/emulators found")
}

func TestCheckRecoveryQueryError(t *testing.T) {
	_, err := CheckRecovery(offlineDevice{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotRecovery)
	require.Contains(t, err.Error(), "no devices/emulators found")
}
