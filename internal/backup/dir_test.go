package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDirName(t *testing.T) {
	ts := time.Date(2025, 5, 30, 16, 3, 20, 0, time.Local)
	require.Equal(t, "twrp-backup-2025-05-30--16-03-20", DirName(ts))

	later := ts.Add(time.Second)
	require.Less(t, DirName(ts), DirName(later))
}

func TestCreateDir(t *testing.T) {
	parent := t.TempDir()
	ts := time.Date(2025, 5, 30, 16, 3, 20, 0, time.Local)

	dir, err := CreateDir(parent, ts)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(parent, "twrp-backup-2025-05-30--16-03-20"), dir)
	require.DirExists(t, dir)

	_, err = CreateDir(parent, ts)
	require.ErrorIs(t, err, os.ErrExist)
}
