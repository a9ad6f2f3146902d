package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"":        InfoLevel,
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"Warn":    WarnLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
	} {
		lvl, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, lvl, in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Debug("hidden")
	l.Infof("hidden %d", 1)
	l.Warnf("mount %s failed", "/data")
	l.Error("boom")

	require.Equal(t, "[WARN] mount /data failed\n[ERROR] boom\n", buf.String())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	require.False(t, l.Enabled(ErrorLevel))
	l.Error("nothing happens")
}
