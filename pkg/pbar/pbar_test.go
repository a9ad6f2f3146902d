package pbar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBar(w *bytes.Buffer, total int64, byteMode bool) (*Bar, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	b := newBar(w, "boot.emmc.win", total, byteMode)
	b.now = c.now
	b.startTime = c.now()
	return b, c
}

func lastFrame(out string) string {
	frames := strings.Split(out, "\r")
	return frames[len(frames)-1]
}

func TestBarRendersFirstUpdate(t *testing.T) {
	var buf bytes.Buffer
	b, c := newTestBar(&buf, 4<<20, true)

	c.advance(time.Second)
	b.Update(1 << 20)

	frame := lastFrame(buf.String())
	require.Contains(t, frame, "boot.emmc.win: [=====>")
	require.Contains(t, frame, " 25% (1MB/4MB)")
	require.Contains(t, frame, "@ 1.00MB/s")
	require.Contains(t, frame, "00:00:03 remaining")
}

func TestBarIsRateLimited(t *testing.T) {
	var buf bytes.Buffer
	b, c := newTestBar(&buf, 100, true)

	b.Update(10)
	n := strings.Count(buf.String(), "\r")

	c.advance(MinRefreshRate / 2)
	b.Update(20)
	require.Equal(t, n, strings.Count(buf.String(), "\r"))

	c.advance(MinRefreshRate)
	b.Update(30)
	require.Equal(t, n+1, strings.Count(buf.String(), "\r"))
}

func TestBarFinishAfterShrinkingTotal(t *testing.T) {
	var buf bytes.Buffer
	b, c := newTestBar(&buf, 100*512, true)

	c.advance(time.Second)
	b.Update(1000)
	b.SetTotal(1000)
	b.Finish()
	b.Finish()

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	require.Equal(t, 1, strings.Count(out, "\n"))

	frame := lastFrame(strings.TrimSuffix(out, "\n"))
	require.Contains(t, frame, "["+strings.Repeat("=", defaultBarLength)+"]")
	require.Contains(t, frame, "100% (1000B/1000B)")
	require.Equal(t, float64(100), b.Percentage())
}

func TestCounter(t *testing.T) {
	var buf bytes.Buffer
	b, c := newTestBar(&buf, 3, false)

	for i := int64(1); i <= 3; i++ {
		c.advance(time.Second)
		b.Update(i)
	}
	b.Finish()

	frame := lastFrame(strings.TrimSuffix(buf.String(), "\n"))
	require.Contains(t, frame, "100% (3/3)")
	require.NotContains(t, frame, "MB/s")
}

func TestPercentageWithoutTotal(t *testing.T) {
	var buf bytes.Buffer
	b, _ := newTestBar(&buf, 0, true)
	require.Equal(t, float64(100), b.Percentage())
}

func TestBarAbortEndsLineWithoutCompleting(t *testing.T) {
	var buf bytes.Buffer
	b, c := newTestBar(&buf, 4<<20, true)

	c.advance(time.Second)
	b.Update(1 << 20)
	b.Abort()
	b.Abort()
	b.Finish()

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	require.Equal(t, 1, strings.Count(out, "\n"))

	frame := lastFrame(strings.TrimSuffix(out, "\n"))
	require.Contains(t, frame, " 25% (1MB/4MB)")
	require.Equal(t, int64(1<<20), b.Current)
}
