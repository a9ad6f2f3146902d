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
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/csbde/tetherback/internal/disk"
	"github.com/csbde/tetherback/internal/logger"
	osutils "github.com/csbde/tetherback/pkg/util/os"
)

// ChunkSize is the size of a single read from the device stream.
const ChunkSize = 64 * 1024

// Shell is the device connection used by a backup. Implementations run one
// command at a time.
type Shell interface {
	disk.Querier
	Run(command string) error
	Stream(command string) (io.ReadCloser, error)
}

// Image describes a partition image written to the backup directory.
type Image struct {
	Partition disk.Partition
	Rule      Rule
	Path      string
	Size      int64 // compressed bytes written
}

// SavePartition extracts p according to rule into dir. The output file must
// not exist. The stream and the file are released on every return path; a
// partially written file is left in place on error.
func SavePartition(sh Shell, dir string, p disk.Partition, rule Rule, log *logger.Logger, newProgress ProgressFunc) (img Image, err error) {
	switch rule.Strategy {
	case TarMount:
		log.Infof("Saving tarball of %s (mounted at %s), %d MiB uncompressed...", p.DevName, rule.MountPoint, p.SizeMiB())
	default:
		log.Infof("Saving partition %s (%s), %d MiB uncompressed...", p.Name, p.DevName, p.SizeMiB())
	}

	// Already mounted or unmounted partitions make these fail; that is fine.
	prepare := rule.PrepareCommand(p)
	if err := sh.Run(prepare); err != nil {
		log.Warnf("%s: %s", prepare, err)
	}

	stream, err := sh.Stream(rule.StreamCommand(p))
	if err != nil {
		return Image{}, err
	}
	defer stream.Close()

	path := filepath.Join(dir, rule.Filename)
	f, err := osutils.CreateExclusive(path)
	if err != nil {
		return Image{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	bar := newProgress(rule.Filename, int64(p.Size()), Bytes)

	written, err := copyChunks(f, stream, bar.Update)
	if err != nil {
		bar.Abort()
		return Image{}, fmt.Errorf("failed to save %s: %w", path, err)
	}

	// The compressed image is smaller than the partition.
	if written > 0 {
		bar.SetTotal(written)
	}
	bar.Finish()

	return Image{
		Partition: p,
		Rule:      rule,
		Path:      path,
		Size:      written,
	}, nil
}

// copyChunks copies src to dst in ChunkSize reads until src is exhausted,
// calling onChunk with the running total after every chunk.
func copyChunks(dst io.Writer, src io.Reader, onChunk func(written int64)) (int64, error) {
	buf := make([]byte, ChunkSize)

	var written int64
	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			onChunk(written)
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
