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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/csbde/tetherback/internal/disk"
	"github.com/csbde/tetherback/internal/env"
	"github.com/csbde/tetherback/pkg/dfxml"
	"github.com/google/uuid"
)

// WriteReport writes a DFXML document describing res to path.
func WriteReport(path string, res *Result, serial string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := writeReport(bw, res, serial); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return bw.Flush()
}

func writeReport(out io.Writer, res *Result, serial string) error {
	w := dfxml.NewDFXMLWriter(out)

	execEnv := dfxml.GetExecEnv()
	execEnv.Start = res.Start.UTC().Format("2006-01-02T15:04:05Z")

	err := w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: execEnv,
		},
		Source: dfxml.Source{
			Session:     uuid.NewString(),
			Serial:      serial,
			Kernel:      res.Kernel,
			BlockDevice: disk.BlockDevice,
			SectorSize:  disk.SectorSize,
			Partitions:  len(res.Partitions),
			BackupDir:   filepath.Base(res.Dir),
		},
	})
	if err != nil {
		return err
	}

	for _, img := range res.Images {
		err := w.WriteFileObject(dfxml.FileObject{
			Filename: img.Rule.Filename,
			FileSize: uint64(img.Size),
			Method:   img.Rule.Strategy.String(),
			Partition: dfxml.Partition{
				Num:        img.Partition.Num,
				Name:       img.Partition.Name,
				Device:     img.Partition.DevicePath(),
				MountPoint: img.Rule.MountPoint,
				Size:       img.Partition.Size(),
			},
		})
		if err != nil {
			return err
		}
	}
	return w.Close()
}
