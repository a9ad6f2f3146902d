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

// Package adbtest provides an in-memory stand-in for a device reached
// through adb, answering shell commands from canned outputs.
package adbtest

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Part describes a partition served by a fake device.
type Part struct {
	Name    string
	DevName string
	Sectors uint64
}

// Device records every command it receives, in order.
type Device struct {
	mu sync.Mutex

	outputs  map[string]string
	streams  map[string][]byte
	runErrs  map[string]error
	readErrs map[string]error
	commands []string
	open     int

	// ChunkSize caps the bytes returned by a single stream Read, so callers
	// see short reads. Zero means no cap.
	ChunkSize int
}

func NewDevice(kernel string) *Device {
	d := &Device{
		outputs:  make(map[string]string),
		streams:  make(map[string][]byte),
		runErrs:  make(map[string]error),
		readErrs: make(map[string]error),
	}
	d.SetOutput("uname -r", kernel+"\r\n")
	return d
}

func (d *Device) SetOutput(command, stdout string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.outputs[command] = stdout
}

func (d *Device) SetStream(command string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.streams[command] = data
}

// SetBrokenStream serves data on command, then fails the next Read with err,
// like a cable pulled mid-transfer.
func (d *Device) SetBrokenStream(command string, data []byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.streams[command] = data
	d.readErrs[command] = err
}

func (d *Device) SetRunError(command string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.runErrs[command] = err
}

// AddPartitions publishes sysfs uevent and size files for parts, numbered
// from 1 in the given order.
func (d *Device) AddPartitions(parts ...Part) {
	d.SetOutput("cat /sys/block/mmcblk0/uevent",
		fmt.Sprintf("MAJOR=179\r\nMINOR=0\r\nDEVNAME=mmcblk0\r\nDEVTYPE=disk\r\nNPARTS=%d\r\n", len(parts)))

	for i, p := range parts {
		n := i + 1
		d.SetOutput(fmt.Sprintf("cat /sys/block/mmcblk0/mmcblk0p%d/uevent", n),
			fmt.Sprintf("MAJOR=179\r\nMINOR=%d\r\nDEVNAME=%s\r\nDEVTYPE=partition\r\nPARTN=%d\r\nPARTNAME=%s\r\n", n, p.DevName, n, p.Name))
		d.SetOutput(fmt.Sprintf("cat /sys/block/mmcblk0/mmcblk0p%d/size", n),
			fmt.Sprintf("%d\r\n", p.Sectors))
	}
}

// Commands returns a copy of the commands issued so far.
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.commands...)
}

// OpenStreams reports how many streams were started but not closed.
func (d *Device) OpenStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.open
}

func (d *Device) record(command string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commands = append(d.commands, command)
}

func (d *Device) Output(command string) ([]byte, error) {
	d.record(command)

	d.mu.Lock()
	defer d.mu.Unlock()

	out, ok := d.outputs[command]
	if !ok {
		return nil, fmt.Errorf("adb shell %q: exit status 1", command)
	}
	return []byte(out), nil
}

func (d *Device) Run(command string) error {
	d.record(command)

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.runErrs[command]
}

func (d *Device) Stream(command string) (io.ReadCloser, error) {
	d.record(command)

	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.streams[command]
	if !ok {
		return nil, fmt.Errorf("adb shell %q: no such stream", command)
	}
	d.open++

	var r io.Reader = strings.NewReader(string(data))
	if err := d.readErrs[command]; err != nil {
		r = io.MultiReader(r, errReader{err})
	}
	return &stream{
		dev:   d,
		r:     r,
		chunk: d.ChunkSize,
	}, nil
}

type stream struct {
	dev    *Device
	r      io.Reader
	chunk  int
	closed bool
}

func (s *stream) Read(p []byte) (int, error) {
	if s.chunk > 0 && len(p) > s.chunk {
		p = p[:s.chunk]
	}
	return s.r.Read(p)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()

	s.dev.open--
	return nil
}

// RandomImage returns n random bytes, standing in for compressed image data.
func RandomImage(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random data: " + err.Error())
	}
	return b
}
