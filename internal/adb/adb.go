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
package adb

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sys/execabs"
)

const DefaultPath = "adb"

// Bridge issues shell commands to a single device through the adb
// executable. Commands are never run concurrently by callers.
type Bridge struct {
	Path   string    // adb executable; DefaultPath when empty
	Serial string    // device serial, passed as -s when set
	Stderr io.Writer // receives adb's stderr for streaming commands
}

func New(path, serial string) *Bridge {
	return &Bridge{Path: path, Serial: serial}
}

func (b *Bridge) command(shellCmd string) *exec.Cmd {
	bin := b.Path
	if bin == "" {
		bin = DefaultPath
	}

	var args []string
	if serial := strings.TrimSpace(b.Serial); serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args, "shell", shellCmd)

	return execabs.Command(bin, args...)
}

// Output runs shellCmd and returns its standard output.
func (b *Bridge) Output(shellCmd string) ([]byte, error) {
	cmd := b.command(shellCmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, commandError(shellCmd, err, stderr.Bytes())
	}
	return stdout.Bytes(), nil
}

// Run runs shellCmd, discarding its standard output.
func (b *Bridge) Run(shellCmd string) error {
	cmd := b.command(shellCmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return commandError(shellCmd, err, stderr.Bytes())
	}
	return nil
}

// Stream starts shellCmd and returns its standard output as a stream.
// Closing the stream terminates the local adb process and reaps it; the
// exit status of the remote pipeline is not reported.
func (b *Bridge) Stream(shellCmd string) (io.ReadCloser, error) {
	cmd := b.command(shellCmd)
	cmd.Stderr = b.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start adb shell %q: %w", shellCmd, err)
	}
	return &Stream{cmd: cmd, stdout: stdout}, nil
}

// Stream is the live standard output of a running adb shell command.
type Stream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	once   sync.Once
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *Stream) Close() error {
	s.once.Do(func() {
		// Kill fails with os.ErrProcessDone once the pipeline has exited on its own.
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	})
	return nil
}

func commandError(shellCmd string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("adb shell %q: %w", shellCmd, err)
	}
	return fmt.Errorf("adb shell %q: %w: %s", shellCmd, err, msg)
}
