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
package disk

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("malformed sysfs data")

// Uevent holds the KEY=VALUE pairs of a sysfs uevent file.
type Uevent map[string]string

// ParseUevent parses the content of a uevent file. Blank lines are ignored;
// any other line must contain a '='. Values are trimmed, since adb may
// translate line endings to CRLF.
func ParseUevent(data []byte) (Uevent, error) {
	ev := make(Uevent)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: line %d has no '=': %q", ErrMalformed, n, line)
		}
		ev[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (ev Uevent) Get(key string) (string, error) {
	v, ok := ev[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %s", ErrMalformed, key)
	}
	return v, nil
}

func (ev Uevent) Int(key string) (int, error) {
	s, err := ev.Get(key)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformed, key, s)
	}
	return v, nil
}

// MaxSectors is the largest sector count whose byte size fits an int64.
const MaxSectors = math.MaxInt64 / SectorSize

// ParseSectors parses the content of a sysfs "size" attribute.
func ParseSectors(data []byte) (uint64, error) {
	s := strings.TrimSpace(string(data))

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q is not an integer", ErrMalformed, s)
	}
	if v > MaxSectors {
		return 0, fmt.Errorf("%w: size %d sectors is out of range", ErrMalformed, v)
	}
	return v, nil
}
