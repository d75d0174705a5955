/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package uwb talks to UWB ranging chips over a serial console.

The chip firmware answers a single 'r' byte with a "TS:<hex>" line carrying its
system time counter. Any other line on the console is log output and is skipped.
*/
package uwb

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/facebook/uwbdrift/drift"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	cmdSample    byte   = 'r'
	ansTimestamp string = "TS:"

	// DefaultBaudRate is the console speed of the chip firmware
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds a single read from the console
	DefaultReadTimeout = 2 * time.Second
	// DefaultMaxLines is how many console lines we read before giving up on a sample
	DefaultMaxLines = 30
)

// Port is the part of serial.Port the chip needs
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

var _ drift.Source = (*Chip)(nil)

// Chip represents one UWB chip reachable over a serial console
type Chip struct {
	device   string
	port     Port
	maxLines int
	pending  []byte
	buf      []byte
}

// Open opens the serial console of a chip
func Open(device string, baudRate int, readTimeout time.Duration, maxLines int) (*Chip, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", drift.ErrOpen, device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w %s: setting read timeout: %w", drift.ErrOpen, device, err)
	}
	log.Debugf("opened %s at %d baud", device, baudRate)
	return New(device, port, maxLines), nil
}

// New creates a Chip on top of an already open port
func New(device string, port Port, maxLines int) *Chip {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Chip{
		device:   device,
		port:     port,
		maxLines: maxLines,
		buf:      make([]byte, 256),
	}
}

// Name returns the device path
func (c *Chip) Name() string {
	return c.device
}

// Close is to close serial port
func (c *Chip) Close() error {
	return c.port.Close()
}

// Flush drops everything received so far, including a partially read line
func (c *Chip) Flush() error {
	c.pending = c.pending[:0]
	if err := c.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("resetting input buffer of %s: %w", c.device, err)
	}
	return nil
}

// readLine returns the next console line without line terminators.
// A read that times out with no data ends the line early, possibly empty.
func (c *Chip) readLine() (string, error) {
	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := string(c.pending[:i])
			c.pending = append(c.pending[:0], c.pending[i+1:]...)
			return strings.TrimSpace(line), nil
		}
		n, err := c.port.Read(c.buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			line := string(c.pending)
			c.pending = c.pending[:0]
			return strings.TrimSpace(line), nil
		}
		c.pending = append(c.pending, c.buf[:n]...)
	}
}

// parseTimestamp parses the value of a "TS:" line
func parseTimestamp(value string) (drift.TickCount, error) {
	value = strings.TrimSpace(value)
	if len(value) > 2 && (value[:2] == "0x" || value[:2] == "0X") {
		value = value[2:]
	}
	ts, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", drift.ErrMalformed, value)
	}
	return drift.TickCount(ts), nil
}

// Sample requests the current system time counter of the chip
func (c *Chip) Sample() (drift.TickCount, error) {
	if _, err := c.port.Write([]byte{cmdSample}); err != nil {
		return 0, fmt.Errorf("writing request to %s: %w", c.device, err)
	}
	for range c.maxLines {
		line, err := c.readLine()
		if err != nil {
			return 0, fmt.Errorf("reading from %s: %w", c.device, err)
		}
		value, found := strings.CutPrefix(line, ansTimestamp)
		if !found {
			if line != "" {
				log.Debugf("%s: skipping %q", c.device, line)
			}
			continue
		}
		ts, err := parseTimestamp(value)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.device, err)
		}
		return ts, nil
	}
	return 0, fmt.Errorf("%w on %s after %d lines", drift.ErrTimeout, c.device, c.maxLines)
}
