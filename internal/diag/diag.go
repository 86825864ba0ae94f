// Package diag provides the serial diagnostics console: a UART that mirrors
// the daemon's log for bench debugging without a network.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the console line speed used when none is configured.
const DefaultBaud = 115200

// Open opens the serial device for the diagnostics console.
func Open(device string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	c := &serial.Config{Name: device, Baud: baud, ReadTimeout: time.Second}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return port, nil
}

// Writer translates bare newlines to CRLF so terminal emulators return the
// carriage. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes p with each "\n" expanded to "\r\n". It reports len(p) on
// success so callers such as log.Logger see a complete write.
func (d *Writer) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf.Reset()
	for _, b := range p {
		if b == '\n' {
			d.buf.WriteByte('\r')
		}
		d.buf.WriteByte(b)
	}
	if _, err := d.w.Write(d.buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
