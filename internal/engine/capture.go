/*
PURPOSE:
  Scoped redirection of the engine's console output during a single run.
  Stdout and stderr are captured into independent buffers and the original
  streams are restored on every exit path.

REQUIREMENTS:
  User-specified:
  - Two independent buffers, inspectable after the scope closes.
  - Persisting captured text must never fail on unencodable bytes; invalid
    sequences are substituted with U+FFFD.

  Implementation-discovered:
  - The engine prints through the os.Stdout/os.Stderr package variables,
    so capture swaps those for pipe write ends and drains the read ends in
    background goroutines.
  - The harness logger binds the real stdout at init time and is therefore
    unaffected by the swap.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness/executor.go
  - Mutates: os.Stdout / os.Stderr (process-wide; same non-reentrancy
    discipline as Session).

ERROR HANDLING:
  - OpenCapture returns an error if pipe creation fails; Release cannot
    fail.

IMPLEMENTATION RULES:
  - Buffers must only be read after Release; the drain goroutines own them
    until then.
  - Release is idempotent.

USAGE:
  cap, err := engine.OpenCapture()
  defer cap.Release()
  ... engine call ...
  cap.Release()
  body := cap.Sections()

RELATED FILES:
  - internal/engine/session.go
  - internal/harness/executor.go

MAINTENANCE:
  - None.
*/

package engine

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
)

// Capture redirects os.Stdout and os.Stderr into buffers for the duration
// of one run.
type Capture struct {
	prevOut, prevErr *os.File
	outW, errW       *os.File
	outBuf, errBuf   bytes.Buffer
	wg               sync.WaitGroup
	released         bool
}

// OpenCapture swaps the process stdout/stderr for pipes and starts
// draining them. The caller must Release (normally via defer) to restore
// the original streams.
func OpenCapture() (*Capture, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	c := &Capture{
		prevOut: os.Stdout,
		prevErr: os.Stderr,
		outW:    outW,
		errW:    errW,
	}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		io.Copy(&c.outBuf, outR)
		outR.Close()
	}()
	go func() {
		defer c.wg.Done()
		io.Copy(&c.errBuf, errR)
		errR.Close()
	}()

	os.Stdout = outW
	os.Stderr = errW
	return c, nil
}

// Release restores the original streams, closes the pipe write ends, and
// waits for the drain goroutines to finish. Safe to call more than once.
func (c *Capture) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	os.Stdout = c.prevOut
	os.Stderr = c.prevErr
	c.outW.Close()
	c.errW.Close()
	c.wg.Wait()
}

// Stdout returns the captured standard output. Only valid after Release.
func (c *Capture) Stdout() string {
	return c.outBuf.String()
}

// Stderr returns the captured diagnostic output. Only valid after Release.
func (c *Capture) Stderr() string {
	return c.errBuf.String()
}

// Sections renders the captured streams as the per-run console artifact
// body. Invalid UTF-8 is replaced rather than failing persistence.
func (c *Capture) Sections() string {
	var b strings.Builder
	b.WriteString("=== STDOUT ===\n")
	b.WriteString(strings.ToValidUTF8(c.Stdout(), "�"))
	b.WriteString("\n\n=== STDERR ===\n")
	b.WriteString(strings.ToValidUTF8(c.Stderr(), "�"))
	return b.String()
}
