// Package diag carries diagnostics for malformed input and the cancellation
// status shared by every pipeline phase.
package diag

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrAborted is returned by a phase that stopped because its abort check
// fired. Partial results must be discarded by the caller.
var ErrAborted = errors.New("aborted")

// AbortFunc reports whether the current long operation should stop. A nil
// AbortFunc never aborts.
type AbortFunc func() bool

// Check returns ErrAborted if f fires.
func (f AbortFunc) Check() error {
	if f != nil && f() {
		return ErrAborted
	}
	return nil
}

// Sink receives one diagnostic per defect found in the input.
type Sink interface {
	Report(filename string, line int, msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(filename string, line int, msg string)

func (f SinkFunc) Report(filename string, line int, msg string) { f(filename, line, msg) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(string, int, string) {})

// Diagnostic is one reported defect.
type Diagnostic struct {
	Filename string
	Line     int
	Msg      string
}

func (d Diagnostic) Error() string {
	if d.Filename == "" {
		return fmt.Sprintf("%d: %s", d.Line, d.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", d.Filename, d.Line, d.Msg)
}

// ErrorBufferName is the name of the buffer collecting parse diagnostics.
const ErrorBufferName = "*xml-error*"

// ErrorBuffer accumulates diagnostics in order. Each entry is mirrored to
// the logger at warn level.
type ErrorBuffer struct {
	log   *zap.Logger
	mu    sync.Mutex
	diags []Diagnostic
}

// NewErrorBuffer creates an empty error buffer.
func NewErrorBuffer(log *zap.Logger) *ErrorBuffer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorBuffer{log: log.Named("diag")}
}

func (b *ErrorBuffer) Report(filename string, line int, msg string) {
	d := Diagnostic{Filename: filename, Line: line, Msg: msg}
	b.mu.Lock()
	b.diags = append(b.diags, d)
	b.mu.Unlock()
	b.log.Warn(msg, zap.String("buffer", ErrorBufferName), zap.String("file", filename), zap.Int("line", line))
}

// Name returns the well-known buffer name.
func (b *ErrorBuffer) Name() string { return ErrorBufferName }

// Diagnostics returns a copy of the collected diagnostics.
func (b *ErrorBuffer) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Diagnostic(nil), b.diags...)
}

// Lines returns the buffer contents, one "file:line: message" per entry.
func (b *ErrorBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.diags))
	for i, d := range b.diags {
		out[i] = d.Error()
	}
	return out
}

// Len returns the number of diagnostics.
func (b *ErrorBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.diags)
}

// Reset empties the buffer.
func (b *ErrorBuffer) Reset() {
	b.mu.Lock()
	b.diags = b.diags[:0]
	b.mu.Unlock()
}

// Err combines all diagnostics into one error, or nil if there are none.
func (b *ErrorBuffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for _, d := range b.diags {
		err = multierr.Append(err, d)
	}
	return err
}
