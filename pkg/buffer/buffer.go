// Package buffer defines the text buffer the document is parsed from and an
// in-memory implementation of it.
package buffer

import (
	"fmt"

	"github.com/qemacs/qemacs-sub000/pkg/charset"
)

// Op is the kind of a buffer modification.
type Op uint8

const (
	OpInsert Op = iota
	OpDelete
)

func (o Op) String() string {
	if o == OpInsert {
		return "insert"
	}
	return "delete"
}

// Callback is called synchronously after every modification with the
// affected byte range.
type Callback func(op Op, offset, size int)

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Buffer is a random-access character store addressed by byte offsets in
// its native encoding.
type Buffer interface {
	// NextChar decodes the character at off and returns the offset of the
	// next one. At or past the end it returns next == off.
	NextChar(off int) (r rune, next int)
	ReadRange(start, end int) []byte
	Size() int
	Subscribe(f Callback) Subscription
}

// Mem is a Buffer held in memory.
type Mem struct {
	data []byte
	dec  charset.Decoder
	subs []*subscription
}

var _ Buffer = (*Mem)(nil)

// NewMem creates a buffer over data decoded with dec; a nil dec means UTF-8.
// The buffer takes ownership of data.
func NewMem(data []byte, dec charset.Decoder) *Mem {
	if dec == nil {
		dec = charset.UTF8
	}
	return &Mem{data: data, dec: dec}
}

// NewString creates a UTF-8 buffer holding s.
func NewString(s string) *Mem {
	return NewMem([]byte(s), nil)
}

func (m *Mem) NextChar(off int) (rune, int) {
	if off < 0 || off >= len(m.data) {
		return 0, off
	}
	r, n := m.dec.DecodeRune(m.data[off:])
	if n <= 0 {
		return 0, off
	}
	return r, off + n
}

func (m *Mem) ReadRange(start, end int) []byte {
	start = max(0, min(start, len(m.data)))
	end = max(start, min(end, len(m.data)))
	return append([]byte(nil), m.data[start:end]...)
}

func (m *Mem) Size() int { return len(m.data) }

// Bytes returns the contents. The slice must not be modified.
func (m *Mem) Bytes() []byte { return m.data }

// Decoder returns the character set decoder of the buffer.
func (m *Mem) Decoder() charset.Decoder { return m.dec }

// Insert inserts p at off.
func (m *Mem) Insert(off int, p []byte) error {
	if off < 0 || off > len(m.data) {
		return fmt.Errorf("insert at %d: out of range [0,%d]", off, len(m.data))
	}
	if len(p) == 0 {
		return nil
	}
	m.data = append(m.data[:off], append(append([]byte(nil), p...), m.data[off:]...)...)
	m.notify(OpInsert, off, len(p))
	return nil
}

// Delete removes n bytes at off.
func (m *Mem) Delete(off, n int) error {
	if off < 0 || n < 0 || off+n > len(m.data) {
		return fmt.Errorf("delete [%d,%d): out of range [0,%d]", off, off+n, len(m.data))
	}
	if n == 0 {
		return nil
	}
	m.data = append(m.data[:off], m.data[off+n:]...)
	m.notify(OpDelete, off, n)
	return nil
}

type subscription struct {
	m *Mem
	f Callback
}

func (s *subscription) Unsubscribe() {
	if s.m == nil {
		return
	}
	subs := s.m.subs
	for i, x := range subs {
		if x == s {
			s.m.subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	s.m = nil
}

// Subscribe registers f for modification notifications.
func (m *Mem) Subscribe(f Callback) Subscription {
	s := &subscription{m: m, f: f}
	m.subs = append(m.subs, s)
	return s
}

func (m *Mem) notify(op Op, off, n int) {
	for _, s := range append([]*subscription(nil), m.subs...) {
		s.f(op, off, n)
	}
}
