package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qemacs/qemacs-sub000/pkg/charset"
)

func TestNextChar(t *testing.T) {
	b := NewString("aé")
	r, next := b.NextChar(0)
	assert.Equal(t, 'a', r)
	assert.Equal(t, 1, next)
	r, next = b.NextChar(1)
	assert.Equal(t, 'é', r)
	assert.Equal(t, 3, next)
	_, next = b.NextChar(3)
	assert.Equal(t, 3, next, "end of buffer does not advance")
}

func TestNextCharWithCharset(t *testing.T) {
	dec, err := charset.New("latin1")
	require.NoError(t, err)
	b := NewMem([]byte{'<', 0xe9, '>'}, dec)
	r, next := b.NextChar(1)
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, next)
}

func TestReadRangeClamps(t *testing.T) {
	b := NewString("hello")
	assert.Equal(t, []byte("ell"), b.ReadRange(1, 4))
	assert.Equal(t, []byte("lo"), b.ReadRange(3, 99))
	assert.Empty(t, b.ReadRange(4, 2))
}

type event struct {
	op       Op
	off, len int
}

func TestSubscriptions(t *testing.T) {
	b := NewString("<img alt=x>")
	var got []event
	sub := b.Subscribe(func(op Op, off, n int) { got = append(got, event{op, off, n}) })

	require.NoError(t, b.Insert(10, []byte("yz")))
	assert.Equal(t, "<img alt=xyz>", string(b.Bytes()))
	require.NoError(t, b.Delete(9, 1))
	assert.Equal(t, "<img alt=yz>", string(b.Bytes()))

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.NoError(t, b.Insert(0, []byte(" ")))

	assert.Equal(t, []event{{OpInsert, 10, 2}, {OpDelete, 9, 1}}, got)
}

func TestOutOfRange(t *testing.T) {
	b := NewString("ab")
	assert.Error(t, b.Insert(3, []byte("x")))
	assert.Error(t, b.Delete(1, 2))
	assert.Equal(t, 2, b.Size())
}
