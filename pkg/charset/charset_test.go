package charset

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF8Default(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", d.Name())

	r, n := d.DecodeRune([]byte("é!"))
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, n)

	_, n = d.DecodeRune(nil)
	assert.Equal(t, 0, n)
}

func TestLatin1IsWindows1252(t *testing.T) {
	d, err := New("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", d.Name())

	r, n := d.DecodeRune([]byte{0xe9, 'x'})
	assert.Equal(t, 'é', r)
	assert.Equal(t, 1, n)

	// 0x80 is the euro sign in windows-1252.
	r, _ = d.DecodeRune([]byte{0x80})
	assert.Equal(t, '€', r)
}

func TestShiftJIS(t *testing.T) {
	d, err := New("shift_jis")
	require.NoError(t, err)

	// "日本" in Shift_JIS.
	src := []byte{0x93, 0xfa, 0x96, 0x7b}
	r, n := d.DecodeRune(src)
	assert.Equal(t, '日', r)
	assert.Equal(t, 2, n)
	assert.Equal(t, "日本", DecodeString(d, src))

	r, n = d.DecodeRune([]byte{'a'})
	assert.Equal(t, 'a', r)
	assert.Equal(t, 1, n)
}

func TestTruncatedSequence(t *testing.T) {
	d, err := New("shift_jis")
	require.NoError(t, err)
	r, n := d.DecodeRune([]byte{0x93})
	assert.Equal(t, utf8.RuneError, r)
	assert.Equal(t, 1, n)
}

func TestUnknownLabel(t *testing.T) {
	_, err := New("klingon-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "klingon-8")
}
