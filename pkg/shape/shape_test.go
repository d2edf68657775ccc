package shape

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	run := New(nil).Shape([]rune("abc"))
	assert.Equal(t, []rune("abc"), run.IDs())
	assert.Equal(t, []int{0, 1, 2}, run.CharToGlyph)
}

func TestArabicJoining(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []rune
	}{
		// beh alone: isolated
		{"isolated", "ب", []rune{0xFE8F}},
		// beh beh beh: initial, medial, final
		{"three letters", "ببب", []rune{0xFE91, 0xFE92, 0xFE90}},
		// alef joins only to the right, so the beh after it starts again
		{"right joining breaks", "باب", []rune{0xFE91, 0xFE8E, 0xFE8F}},
		// a mark between letters does not break the join
		{"transparent mark", "بَب", []rune{0xFE91, 0x064E, 0xFE90}},
		// hamza never joins
		{"non joining", "بءب", []rune{0xFE8F, 0x0621, 0xFE8F}},
		{"tatweel", "بـب", []rune{0xFE91, 0x0640, 0xFE90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := New(nil).Shape([]rune(tt.in))
			assert.Equal(t, tt.want, run.IDs())
		})
	}
}

func TestLamAlef(t *testing.T) {
	run := New(nil).Shape([]rune("لا"))
	assert.Equal(t, []rune{0xFEFB}, run.IDs())
	assert.Equal(t, []int{0, 0}, run.CharToGlyph)

	run = New(nil).Shape([]rune("بلا"))
	assert.Equal(t, []rune{0xFE91, 0xFEFC}, run.IDs(), "final lam-alef after a joining letter")
	assert.Equal(t, []int{0, 1, 1}, run.CharToGlyph)
}

func TestDevanagari(t *testing.T) {
	// ka + nukta composes
	run := New(nil).Shape([]rune{0x0915, devaNukta})
	assert.Equal(t, []rune{0x0958}, run.IDs())

	// ka + short i: the sign is drawn first
	run = New(nil).Shape([]rune{0x0915, devaMatraI})
	assert.Equal(t, []rune{devaMatraI, 0x0915}, run.IDs())
	assert.Equal(t, []int{1, 0}, run.CharToGlyph)
}

func TestDevanagariWithTable(t *testing.T) {
	const (
		halfKa = 0xE001
		rephG  = 0xE002
		subRA  = 0xE003
	)
	lig := NewLigatures(nil, []Pair{
		{0x0915, devaVirama, halfKa},
		{devaRA, devaVirama, rephG},
		{devaVirama, devaRA, subRA},
	}, nil)
	s := New(lig)

	// ka virama ssa: half ka then ssa
	run := s.Shape([]rune{0x0915, devaVirama, 0x0937})
	assert.Equal(t, []rune{halfKa, 0x0937}, run.IDs())

	// ra virama ka: the reph moves after the consonant
	run = s.Shape([]rune{devaRA, devaVirama, 0x0915})
	assert.Equal(t, []rune{0x0915, rephG}, run.IDs())
	assert.Equal(t, []int{1, 1, 0}, run.CharToGlyph)

	// pa virama ra: subscript ra
	run = s.Shape([]rune{0x092A, devaVirama, devaRA})
	assert.Equal(t, []rune{0x092A, subRA}, run.IDs())

	// zwnj keeps the virama visible
	run = s.Shape([]rune{0x0915, devaVirama, zwnj, 0x0937})
	assert.Equal(t, []rune{0x0915, devaVirama, 0x0937}, run.IDs())
}

func TestLigatureTable(t *testing.T) {
	lig := NewLigatures(
		map[rune]rune{'x': 'X'},
		[]Pair{{'f', 'i', 0xFB01}, {'f', 'l', 0xFB02}},
		[]Sequence{{In: []rune("ffi"), Out: []rune{0xFB03}}},
	)
	run := New(lig).Shape([]rune("office fly x"))
	assert.Equal(t, []rune{'o', 0xFB03, 'c', 'e', ' ', 0xFB02, 'y', ' ', 'X'}, run.IDs())
	assert.Equal(t, []int{0, 1, 1, 1, 2, 3, 4, 5, 5, 6, 7, 8}, run.CharToGlyph)
	assert.Less(t, len(run.Glyphs), len("office fly x"))
}

func TestLigatureFileRoundTrip(t *testing.T) {
	lig := NewLigatures(
		map[rune]rune{'a': 'b'},
		[]Pair{{'f', 'l', 0xFB02}, {'f', 'i', 0xFB01}},
		[]Sequence{{In: []rune("ffl"), Out: []rune{0xFB04}}},
	)
	var buf bytes.Buffer
	n, err := lig.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "liga", buf.String()[:4])

	got, err := LoadLigatures(&buf)
	require.NoError(t, err)
	opts := cmp.AllowUnexported(Ligatures{})
	assert.Empty(t, cmp.Diff(lig, got, opts))
}

func TestLoadLigaturesErrors(t *testing.T) {
	_, err := LoadLigatures(bytes.NewReader([]byte("nope\x00\x00\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrBadLigatures)

	_, err = LoadLigatures(bytes.NewReader([]byte("liga\x00\x01")))
	assert.ErrorIs(t, err, ErrBadLigatures)

	// pairs out of order
	data := []byte("liga\x00\x00\x00\x02\x00\x01" +
		"\x00g\x00h\x00\x01" +
		"\x00a\x00b\x00\x02" +
		"\x00\x00")
	_, err = LoadLigatures(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadLigatures)

	// a long sequence whose output is longer than its input
	data = []byte("liga\x00\x00\x00\x00\x00\x05" +
		"\x00\x01\x00\x02\x00a\x00b\x00c")
	_, err = LoadLigatures(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadLigatures)
}

func TestLoadLigatureFile(t *testing.T) {
	_, err := LoadLigatureFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "ligatures")
	var buf bytes.Buffer
	_, err = NewLigatures(nil, []Pair{{'f', 'i', 0xFB01}}, nil).WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	lig, err := LoadLigatureFile(path)
	require.NoError(t, err)
	g, ok := lig.pair('f', 'i')
	assert.True(t, ok)
	assert.Equal(t, rune(0xFB01), g)
}
