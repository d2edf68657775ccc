package bidi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	xbidi "golang.org/x/text/unicode/bidi"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		r    rune
		want Class
	}{
		{'a', xbidi.L},
		{'א', xbidi.R},
		{'ب', xbidi.AL},
		{'1', xbidi.EN},
		{'٣', xbidi.AN},
		{' ', xbidi.WS},
		{'(', xbidi.ON},
		{RLE, xbidi.RLE},
		{PDF, xbidi.PDF},
		{'\u2066', xbidi.ON},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassOf(tt.r), "class of %U", tt.r)
	}
}

func TestRaisesLevel(t *testing.T) {
	assert.False(t, RaisesLevel('a'))
	assert.False(t, RaisesLevel('1'))
	assert.False(t, RaisesLevel(' '))
	assert.True(t, RaisesLevel('ש'))
	assert.True(t, RaisesLevel('ب'))
	assert.True(t, RaisesLevel(RLO))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		dir    Direction
		base   uint8
		levels []uint8
	}{
		{"latin", "abc", LeftToRight, 0, []uint8{0, 0, 0}},
		{"mixed rtl base", "hello שלום", RightToLeft, 1,
			[]uint8{2, 2, 2, 2, 2, 1, 1, 1, 1, 1}},
		{"first strong", "שלום abc", Neutral, 1,
			[]uint8{1, 1, 1, 1, 1, 2, 2, 2}},
		{"no strong", "123", Neutral, 0, []uint8{0, 0, 0}},
		{"numbers after latin", "abc 123", LeftToRight, 0,
			[]uint8{0, 0, 0, 0, 0, 0, 0}},
		{"numbers in rtl", "שלום 12", RightToLeft, 1,
			[]uint8{1, 1, 1, 1, 1, 2, 2}},
		{"arabic number", "ب1", Neutral, 1, []uint8{1, 2}},
		{"separator between numbers", "א 1,2", LeftToRight, 0,
			[]uint8{1, 1, 2, 2, 2}},
		{"neutral between latin", "a (b) c", LeftToRight, 0,
			[]uint8{0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve([]rune(tt.text), tt.dir)
			assert.Equal(t, tt.base, p.Base)
			assert.Equal(t, tt.levels, p.Levels)
		})
	}
}

func TestExplicitEmbeddings(t *testing.T) {
	text := []rune("a" + string(RLE) + "b" + string(PDF) + "c")
	p := Resolve(text, LeftToRight)
	assert.Equal(t, uint8(0), p.Levels[0])
	assert.Equal(t, uint8(2), p.Levels[2], "latin inside an RTL embedding")
	assert.Equal(t, uint8(0), p.Levels[4])
	assert.Equal(t, xbidi.BN, p.Classes[1])
	assert.Equal(t, xbidi.BN, p.Classes[3])

	text = []rune(string(RLO) + "abc" + string(PDF) + "d")
	p = Resolve(text, LeftToRight)
	assert.Equal(t, []uint8{1, 1, 1}, p.Levels[1:4], "override forces R")
	assert.Equal(t, uint8(0), p.Levels[5])
}

func TestEmbeddingOverflow(t *testing.T) {
	var text []rune
	for range 70 {
		text = append(text, LRE)
	}
	text = append(text, 'x')
	p := Resolve(text, LeftToRight)
	assert.LessOrEqual(t, p.Levels[len(text)-1], uint8(MaxDepth+1))
}

func TestRuns(t *testing.T) {
	p := Resolve([]rune("abאב"), LeftToRight)
	assert.Equal(t, []Run{
		{Class: SOT, Level: 0},
		{Class: xbidi.L, Pos: 0, Len: 2, Level: 0},
		{Class: xbidi.R, Pos: 2, Len: 2, Level: 1},
		{Class: EOT, Pos: 4, Level: 0},
	}, p.Runs())
}

func TestVisualOrder(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, VisualOrder([]uint8{0, 0, 0}))
	assert.Equal(t, []int{9, 8, 7, 6, 5, 0, 1, 2, 3, 4},
		VisualOrder([]uint8{2, 2, 2, 2, 2, 1, 1, 1, 1, 1}))
	assert.Equal(t, []int{0, 3, 2, 1, 4},
		VisualOrder([]uint8{0, 1, 1, 1, 0}))
	assert.Empty(t, VisualOrder(nil))
}

func TestReorderWords(t *testing.T) {
	words := []string{"hello", " ", "שלום"}
	Reorder(words, []uint8{2, 1, 1})
	assert.Equal(t, []string{"שלום", " ", "hello"}, words)
}

func TestResetTrailing(t *testing.T) {
	text := []rune("אב  ")
	levels := []uint8{1, 1, 1, 1}
	ResetTrailing(text, levels, 0)
	assert.Equal(t, []uint8{1, 1, 0, 0}, levels)
}

func TestMirror(t *testing.T) {
	assert.Equal(t, ')', Mirror('('))
	assert.Equal(t, '[', Mirror(']'))
	assert.Equal(t, '»', Mirror('«'))
	assert.Equal(t, 'a', Mirror('a'))

	text := []rune("(a)")
	MirrorRunes(text, []uint8{1, 1, 0})
	assert.Equal(t, ")a)", string(text))
}
