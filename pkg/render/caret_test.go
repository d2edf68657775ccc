package render

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/screen/screentest"
)

func TestHitTestStartOfParagraph(t *testing.T) {
	pg := laidOut(t, "<p>hello</p>", 400)
	off, ok := HitTest(pg.root, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 3, off)

	off, ok = HitTest(pg.root, 19, 8)
	require.True(t, ok)
	assert.Equal(t, 5, off, "third glyph covers 16..24")

	off, ok = HitTest(pg.root, 1000, 300)
	require.True(t, ok)
	assert.Equal(t, 7, off, "far points snap to the closest box")
}

func TestHitTestEmptyDocument(t *testing.T) {
	pg := laidOut(t, "", 400)
	_, ok := HitTest(pg.root, 10, 10)
	assert.False(t, ok)
}

func TestCaretRoundTrip(t *testing.T) {
	for _, src := range []string{
		"<p>hello world foo bar</p><p>second paragraph</p>",
		`<p style="direction:rtl">hello שלום עולם</p>`,
		`<ul><li>one <b>two</b></li><li>three</li></ul>`,
	} {
		pg := laidOut(t, src, 96)
		n := 0
		for _, b := range targets(pg.root) {
			run := b.Run
			for i := range run.Chars {
				off := run.Offsets[i]
				if off == box.NoOffset {
					continue
				}
				c, ok := CaretAt(pg.root, off)
				require.True(t, ok, "%q: offset %d", src, off)
				ctr := image.Pt((c.Rect.Min.X+c.Rect.Max.X)/2, (c.Rect.Min.Y+c.Rect.Max.Y)/2)
				got, ok := HitTest(pg.root, ctr.X, ctr.Y)
				require.True(t, ok)
				assert.Equal(t, off, got, "%q: offset %d at %v", src, off, ctr)
				n++
			}
		}
		assert.NotZero(t, n, src)
	}
}

func TestCaretRect(t *testing.T) {
	pg := laidOut(t, "<p>hello</p>", 400)
	c, ok := CaretAt(pg.root, 5)
	require.True(t, ok)
	assert.Equal(t, image.Rect(16, 0, 17, 16), c.Rect)

	// The offset after the last character sits on the trailing edge.
	c, ok = CaretAt(pg.root, 8)
	require.True(t, ok)
	assert.Equal(t, image.Rect(40, 0, 41, 16), c.Rect)

	_, ok = CaretAt(pg.root, 1)
	assert.False(t, ok, "markup has no caret position")
}

func TestCaretLeftRight(t *testing.T) {
	pg := laidOut(t, "<p>ab cd</p>", 400)
	n := NewNavigator(pg.root)

	off, ok := n.Right(3)
	assert.True(t, ok)
	assert.Equal(t, 4, off)
	off, ok = n.Left(4)
	assert.True(t, ok)
	assert.Equal(t, 3, off)
	off, ok = n.Left(3)
	assert.False(t, ok)
	assert.Equal(t, 3, off)

	off, _ = n.LineEnd(3)
	assert.Equal(t, 8, off)
	off, _ = n.LineStart(6)
	assert.Equal(t, 3, off)
	off, ok = n.Right(8)
	assert.False(t, ok)
	assert.Equal(t, 8, off)
}

func TestCaretMovesAcrossWrappedLines(t *testing.T) {
	pg := laidOut(t, "<p>ab cd</p>", 32)
	n := NewNavigator(pg.root)

	off, ok := n.Right(5)
	require.True(t, ok)
	assert.Equal(t, 6, off)
	c, _ := CaretAt(pg.root, off)
	assert.Equal(t, 16, c.Rect.Min.Y, "the start of the next line wins over the end of the previous one")

	off, ok = n.Left(6)
	require.True(t, ok)
	assert.Equal(t, 5, off)
}

func TestCaretUpDownKeepsColumn(t *testing.T) {
	pg := laidOut(t, "<p>abcd</p><p>ef</p><p>ghij</p>", 400)
	n := NewNavigator(pg.root)

	off, ok := n.Down(6)
	require.True(t, ok)
	assert.Equal(t, 16, off, "end of the short line is closest to x=24")
	off, ok = n.Down(off)
	require.True(t, ok)
	assert.Equal(t, 26, off, "the column of the first vertical move is kept")
	off, ok = n.Down(off)
	assert.False(t, ok)
	assert.Equal(t, 26, off)

	off, _ = n.Up(off)
	assert.Equal(t, 16, off)
	off, _ = n.Up(off)
	assert.Equal(t, 6, off)

	// A horizontal move forgets the column.
	off, _ = n.Left(6)
	assert.Equal(t, 5, off)
	off, _ = n.Down(off)
	assert.Equal(t, 16, off)
	off, _ = n.Down(off)
	assert.Equal(t, 25, off)
}

func TestCaretDirectionAtBidiBoundary(t *testing.T) {
	const src = `<p style="direction:rtl">hello שלום</p>`
	pg := laidOut(t, src, 400)
	c, ok := CaretAt(pg.root, strings.Index(src, "ש"))
	require.True(t, ok)
	assert.Equal(t, css.DirRTL, c.Dir)

	h, ok := CaretAt(pg.root, strings.Index(src, "h"))
	require.True(t, ok)
	assert.Equal(t, css.DirLTR, h.Dir)
}

func TestDrawCaret(t *testing.T) {
	pg := laidOut(t, "<p>hello</p>", 400)
	c, ok := CaretAt(pg.root, 4)
	require.True(t, ok)

	scr := screentest.New(400, 600)
	NewPainter(scr, nil, Options{}).DrawCaret(c)
	require.Len(t, scr.Ops, 1)
	assert.Equal(t, screentest.Op{Kind: "xor", X: 8, Y: 0, W: 1, H: 16, Color: caretColor}, scr.Ops[0])

	hw := screentest.CursorScreen{Screen: screentest.New(400, 600)}
	NewPainter(hw, nil, Options{}).DrawCaret(c)
	require.Len(t, hw.Ops, 1)
	assert.Equal(t, screentest.Op{Kind: "cursor", X: 8, Y: 0, W: 1, H: 16}, hw.Ops[0])
}
