package render

import (
	"image"
	"slices"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/layout"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// caretColor is xored over the caret rectangle.
var caretColor = css.White

// Caret is the on-screen place of a source offset.
type Caret struct {
	Offset int
	// Rect is one pixel wide on the leading edge of the character: its
	// left edge in left-to-right text, its right edge otherwise.
	Rect image.Rectangle
	Dir  css.Direction
	Box  *box.Box
}

// stop is a position the caret can take on a line.
type stop struct {
	x   int
	off int
	b   *box.Box
}

// stops returns the caret positions of a text box: the leading edge of
// every character from the source, then the trailing edge of the box for
// the offset after it.
func stops(b *box.Box) []stop {
	run := b.Run
	ox, _ := layout.TextOrigin(b)
	out := make([]stop, 0, len(run.Chars)+1)
	for i := range run.Chars {
		if run.Offsets[i] == box.NoOffset {
			continue
		}
		out = append(out, stop{ox + leading(run, i), run.Offsets[i], b})
	}
	if end := run.Offsets[len(run.Chars)]; end != box.NoOffset {
		x := ox + run.Width
		if run.RTL {
			x = ox
		}
		out = append(out, stop{x, end, b})
	}
	return out
}

func leading(run *box.Run, i int) int {
	x0, x1 := run.CharSpan(i)
	if run.RTL {
		return x1
	}
	return x0
}

// locate finds the caret stop of off. A box showing the character at off
// wins over a box ending there.
func locate(root *box.Box, off int) (stop, bool) {
	var end stop
	found := false
	for _, b := range targets(root) {
		for _, s := range stops(b) {
			if s.off != off {
				continue
			}
			if s.b.Run.IndexOf(off) >= 0 {
				return s, true
			}
			if !found {
				end, found = s, true
			}
		}
	}
	return end, found
}

// CaretAt returns the caret of a source offset in a laid out tree.
func CaretAt(root *box.Box, off int) (Caret, bool) {
	s, ok := locate(root, off)
	if !ok {
		return Caret{}, false
	}
	return caretOf(s), true
}

func caretOf(s stop) Caret {
	run := s.b.Run
	_, baseline := layout.TextOrigin(s.b)
	top := baseline - run.Ascent
	c := Caret{Offset: s.off, Box: s.b, Rect: image.Rect(s.x, top, s.x+1, top+run.Ascent+run.Descent)}
	if run.RTL {
		c.Rect = c.Rect.Sub(image.Pt(1, 0))
		c.Dir = css.DirRTL
	}
	return c
}

// DrawCaret shows the caret: through the hardware cursor when the screen
// has one, by xoring its rectangle otherwise.
func (p *Painter) DrawCaret(c Caret) {
	r := c.Rect
	if cur, ok := p.scr.(screen.Cursor); ok {
		cur.CursorAt(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		return
	}
	p.scr.XorRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), caretColor)
}

// Navigator moves a caret over a laid out tree. Consecutive vertical
// moves keep the column the first one started from.
type Navigator struct {
	root     *box.Box
	lastX    int
	vertical bool
}

// NewNavigator creates a navigator over root. It must be recreated or
// Reset after the tree is laid out again.
func NewNavigator(root *box.Box) *Navigator {
	return &Navigator{root: root}
}

// Reset forgets the remembered column.
func (n *Navigator) Reset() { n.vertical = false }

// Left moves one position to the left on screen, to the end of the
// previous line at the start of a line. It reports false when the caret
// cannot move.
func (n *Navigator) Left(off int) (int, bool) {
	n.vertical = false
	cur, ok := locate(n.root, off)
	if !ok {
		return off, false
	}
	line := lineStops(n.root, cur.b)
	for i := len(line) - 1; i >= 0; i-- {
		if s := line[i]; s.x < cur.x && s.off != off {
			return s.off, true
		}
	}
	above := n.adjacentLine(cur.b, -1)
	for i := len(above) - 1; i >= 0; i-- {
		if above[i].off != off {
			return above[i].off, true
		}
	}
	return off, false
}

// Right moves one position to the right on screen, to the start of the
// next line at the end of a line.
func (n *Navigator) Right(off int) (int, bool) {
	n.vertical = false
	cur, ok := locate(n.root, off)
	if !ok {
		return off, false
	}
	for _, s := range lineStops(n.root, cur.b) {
		if s.x > cur.x && s.off != off {
			return s.off, true
		}
	}
	for _, s := range n.adjacentLine(cur.b, 1) {
		if s.off != off {
			return s.off, true
		}
	}
	return off, false
}

// Up moves to the closest position of the line above.
func (n *Navigator) Up(off int) (int, bool) { return n.vertically(off, -1) }

// Down moves to the closest position of the line below.
func (n *Navigator) Down(off int) (int, bool) { return n.vertically(off, 1) }

func (n *Navigator) vertically(off, dir int) (int, bool) {
	cur, ok := locate(n.root, off)
	if !ok {
		return off, false
	}
	if !n.vertical {
		n.lastX, n.vertical = cur.x, true
	}
	best, found := stop{}, false
	for _, s := range n.adjacentLine(cur.b, dir) {
		if s.off == off {
			continue
		}
		if !found || abs(s.x-n.lastX) < abs(best.x-n.lastX) {
			best, found = s, true
		}
	}
	if !found {
		return off, false
	}
	return best.off, true
}

// LineStart moves to the leftmost position of the line.
func (n *Navigator) LineStart(off int) (int, bool) {
	n.vertical = false
	cur, ok := locate(n.root, off)
	if !ok {
		return off, false
	}
	s := lineStops(n.root, cur.b)[0]
	return s.off, s.off != off
}

// LineEnd moves to the rightmost position of the line.
func (n *Navigator) LineEnd(off int) (int, bool) {
	n.vertical = false
	cur, ok := locate(n.root, off)
	if !ok {
		return off, false
	}
	line := lineStops(n.root, cur.b)
	s := line[len(line)-1]
	return s.off, s.off != off
}

// sameLine reports whether two boxes share a vertical band.
func sameLine(a, b *box.Box) bool {
	return a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// lineStops returns the stops of every box on the line of b, left to
// right.
func lineStops(root, b *box.Box) []stop {
	var out []stop
	for _, t := range targets(root) {
		if t == b || sameLine(t, b) {
			out = append(out, stops(t)...)
		}
	}
	slices.SortStableFunc(out, func(a, b stop) int { return a.x - b.x })
	return out
}

// adjacentLine returns the stops of the closest line entirely above
// (dir < 0) or below (dir > 0) the box b, or nil.
func (n *Navigator) adjacentLine(b *box.Box, dir int) []stop {
	var near *box.Box
	for _, t := range targets(n.root) {
		switch {
		case dir < 0 && t.Y+t.Height <= b.Y:
			if near == nil || t.Y+t.Height > near.Y+near.Height {
				near = t
			}
		case dir > 0 && t.Y >= b.Y+b.Height:
			if near == nil || t.Y < near.Y {
				near = t
			}
		}
	}
	if near == nil {
		return nil
	}
	return lineStops(n.root, near)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
