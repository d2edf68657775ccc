package layout

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// floatBox is a positioned float. The list references boxes but never owns
// them; it lives as long as the block formatting context it belongs to.
type floatBox struct {
	b    *box.Box
	side css.Float
	// r is the margin box.
	r image.Rectangle
}

// floatList holds the floats of one block formatting context.
type floatList struct {
	items []floatBox
	// top is the top of the last placed float; CSS 2.1 §9.5.1 rule 5 keeps
	// later floats from going higher.
	top int
}

func newFloatList() *floatList { return &floatList{} }

// span returns the part of [left, right) that is free of floats over the
// band [y, y+h).
func (fl *floatList) span(y, h, left, right int) (int, int) {
	if h < 1 {
		h = 1
	}
	for _, f := range fl.items {
		if f.r.Max.Y <= y || f.r.Min.Y >= y+h {
			continue
		}
		switch f.side {
		case css.FloatLeft:
			left = max(left, f.r.Max.X)
		case css.FloatRight:
			right = min(right, f.r.Min.X)
		}
	}
	return left, max(left, right)
}

// narrowed reports whether a float intrudes into [left, right) at y.
func (fl *floatList) narrowed(y, h, left, right int) bool {
	l, r := fl.span(y, h, left, right)
	return l != left || r != right
}

// clearY returns the y below the floats that clear c names.
func (fl *floatList) clearY(c css.Clear, y int) int {
	if c == css.ClearNone {
		return y
	}
	for _, f := range fl.items {
		switch {
		case c == css.ClearBoth,
			c == css.ClearLeft && f.side == css.FloatLeft,
			c == css.ClearRight && f.side == css.FloatRight:
			y = max(y, f.r.Max.Y)
		}
	}
	return y
}

// nextBottom returns the nearest float bottom below y.
func (fl *floatList) nextBottom(y int) (int, bool) {
	next, ok := 0, false
	for _, f := range fl.items {
		if f.r.Max.Y > y && (!ok || f.r.Max.Y < next) {
			next, ok = f.r.Max.Y, true
		}
	}
	return next, ok
}

// bottom returns the lowest float bottom, or 0.
func (fl *floatList) bottom() int {
	b := 0
	for _, f := range fl.items {
		b = max(b, f.r.Max.Y)
	}
	return b
}

// place finds the highest position at or below y where a w×h margin box
// fits between left and right, moving down past float bottoms as needed,
// and records it. It returns the top-left corner of the margin box.
func (fl *floatList) place(b *box.Box, side css.Float, w, h, y, left, right int) image.Point {
	y = max(y, fl.top)
	for {
		l, r := fl.span(y, h, left, right)
		next, more := fl.nextBottom(y)
		if r-l >= w || (l == left && r == right) || !more {
			x := l
			if side == css.FloatRight {
				x = r - w
			}
			pt := image.Pt(x, y)
			fl.items = append(fl.items, floatBox{b: b, side: side, r: image.Rectangle{Min: pt, Max: pt.Add(image.Pt(w, h))}})
			fl.top = y
			return pt
		}
		y = next
	}
}
