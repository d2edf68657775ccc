package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// baselineShift returns how far the baseline of b lies below the baseline
// of the line, from the vertical-align of b and of its inline ancestors up
// to the container. asc and desc are the extents of b itself. rel is top or
// bottom when b or an ancestor aligns to the line box instead; the shift is
// then relative to the baseline of that box.
func (e *Engine) baselineShift(b, container *box.Box, asc, desc int) (int, css.VerticalAlign) {
	shift := 0
	for x := b; x != nil && x != container && x.Parent != nil; x = x.Parent {
		xa, xd := asc, desc
		if x != b {
			f := e.font(x.Style)
			xa, xd = f.Ascent(), f.Descent()
		}
		pf := e.font(x.Parent.Style)
		pa, pd := pf.Ascent(), pf.Descent()
		switch x.Style.VerticalAlign {
		case css.VAlignSub:
			shift += pa * 2 / 5
		case css.VAlignSuper:
			shift -= pa * 4 / 5
		case css.VAlignTextTop:
			shift += xa - pa
		case css.VAlignTextBottom:
			shift += pd - xd
		case css.VAlignMiddle:
			// The middle of the box goes half an x-height above the
			// parent baseline; the x-height is taken as half the ascent.
			shift += (xa-xd)/2 - pa/4
		case css.VAlignTop, css.VAlignBottom:
			return shift, x.Style.VerticalAlign
		}
	}
	return shift, css.VAlignBaseline
}

// alignOffset returns the offset of line content from the left edge for a
// slack of free space. Content wider than the line overflows on the end
// side.
func alignOffset(align css.TextAlign, dir css.Direction, slack int) int {
	if slack < 0 {
		if dir == css.DirRTL {
			return slack
		}
		return 0
	}
	switch align {
	case css.TextAlignLeft:
		return 0
	case css.TextAlignRight:
		return slack
	case css.TextAlignCenter:
		return slack / 2
	}
	if dir == css.DirRTL {
		return slack
	}
	return 0
}
