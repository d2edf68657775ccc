package render

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// paintBorders draws the borders of the border box r. Top and bottom
// borders span the full width; left and right ones fit between them.
func (p *Painter) paintBorders(r image.Rectangle, cs *css.ComputedStyle, sides sideMask) {
	var w [4]int
	for s := range w {
		if sides.has(s) && cs.BorderStyle[s].Visible() {
			w[s] = int(cs.BorderWidth[s])
		}
	}
	for s := range w {
		if w[s] <= 0 {
			continue
		}
		var side image.Rectangle
		switch s {
		case css.SideTop:
			side = image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w[s])
		case css.SideBottom:
			side = image.Rect(r.Min.X, r.Max.Y-w[s], r.Max.X, r.Max.Y)
		case css.SideLeft:
			side = image.Rect(r.Min.X, r.Min.Y+w[css.SideTop], r.Min.X+w[s], r.Max.Y-w[css.SideBottom])
		case css.SideRight:
			side = image.Rect(r.Max.X-w[s], r.Min.Y+w[css.SideTop], r.Max.X, r.Max.Y-w[css.SideBottom])
		}
		if side.Empty() {
			continue
		}
		p.borderSide(side, s, cs.BorderStyle[s], cs.BorderColor[s])
	}
}

// borderSide draws one side. side is the rectangle it covers.
func (p *Painter) borderSide(side image.Rectangle, s int, style css.BorderStyle, c css.Color) {
	horizontal := s == css.SideTop || s == css.SideBottom
	// Top and left sides have their outer edge first and catch the light
	// in the 3D styles.
	upperLeft := s == css.SideTop || s == css.SideLeft
	light, dark := c.Lighter(), c

	switch style {
	case css.BorderDouble:
		n := thickness(side, horizontal)
		if n < 3 {
			p.fill(side, c)
			return
		}
		t := n / 3
		p.fill(slice(side, horizontal, 0, t), c)
		p.fill(slice(side, horizontal, n-t, n), c)
	case css.BorderGroove, css.BorderRidge:
		n := thickness(side, horizontal)
		outer, inner := dark, light
		if (style == css.BorderRidge) == upperLeft {
			outer, inner = light, dark
		}
		near, far := outer, inner
		if !upperLeft {
			near, far = inner, outer
		}
		h := n / 2
		p.fill(slice(side, horizontal, 0, h), near)
		p.fill(slice(side, horizontal, h, n), far)
	case css.BorderInset, css.BorderOutset:
		col := dark
		if (style == css.BorderOutset) == upperLeft {
			col = light
		}
		p.fill(side, col)
	case css.BorderDotted, css.BorderDashed:
		p.dashes(side, horizontal, style == css.BorderDotted, c)
	default:
		p.fill(side, c)
	}
}

func (p *Painter) fill(r image.Rectangle, c css.Color) {
	if r.Empty() {
		return
	}
	p.scr.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), c)
}

// thickness is the extent of a side across its length.
func thickness(r image.Rectangle, horizontal bool) int {
	if horizontal {
		return r.Dy()
	}
	return r.Dx()
}

// slice returns the band [from, to) of a side across its thickness,
// counted from its top or left edge.
func slice(r image.Rectangle, horizontal bool, from, to int) image.Rectangle {
	if horizontal {
		return image.Rect(r.Min.X, r.Min.Y+from, r.Max.X, r.Min.Y+to)
	}
	return image.Rect(r.Min.X+from, r.Min.Y, r.Min.X+to, r.Max.Y)
}

// dashes draws a dotted or dashed side as a row of segments as long as
// the side is thick (dots) or three times that (dashes).
func (p *Painter) dashes(side image.Rectangle, horizontal, dotted bool, c css.Color) {
	n := thickness(side, horizontal)
	seg, gap := 3*n, 2*n
	if dotted {
		seg, gap = n, n
	}
	length := side.Dx()
	if !horizontal {
		length = side.Dy()
	}
	for at := 0; at < length; at += seg + gap {
		end := min(at+seg, length)
		if horizontal {
			p.fill(image.Rect(side.Min.X+at, side.Min.Y, side.Min.X+end, side.Max.Y), c)
		} else {
			p.fill(image.Rect(side.Min.X, side.Min.Y+at, side.Max.X, side.Min.Y+end), c)
		}
	}
}
