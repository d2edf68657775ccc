package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// collapseMargins returns the collapsed value of two adjoining vertical
// margins. Per CSS 2.1 §8.3.1: both positive gives the larger, both
// negative the more negative, mixed the sum.
func collapseMargins(m1, m2 int) int {
	switch {
	case m1 >= 0 && m2 >= 0:
		return max(m1, m2)
	case m1 < 0 && m2 < 0:
		return min(m1, m2)
	}
	return m1 + m2
}

// edges are resolved per-side lengths in pixels.
type edges [4]int

func (e edges) h() int { return e[css.SideLeft] + e[css.SideRight] }
func (e edges) v() int { return e[css.SideTop] + e[css.SideBottom] }

func margins(cs *css.ComputedStyle, cbw int) edges {
	var m edges
	for i, l := range cs.Margin {
		m[i] = l.Resolve(cbw)
	}
	return m
}

func paddings(cs *css.ComputedStyle, cbw int) edges {
	var p edges
	for i, l := range cs.Padding {
		p[i] = l.Resolve(cbw)
	}
	return p
}

func borders(cs *css.ComputedStyle) edges {
	var b edges
	for i, w := range cs.BorderWidth {
		b[i] = int(w)
	}
	return b
}

// frame returns the padding plus border on each side.
func frame(cs *css.ComputedStyle, cbw int) edges {
	p, b := paddings(cs, cbw), borders(cs)
	for i := range p {
		p[i] += b[i]
	}
	return p
}

// clampWidth applies min-width and max-width to a content width.
func clampWidth(cs *css.ComputedStyle, w, cbw int) int {
	if !cs.MaxWidth.IsAuto() {
		w = min(w, cs.MaxWidth.Resolve(cbw))
	}
	return max(w, cs.MinWidth.Resolve(cbw), 0)
}

// clampHeight applies min-height and max-height to a content height.
// Percentages of an auto containing block height are ignored.
func clampHeight(cs *css.ComputedStyle, h, cbh int) int {
	if l := cs.MaxHeight; !l.IsAuto() && (l.Unit != css.UnitPercent || cbh >= 0) {
		h = min(h, l.Resolve(cbh))
	}
	if l := cs.MinHeight; l.Unit != css.UnitPercent || cbh >= 0 {
		h = max(h, l.Resolve(cbh))
	}
	return max(h, 0)
}

// specifiedHeight returns the content height given by the height property.
func specifiedHeight(cs *css.ComputedStyle, cbh int) (int, bool) {
	if cs.Height.IsAuto() || (cs.Height.Unit == css.UnitPercent && cbh < 0) {
		return 0, false
	}
	return cs.Height.Resolve(cbh), true
}

// usedWidth computes the border-box width and the horizontal margins of a
// block-level box in normal flow (CSS 2.1 §10.3.3). An auto width fills
// the containing block; auto margins around an explicit width center the
// box.
func usedWidth(cs *css.ComputedStyle, cbw int) (w, ml, mr int) {
	fr := frame(cs, cbw)
	ml = cs.Margin[css.SideLeft].Resolve(cbw)
	mr = cs.Margin[css.SideRight].Resolve(cbw)
	if cs.Width.IsAuto() {
		cw := clampWidth(cs, cbw-ml-mr-fr.h(), cbw)
		return cw + fr.h(), ml, mr
	}
	w = clampWidth(cs, cs.Width.Resolve(cbw), cbw) + fr.h()
	autoL, autoR := cs.Margin[css.SideLeft].IsAuto(), cs.Margin[css.SideRight].IsAuto()
	switch {
	case autoL && autoR:
		ml = max(0, (cbw-w)/2)
		mr = max(0, cbw-w-ml)
	case autoL:
		ml = max(0, cbw-w-mr)
	case autoR:
		mr = max(0, cbw-w-ml)
	}
	return w, ml, mr
}

// shrinkToFit returns the border-box width of a float, an inline-block or
// an absolutely positioned box (CSS 2.1 §10.3.5). An explicit width is
// used as is; auto gives min(max(preferred minimum, available), preferred).
// avail excludes the horizontal margins.
func (e *Engine) shrinkToFit(b *box.Box, avail, cbw int) int {
	cs := b.Style
	if !cs.Width.IsAuto() {
		return clampWidth(cs, cs.Width.Resolve(cbw), cbw) + frame(cs, cbw).h()
	}
	x := e.minMax(b)
	return min(max(x.min, avail), x.max)
}
