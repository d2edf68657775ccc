package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// applyRelative shifts relatively positioned boxes by their offsets
// (CSS 2.1 §9.4.3). Left wins over right and top over bottom. Out-of-flow
// subtrees are skipped; they are handled once laid out.
func (e *Engine) applyRelative(b *box.Box) {
	b.Walk(func(x *box.Box) bool {
		cs := x.Style
		if cs == nil || cs.Display == css.DisplayNone {
			return false
		}
		if x != b && cs.Position.OutOfFlow() {
			return false
		}
		if cs.Position != css.PositionRelative || x.Parent == nil {
			return true
		}
		cbw, cbh := x.Parent.Width, x.Parent.Height
		dx, dy := 0, 0
		switch off := cs.Offset; {
		case !off[css.SideLeft].IsAuto():
			dx = off[css.SideLeft].Resolve(cbw)
		case !off[css.SideRight].IsAuto():
			dx = -off[css.SideRight].Resolve(cbw)
		}
		switch off := cs.Offset; {
		case !off[css.SideTop].IsAuto():
			dy = off[css.SideTop].Resolve(cbh)
		case !off[css.SideBottom].IsAuto():
			dy = -off[css.SideBottom].Resolve(cbh)
		}
		translate(x, dx, dy)
		return true
	})
}

// layoutAbsolute lays out the out-of-flow boxes collected so far, and the
// ones found inside them, against their containing blocks (CSS 2.1
// §10.3.7 and §10.6.4).
func (e *Engine) layoutAbsolute() {
	for i := 0; i < len(e.abs); i++ {
		b := e.abs[i]
		e.enter(b)
		cs := b.Style
		cb := e.containingBlock(b)
		cbw, cbh := cb.Dx(), cb.Dy()
		m := margins(cs, cbw)
		off := cs.Offset
		left, right := off[css.SideLeft], off[css.SideRight]
		top, bottom := off[css.SideTop], off[css.SideBottom]

		var w int
		switch {
		case !cs.Width.IsAuto():
			w = clampWidth(cs, cs.Width.Resolve(cbw), cbw) + frame(cs, cbw).h()
		case !left.IsAuto() && !right.IsAuto():
			w = max(0, cbw-left.Resolve(cbw)-right.Resolve(cbw)-m.h())
		default:
			w = e.shrinkToFit(b, cbw-m.h()-left.Resolve(cbw)-right.Resolve(cbw), cbw)
		}
		e.layoutSized(b, 0, 0, w, cbw, cbh, nil)
		if cs.Height.IsAuto() && !top.IsAuto() && !bottom.IsAuto() {
			h := cbh - top.Resolve(cbh) - bottom.Resolve(cbh) - m.v()
			b.Height = max(b.Height, h)
		}

		static := cb.Min
		if sp, ok := e.static[b]; ok {
			static = sp.point()
		}
		x := static.X + m[css.SideLeft]
		switch {
		case !left.IsAuto():
			x = cb.Min.X + left.Resolve(cbw) + m[css.SideLeft]
		case !right.IsAuto():
			x = cb.Max.X - right.Resolve(cbw) - m[css.SideRight] - b.Width
		}
		y := static.Y + m[css.SideTop]
		switch {
		case !top.IsAuto():
			y = cb.Min.Y + top.Resolve(cbh) + m[css.SideTop]
		case !bottom.IsAuto():
			y = cb.Max.Y - bottom.Resolve(cbh) - m[css.SideBottom] - b.Height
		}
		translate(b, x-b.X, y-b.Y)
		b.AbsolutePos = true
		e.applyRelative(b)
	}
}
