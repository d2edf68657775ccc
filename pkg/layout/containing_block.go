package layout

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// containingBlock returns the containing block of an out-of-flow box
// (CSS 2.1 §10.1): for absolute positioning the padding box of the nearest
// positioned ancestor, otherwise the initial containing block. Fixed boxes
// always use the initial containing block.
func (e *Engine) containingBlock(b *box.Box) image.Rectangle {
	icb := image.Rect(0, 0, e.opts.Width, e.opts.Height)
	if b.Style.Position == css.PositionFixed {
		return icb
	}
	for p := b.Parent; p != nil; p = p.Parent {
		if p.Style == nil || p.Style.Position == css.PositionStatic {
			continue
		}
		bd := borders(p.Style)
		r := p.Rect()
		r.Min.X += bd[css.SideLeft]
		r.Min.Y += bd[css.SideTop]
		r.Max.X -= bd[css.SideRight]
		r.Max.Y -= bd[css.SideBottom]
		return r.Canon()
	}
	return icb
}
