package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// setMarker records an outside list marker. It is placed in the margin of
// the list item, on the baseline of the first line laid out after it.
func (f *flow) setMarker(c *box.Box) {
	e := f.e
	e.enter(c)
	if m := e.marker; m != nil {
		// The previous item never got a line; keep its marker at the top.
		e.placeMarker(f.y + f.margin + e.font(m.b.Style).Ascent())
	}
	e.marker = &pendingMarker{
		b:     c,
		owner: f.b,
		left:  f.left,
		right: f.left + f.width,
		dir:   f.b.Style.Direction,
	}
}

// placeMarker positions the pending marker with its baseline at baseline.
func (e *Engine) placeMarker(baseline int) {
	m := e.marker
	e.marker = nil
	b := m.b
	chars, _, offs := e.decodeText(b)
	run := e.buildRun(b, chars, offs, 0)
	gap := (int(b.Style.FontSize) + 1) / 2
	x := m.left - gap - run.Width
	if m.dir == css.DirRTL {
		x = m.right + gap
	}
	b.Run = run
	b.X, b.Y = x, baseline-run.Ascent
	b.Width, b.Height = run.Width, run.Ascent+run.Descent
	b.Ascent = run.Ascent
	b.Level = 0
}
