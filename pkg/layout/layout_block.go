package layout

import (
	"slices"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// flow lays out the children of one block container from top to bottom.
// Inline-level children are collected into segments that the line builder
// turns into line boxes; block-level children end the current segment.
type flow struct {
	e *Engine
	b *box.Box
	// left and width give the content box; cbh is the height percentages
	// of the children resolve against, or -1 when it is not known.
	left, width int
	cbh         int
	floats      *floatList

	// y is the bottom of the last line or block; margin is the bottom
	// margin of the last block child, not yet collapsed.
	y      int
	margin int
	// first is set until the first line or block child, for text-indent.
	first    bool
	baseline int
	lines    int

	items      []*item
	lastSpace  bool
	prevLetter bool

	line line
}

// line is the line box being filled.
type line struct {
	open        bool
	y           int
	left, right int
	indent      int
	// x is the inline advance so far, indent included.
	x       int
	pieces  []*piece
	content bool
	// floats met after content wait for the next line.
	floats []*box.Box
}

func (e *Engine) newFlow(b *box.Box, left, top, width, cbh int, fl *floatList) *flow {
	return &flow{
		e:         e,
		b:         b,
		left:      left,
		width:     width,
		cbh:       cbh,
		floats:    fl,
		y:         top,
		first:     true,
		baseline:  -1,
		lastSpace: true,
	}
}

// layoutBlock lays out a block-level box in normal flow. x is the left edge
// of the containing block, cbw its width, y the top of the border box of b.
// It returns the bottom of the space b takes in the flow.
func (e *Engine) layoutBlock(b *box.Box, x, y, cbw, cbh int, fl *floatList) int {
	cs := b.Style
	w, ml, _ := usedWidth(cs, cbw)
	bottom := e.layoutSized(b, x+ml, y, w, cbw, cbh, fl)
	if isTable(cs.Display) && b.Width < w {
		// The table picked a narrower width than the room it was given.
		autoL, autoR := cs.Margin[css.SideLeft].IsAuto(), cs.Margin[css.SideRight].IsAuto()
		switch {
		case autoL && autoR:
			translate(b, (w-b.Width)/2, 0)
		case autoL, cs.Direction == css.DirRTL:
			translate(b, w-b.Width, 0)
		}
	}
	return bottom
}

// layoutSized lays out b with its border box at (x, y) and a border-box
// width of w. Tables take w as the room they may use and choose their own
// width. It returns the bottom of the laid out box, table captions
// included.
func (e *Engine) layoutSized(b *box.Box, x, y, w, cbw, cbh int, fl *floatList) int {
	e.enter(b)
	switch {
	case b.Kind == box.ContentImage:
		e.layoutImage(b, cbw, cbh)
		translate(b, x-b.X, y-b.Y)
		return b.Y + b.Height
	case isTable(b.Style.Display):
		return e.layoutTable(b, x, y, w, cbw, cbh)
	}
	b.X, b.Y, b.Width = x, y, w
	e.layoutBlockContent(b, cbw, cbh, fl)
	return b.Y + b.Height
}

// layoutBlockContent lays out the children of a block container whose X, Y
// and Width are set, then sets its height.
func (e *Engine) layoutBlockContent(b *box.Box, cbw, cbh int, fl *floatList) {
	cs := b.Style
	fr := frame(cs, cbw)
	pad := paddings(cs, cbw)
	b.PaddingTop, b.PaddingBottom = pad[css.SideTop], pad[css.SideBottom]
	left, top := b.X+fr[css.SideLeft], b.Y+fr[css.SideTop]
	width := max(0, b.Width-fr.h())

	h, fixed := specifiedHeight(cs, cbh)
	childCBH := -1
	switch {
	case fixed:
		childCBH = h
	case b.Parent == nil:
		childCBH = cbh
	}
	bfc := establishesBFC(b)
	if bfc || fl == nil {
		fl = newFloatList()
	}

	f := e.newFlow(b, left, top, width, childCBH, fl)
	f.run()

	ch := f.y - top
	if bfc {
		// CSS 2.1 §10.6.7: a formatting context root grows to enclose its floats.
		ch = max(ch, fl.bottom()-top)
	}
	if fixed {
		ch = h
	}
	ch = clampHeight(cs, ch, cbh)
	b.Height = ch + fr.v()
	b.Ascent = b.Height
	if f.baseline >= 0 {
		b.Ascent = f.baseline - b.Y
		e.baselines[b] = b.Ascent
	}
	if m := e.marker; m != nil && m.owner == b {
		// A list item without lines still shows its marker.
		e.placeMarker(top + e.font(m.b.Style).Ascent())
	}
}

// run lays out the children of the container.
func (f *flow) run() {
	for _, c := range slices.Clone(f.b.Children) {
		if f.e.isBlockChild(c) {
			f.flushInline()
			f.addBlock(c)
			continue
		}
		f.collect(c)
	}
	f.flushInline()
	f.y += f.margin
	f.margin = 0
}

// addBlock places a block-level child below the previous content.
func (f *flow) addBlock(c *box.Box) {
	cs := c.Style
	f.first = false
	mt := cs.Margin[css.SideTop].Resolve(f.width)
	mb := cs.Margin[css.SideBottom].Resolve(f.width)
	y := f.y + collapseMargins(f.margin, mt)
	if cs.Clear != css.ClearNone {
		y = max(y, f.floats.clearY(cs.Clear, f.y))
	}
	x, avail := f.left, f.width
	if establishesBFC(c) && f.floats.narrowed(y, 1, x, x+avail) {
		// CSS 2.1 §9.5: the border box of a formatting context root does
		// not overlap floats.
		x, avail = f.floats.span(y, 1, x, x+avail)
		avail -= x
	}
	bottom := f.e.layoutBlock(c, x, y, avail, f.cbh, f.floats)
	if f.baseline < 0 {
		if asc, ok := f.e.baselines[c]; ok {
			f.baseline = c.Y + asc
		}
	}
	f.y = bottom
	f.margin = mb
	f.lastSpace = true
	f.prevLetter = false
}

// isBlockChild reports whether c is laid out as a block in normal flow. An
// inline box containing blocks is treated as a block itself.
func (e *Engine) isBlockChild(c *box.Box) bool {
	cs := c.Style
	if cs == nil || cs.Display == css.DisplayNone || cs.Float != css.FloatNone || cs.Position.OutOfFlow() {
		return false
	}
	if c.Kind == box.ContentImage {
		return cs.Display.IsBlockLevel()
	}
	if c.IsTerminal() {
		return false
	}
	if cs.Display.IsBlockLevel() {
		return true
	}
	return cs.Display == css.DisplayInline && containsBlock(c)
}

func containsBlock(b *box.Box) bool {
	for _, c := range b.Children {
		cs := c.Style
		if cs == nil || cs.Display == css.DisplayNone || cs.Float != css.FloatNone || cs.Position.OutOfFlow() || c.IsTerminal() {
			continue
		}
		if cs.Display.IsBlockLevel() {
			return true
		}
		if cs.Display == css.DisplayInline && containsBlock(c) {
			return true
		}
	}
	return false
}

// establishesBFC reports whether b starts a new block formatting context,
// with its own floats (CSS 2.1 §9.4.1).
func establishesBFC(b *box.Box) bool {
	cs := b.Style
	if b.Parent == nil || cs.Float != css.FloatNone || cs.Position.OutOfFlow() || cs.Overflow.Clips() {
		return true
	}
	switch cs.Display {
	case css.DisplayInlineBlock, css.DisplayTableCell, css.DisplayTableCaption,
		css.DisplayTable, css.DisplayInlineTable:
		return true
	}
	return false
}

func isTable(d css.Display) bool {
	return d == css.DisplayTable || d == css.DisplayInlineTable
}
