package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// minMax returns the preferred minimum and preferred border-box widths of
// b (CSS 2.1 §10.3.5): the narrowest width that does not overflow and the
// width without any soft break. Percentages count as auto.
func (e *Engine) minMax(b *box.Box) extent {
	if x, ok := e.extents[b]; ok {
		return x
	}
	cs := b.Style
	var x extent
	switch {
	case cs == nil || cs.Display == css.DisplayNone:
	case b.Kind == box.ContentImage:
		w := defaultImageSize
		if cs.Width.Unit == css.UnitPx {
			w = int(cs.Width.V)
		}
		w += frame(cs, 0).h()
		x = extent{w, w}
	case isTable(cs.Display):
		x = e.tableMinMax(b)
	case cs.Width.Unit == css.UnitPx:
		w := clampWidth(cs, int(cs.Width.V), 0) + frame(cs, 0).h()
		x = extent{w, w}
	default:
		m := &measure{e: e, space: true}
		if b.IsTerminal() {
			m.text(b)
		} else {
			m.children(b)
		}
		m.endLine()
		x = extent{m.min, m.max}
		x.min = clampWidth(cs, x.min, 0)
		x.max = max(clampWidth(cs, x.max, 0), x.min)
		x = x.add(frame(cs, 0).h())
	}
	e.extents[b] = x
	return x
}

// measure accumulates intrinsic widths over inline content.
type measure struct {
	e        *Engine
	min, max int
	// line is the width of the current line without soft breaks; word is
	// the width since the last break opportunity.
	line, word int
	space      bool
}

func (m *measure) endLine() {
	m.max = max(m.max, m.line)
	m.line, m.word = 0, 0
	m.space = true
}

func (m *measure) children(b *box.Box) {
	for _, c := range b.Children {
		m.child(c)
	}
}

func (m *measure) child(c *box.Box) {
	cs := c.Style
	switch {
	case cs == nil || cs.Display == css.DisplayNone || cs.Position.OutOfFlow():
	case cs.Display == css.DisplayMarker:
		// Outside markers hang in the margin.
	case cs.Float != css.FloatNone:
		x := m.e.minMax(c).add(pxMargins(cs))
		m.min = max(m.min, x.min)
		m.max = max(m.max, x.max)
	case c.Kind == box.ContentImage && !cs.Display.IsBlockLevel(), !c.IsTerminal() && cs.Display.IsAtomicInline():
		x := m.e.minMax(c).add(pxMargins(cs))
		m.min = max(m.min, x.min)
		m.line += x.max
		m.word = 0
		m.space = false
	case c.Kind == box.ContentImage, !c.IsTerminal() && cs.Display.IsBlockLevel():
		m.endLine()
		x := m.e.minMax(c).add(pxMargins(cs))
		m.min = max(m.min, x.min)
		m.max = max(m.max, x.max)
	case c.IsTerminal():
		m.text(c)
	default:
		left, right := pxSpacer(cs, css.SideLeft), pxSpacer(cs, css.SideRight)
		m.line += left
		m.word += left
		m.children(c)
		m.line += right
		m.word += right
		m.min = max(m.min, m.word)
	}
}

func (m *measure) text(c *box.Box) {
	cs := c.Style
	chars, _, _ := m.e.decodeText(c)
	chars = append([]rune(nil), chars...)
	transform(chars, cs.TextTransform, false)
	adv := m.e.advances(chars, cs)
	collapse, wraps, keep := cs.WhiteSpace.CollapsesSpaces(), cs.WhiteSpace.Wraps(), cs.WhiteSpace.KeepsNewlines()
	for i, r := range chars {
		if r == '\n' && keep {
			m.endLine()
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			r = ' '
		}
		if r == ' ' {
			if collapse && m.space {
				continue
			}
			m.line += adv[i]
			m.space = true
			if wraps {
				m.word = 0
				continue
			}
			m.word += adv[i]
		} else {
			m.line += adv[i]
			m.word += adv[i]
			m.space = false
		}
		m.min = max(m.min, m.word)
	}
	if c.EOL {
		m.endLine()
	}
}

// pxMargins sums the horizontal margins that do not depend on the
// containing block.
func pxMargins(cs *css.ComputedStyle) int {
	n := 0
	for _, s := range []int{css.SideLeft, css.SideRight} {
		if cs.Margin[s].Unit == css.UnitPx {
			n += int(cs.Margin[s].V)
		}
	}
	return n
}

func pxSpacer(cs *css.ComputedStyle, side int) int {
	n := int(cs.BorderWidth[side])
	if cs.Margin[side].Unit == css.UnitPx {
		n += int(cs.Margin[side].V)
	}
	if cs.Padding[side].Unit == css.UnitPx {
		n += int(cs.Padding[side].V)
	}
	return n
}
