package layout

import (
	"slices"
	"unicode"

	"github.com/qemacs/qemacs-sub000/pkg/bidi"
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// defaultImageSize is the side of an image stub without a width or height.
const defaultImageSize = 32

// decodeText returns the characters of a terminal text box with two offset
// tables: pos, the positions SplitAt cuts at, and offs, the buffer offsets
// reported to hit testing.
func (e *Engine) decodeText(b *box.Box) (chars []rune, pos, offs []int) {
	if b.Kind == box.ContentString {
		d := box.DecodeString(b.Text[b.Start:b.End], b.Start)
		offs = make([]int, len(d.Offsets))
		for i := range offs {
			offs[i] = box.NoOffset
		}
		return d.Chars, d.Offsets, offs
	}
	d := b.Decode(e.src)
	return d.Chars, d.Offsets, d.Offsets
}

// transform applies text-transform in place. prevLetter tells whether the
// text before chars ended inside a word; the state after chars is
// returned.
func transform(chars []rune, tt css.TextTransform, prevLetter bool) bool {
	for i, r := range chars {
		switch tt {
		case css.TransformUppercase:
			chars[i] = unicode.ToUpper(r)
		case css.TransformLowercase:
			chars[i] = unicode.ToLower(r)
		case css.TransformCapitalize:
			if !prevLetter {
				chars[i] = unicode.ToTitle(r)
			}
		}
		prevLetter = unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return prevLetter
}

// advances returns the width each character adds to a line, from the
// shaped glyphs in logical order. A glyph made from several characters
// counts for the first of them.
func (e *Engine) advances(chars []rune, cs *css.ComputedStyle) []int {
	adv := make([]int, len(chars))
	if len(chars) == 0 {
		return adv
	}
	fnt := e.font(cs)
	for _, g := range e.shaper.Shape(chars).Glyphs {
		if g.Cluster >= 0 && g.Cluster < len(adv) {
			adv[g.Cluster] += e.scr.GlyphWidth(fnt, g.ID)
		}
	}
	return adv
}

// buildRun shapes the characters of a text box at its embedding level.
// Glyphs of right-to-left runs are mirrored and stored left to right.
func (e *Engine) buildRun(b *box.Box, chars []rune, offs []int, level uint8) *box.Run {
	fnt := e.font(b.Style)
	r := &box.Run{
		Chars:   slices.Clone(chars),
		Offsets: slices.Clone(offs),
		RTL:     level&1 != 0,
		Font:    fnt,
		Ascent:  fnt.Ascent(),
		Descent: fnt.Descent(),
	}
	if len(chars) == 0 {
		r.GlyphOf = []int{}
		return r
	}
	text := slices.Clone(chars)
	if r.RTL {
		for i, c := range text {
			text[i] = bidi.Mirror(c)
		}
	}
	sr := e.shaper.Shape(text)
	r.Glyphs = sr.IDs()
	r.GlyphOf = slices.Clone(sr.CharToGlyph)
	if r.RTL {
		slices.Reverse(r.Glyphs)
		n := len(r.Glyphs)
		for i, g := range r.GlyphOf {
			r.GlyphOf[i] = n - 1 - g
		}
	}
	r.Advance = make([]int, len(r.Glyphs))
	for i, g := range r.Glyphs {
		r.Advance[i] = e.scr.GlyphWidth(fnt, g)
		r.Width += r.Advance[i]
	}
	return r
}

// textFrame is the padding and border around a terminal box with its own
// element, such as a form control. Anonymous text has none.
func textFrame(b *box.Box) edges {
	if b.Tag == ident.None {
		return edges{}
	}
	return frame(b.Style, 0)
}

// TextOrigin returns where the first glyph of a laid out text box is drawn:
// its left edge and the baseline.
func TextOrigin(b *box.Box) (x, baseline int) {
	fr := textFrame(b)
	x = b.X + fr[css.SideLeft]
	baseline = b.Y + fr[css.SideTop]
	if b.Run != nil {
		baseline += b.Run.Ascent
	}
	return x, baseline
}

// layoutImage sizes an image stub at the origin. Its baseline is the bottom
// margin edge and its run is the alt text.
func (e *Engine) layoutImage(b *box.Box, cbw, cbh int) {
	cs := b.Style
	fr := frame(cs, cbw)
	w := clampWidth(cs, cs.Width.ResolveOr(cbw, defaultImageSize), cbw)
	h := defaultImageSize
	if hh, ok := specifiedHeight(cs, cbh); ok {
		h = hh
	}
	h = clampHeight(cs, h, cbh)
	b.X, b.Y = 0, 0
	b.Width, b.Height = w+fr.h(), h+fr.v()
	b.Ascent = b.Height
	b.PaddingTop = cs.Padding[css.SideTop].Resolve(cbw)
	b.PaddingBottom = cs.Padding[css.SideBottom].Resolve(cbw)
	d := b.Decode(e.src)
	b.Run = e.buildRun(b, d.Chars, d.Offsets, 0)
}

// lineHeight returns the used line-height; normal gives the font height.
func lineHeight(cs *css.ComputedStyle) int {
	if cs.LineHeight.IsAuto() {
		return 0
	}
	return cs.LineHeight.Resolve(int(cs.FontSize))
}
