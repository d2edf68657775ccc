package layout

import (
	"image"
	"slices"

	"github.com/qemacs/qemacs-sub000/pkg/bidi"
	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// collect appends the items of an inline-level child to the segment.
func (f *flow) collect(c *box.Box) {
	f.e.enter(c)
	cs := c.Style
	switch {
	case cs == nil || cs.Display == css.DisplayNone:
		resetGeometry(c)
	case cs.Position.OutOfFlow():
		f.items = append(f.items, &item{kind: itemAbs, b: c})
	case cs.Float != css.FloatNone:
		f.items = append(f.items, &item{kind: itemFloat, b: c})
	case cs.Display == css.DisplayMarker && c.IsText():
		f.setMarker(c)
	case c.Kind == box.ContentImage || (!c.IsTerminal() && cs.Display.IsAtomicInline()):
		f.addAtomic(c)
	case c.IsTerminal():
		f.addText(c)
	default:
		f.items = append(f.items, &item{kind: itemOpen, b: c, width: f.spacer(c, css.SideLeft)})
		for _, k := range slices.Clone(c.Children) {
			f.collect(k)
		}
		f.items = append(f.items, &item{kind: itemClose, b: c, width: f.spacer(c, css.SideRight)})
	}
}

// spacer is the margin, border and padding an inline box adds on one side.
func (f *flow) spacer(b *box.Box, side int) int {
	cs := b.Style
	return cs.Margin[side].Resolve(f.width) + cs.Padding[side].Resolve(f.width) + int(cs.BorderWidth[side])
}

// addText appends the text of a terminal box. Where newlines are kept the
// box is cut after each of them and a forced break is inserted.
func (f *flow) addText(c *box.Box) {
	c.LastSpace = f.lastSpace
	chars, pos, offs := f.e.decodeText(c)
	if c.Style.WhiteSpace.KeepsNewlines() {
		for {
			nl := slices.Index(chars, '\n')
			if nl < 0 {
				break
			}
			var rest *box.Box
			if nl+1 < len(chars) {
				rest = c.SplitAt(pos[nl+1])
			}
			f.pushText(c, chars[:nl], pos[:nl+1], offs[:nl+1])
			f.items = append(f.items, &item{kind: itemBreak, b: c})
			f.lastSpace = true
			if rest == nil {
				return
			}
			c = rest
			c.LastSpace = true
			chars, pos, offs = chars[nl+1:], pos[nl+1:], offs[nl+1:]
		}
	}
	f.pushText(c, chars, pos, offs)
	if c.EOL {
		f.items = append(f.items, &item{kind: itemBreak, b: c})
		f.lastSpace = true
	}
}

// pushText applies white-space collapsing and text-transform to the
// characters of c and appends them as one item.
func (f *flow) pushText(c *box.Box, chars []rune, pos, offs []int) {
	cs := c.Style
	collapse := cs.WhiteSpace.CollapsesSpaces()
	it := &item{
		kind:  itemText,
		b:     c,
		chars: make([]rune, 0, len(chars)),
		pos:   make([]int, 0, len(chars)+1),
		offs:  make([]int, 0, len(chars)+1),
	}
	for i, r := range chars {
		switch r {
		case '\r':
			if !collapse {
				continue
			}
			r = ' '
		case '\n', '\t', '\f':
			r = ' '
		}
		if collapse && r == ' ' {
			if f.lastSpace {
				continue
			}
			f.lastSpace = true
		} else {
			f.lastSpace = r == ' '
		}
		it.chars = append(it.chars, r)
		it.pos = append(it.pos, pos[i])
		it.offs = append(it.offs, offs[i])
	}
	it.pos = append(it.pos, pos[len(chars)])
	it.offs = append(it.offs, offs[len(chars)])
	f.prevLetter = transform(it.chars, cs.TextTransform, f.prevLetter)
	it.adv = f.e.advances(it.chars, cs)
	f.items = append(f.items, it)
}

// addAtomic lays out an image or inline-block at the origin; the line
// moves it into place.
func (f *flow) addAtomic(c *box.Box) {
	e := f.e
	m := margins(c.Style, f.width)
	if c.Kind == box.ContentImage {
		e.enter(c)
		e.layoutImage(c, f.width, f.cbh)
	} else {
		w := e.shrinkToFit(c, f.width-m.h(), f.width)
		e.layoutSized(c, 0, 0, w, f.width, f.cbh, nil)
	}
	f.items = append(f.items, &item{kind: itemAtomic, b: c, width: m.h() + c.Width})
	f.lastSpace = false
	f.prevLetter = false
}

// flushInline lays out the collected segment.
func (f *flow) flushInline() {
	if len(f.items) == 0 {
		return
	}
	items := f.resolveLevels(f.items)
	f.items = nil
	for _, it := range items {
		switch it.kind {
		case itemText:
			f.placeText(it)
		case itemOpen, itemClose:
			f.startLine()
			f.addPiece(it, it.width)
		case itemAtomic:
			f.placeAtomic(it)
		case itemBreak:
			f.breakLine(true)
		case itemFloat:
			f.addFloat(it.b)
		case itemAbs:
			f.addAbs(it.b)
		}
	}
	f.breakLine(false)
	f.lastSpace = true
	f.prevLetter = false
}

// startLine opens a line box at the current position if none is open.
func (f *flow) startLine() {
	l := &f.line
	if l.open {
		return
	}
	*l = line{open: true, y: f.y + f.margin, pieces: l.pieces[:0], floats: l.floats}
	l.left, l.right = f.floats.span(l.y, f.strut(), f.left, f.left+f.width)
	if f.first {
		l.indent = f.b.Style.TextIndent.Resolve(f.width)
		l.x = l.indent
	}
}

// strut is the height of an empty line of the container.
func (f *flow) strut() int {
	fnt := f.e.font(f.b.Style)
	return max(fnt.Ascent()+fnt.Descent(), lineHeight(f.b.Style))
}

func (f *flow) fits(w int) bool {
	return f.line.x+w <= f.line.right-f.line.left
}

func (f *flow) addPiece(it *item, w int) {
	f.line.pieces = append(f.line.pieces, &piece{item: it, width: w})
	f.line.x += w
	if w > 0 || it.kind == itemAtomic {
		f.line.content = true
	}
}

// placeText puts a text item on lines, cutting its box where a line ends
// inside it. Lines break after spaces where white-space allows wrapping.
func (f *flow) placeText(it *item) {
	f.startLine()
	n := len(it.chars)
	fr := textFrame(it.b)
	if !it.b.Style.WhiteSpace.Wraps() {
		f.addPiece(it, sum(it.adv)+fr.h())
		return
	}
	cur, start, run := it.b, 0, fr[css.SideLeft]
	for i := 0; i < n; {
		j := i
		for j < n && it.chars[j] != ' ' {
			j++
		}
		k := j
		for k < n && it.chars[k] == ' ' {
			k++
		}
		w := sum(it.adv[i:j])
		if j > i && !f.fits(run+w) {
			if f.line.content || i > start {
				carry := f.trailingOpens(i == start)
				if i > start {
					nb := cur.SplitAt(it.pos[i])
					f.addPiece(it.sub(cur, start, i), run)
					cur, start = nb, i
				}
				f.breakLine(false)
				f.startLine()
				run = 0
				for _, p := range carry {
					f.addPiece(p.item, p.width)
				}
			}
			f.dropBelowFloats(run + w)
		}
		run += w + sum(it.adv[j:k])
		i = k
	}
	if start == 0 && cur == it.b {
		f.addPiece(it, run+fr[css.SideRight])
		return
	}
	f.addPiece(it.sub(cur, start, n), run+fr[css.SideRight])
}

// trailingOpens removes the opening spacers at the end of the line so they
// move to the next line with the content they open.
func (f *flow) trailingOpens(take bool) []*piece {
	if !take {
		return nil
	}
	l := &f.line
	i := len(l.pieces)
	for i > 0 && l.pieces[i-1].kind == itemOpen {
		i--
	}
	carry := slices.Clone(l.pieces[i:])
	for _, p := range carry {
		l.x -= p.width
	}
	l.pieces = l.pieces[:i]
	l.content = slices.ContainsFunc(l.pieces, func(p *piece) bool { return p.width > 0 || p.kind == itemAtomic })
	return carry
}

// dropBelowFloats moves an empty line down past floats until w fits or no
// float narrows it any more.
func (f *flow) dropBelowFloats(w int) {
	l := &f.line
	for !l.content && !f.fits(w) && f.floats.narrowed(l.y, f.strut(), f.left, f.left+f.width) {
		next, ok := f.floats.nextBottom(l.y)
		if !ok {
			return
		}
		l.y = next
		l.left, l.right = f.floats.span(l.y, f.strut(), f.left, f.left+f.width)
	}
}

func (f *flow) placeAtomic(it *item) {
	f.startLine()
	if !f.fits(it.width) && f.line.content {
		carry := f.trailingOpens(true)
		f.breakLine(false)
		f.startLine()
		for _, p := range carry {
			f.addPiece(p.item, p.width)
		}
	}
	f.dropBelowFloats(it.width)
	f.addPiece(it, it.width)
}

// addFloat places a float at the top of the current line when nothing is
// on it yet, otherwise below it.
func (f *flow) addFloat(c *box.Box) {
	l := &f.line
	if l.open && l.content {
		l.floats = append(l.floats, c)
		return
	}
	y := f.y + f.margin
	if l.open {
		y = l.y
	}
	f.placeFloat(c, y)
	if l.open {
		l.left, l.right = f.floats.span(l.y, f.strut(), f.left, f.left+f.width)
	}
}

func (f *flow) placeFloat(c *box.Box, y int) {
	e := f.e
	e.enter(c)
	cs := c.Style
	m := margins(cs, f.width)
	w := e.shrinkToFit(c, f.width-m.h(), f.width)
	bottom := e.layoutSized(c, 0, 0, w, f.width, f.cbh, nil)
	y = f.floats.clearY(cs.Clear, y)
	pt := f.floats.place(c, cs.Float, m.h()+c.Width, m.v()+bottom, y, f.left, f.left+f.width)
	translate(c, pt.X+m[css.SideLeft], pt.Y+m[css.SideTop])
}

// addAbs records the static position of an out-of-flow box and defers it
// until its containing block is final.
func (f *flow) addAbs(c *box.Box) {
	x, y := f.left, f.y+f.margin
	if l := &f.line; l.open {
		x, y = l.left+l.x, l.y
	}
	f.e.abs = append(f.e.abs, c)
	f.e.static[c] = staticPos{ref: f.b, off: image.Pt(x-f.b.X, y-f.b.Y)}
}

// breakLine ends the current line. A line without visible content takes
// no height unless the break is forced.
func (f *flow) breakLine(forced bool) {
	l := &f.line
	if !l.open {
		if !forced {
			return
		}
		f.startLine()
	}
	l.open = false
	if !l.content && !forced {
		for _, p := range l.pieces {
			f.park(p)
		}
		f.placeLineFloats(l.y)
		return
	}
	bottom := f.layoutLine()
	f.y, f.margin = bottom, 0
	f.first = false
	f.lines++
	f.e.lines++
	f.placeLineFloats(bottom)
}

func (f *flow) placeLineFloats(y int) {
	l := &f.line
	for _, c := range l.floats {
		f.placeFloat(c, y)
	}
	l.floats = l.floats[:0]
}

// park gives the boxes of an empty line a position and no extent.
func (f *flow) park(p *piece) {
	b := p.b
	switch p.kind {
	case itemText:
		b.Run = f.e.buildRun(b, p.chars, p.offs, p.level)
		b.X, b.Y, b.Width, b.Height, b.Ascent = f.line.left, f.line.y, 0, 0, 0
		b.Level = p.level
	case itemOpen:
		if len(b.Fragments) == 0 {
			b.X, b.Y, b.Width, b.Height, b.Ascent = f.line.left, f.line.y, 0, 0, 0
		}
	}
}

// layoutLine positions the pieces of the current line and returns its
// bottom.
func (f *flow) layoutLine() int {
	e := f.e
	l := &f.line
	cs := f.b.Style
	pieces := l.pieces

	base := uint8(0)
	if cs.Direction == css.DirRTL {
		base = 1
	}
	// Rule L1 for whole pieces: trailing white space takes the paragraph
	// level.
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		if p.kind == itemAtomic || (p.kind == itemText && !allSpaces(p.chars)) {
			break
		}
		p.level = base
	}

	width, trail := 0, 0
	for _, p := range pieces {
		if p.kind == itemText {
			fr := textFrame(p.b)
			p.b.Run = e.buildRun(p.b, p.chars, p.offs, p.level)
			p.width = p.b.Run.Width + fr.h()
			trail = 0
			if p.b.Style.WhiteSpace.CollapsesSpaces() {
				for k := len(p.chars) - 1; k >= 0 && p.chars[k] == ' '; k-- {
					trail += p.adv[k]
				}
			}
		} else if p.kind == itemAtomic {
			trail = 0
		}
		width += p.width
	}

	// Vertical metrics: the strut, then every piece around the baseline.
	fnt := e.font(cs)
	asc, desc := fnt.Ascent(), fnt.Descent()
	for _, p := range pieces {
		f.verticalExtent(p)
		if p.lineRel == css.VAlignBaseline {
			asc = max(asc, -p.top)
			desc = max(desc, p.bottom)
		}
	}
	if lh := lineHeight(cs); lh > asc+desc {
		extra := lh - asc - desc
		asc += extra / 2
		desc += extra - extra/2
	}
	for _, p := range pieces {
		if p.lineRel == css.VAlignBaseline {
			continue
		}
		if h := p.bottom - p.top; h > asc+desc {
			if p.lineRel == css.VAlignTop {
				desc = h - asc
			} else {
				asc = h - desc
			}
		}
		d := -asc - p.top
		if p.lineRel == css.VAlignBottom {
			d = desc - p.bottom
		}
		p.shift += d
		p.top += d
		p.bottom += d
	}
	baseline := l.y + asc

	order := slices.Clone(pieces)
	levels := make([]uint8, len(order))
	for i, p := range order {
		levels[i] = p.level
	}
	bidi.Reorder(order, levels)

	left, avail := l.left, l.right-l.left-l.indent
	if cs.Direction == css.DirLTR {
		left += l.indent
	}
	x := left + alignOffset(cs.TextAlign, cs.Direction, avail-(width-trail))
	for _, p := range order {
		p.x = x
		f.position(p, baseline)
		x += p.width
	}
	f.fragments(order, baseline)
	if f.lines == 0 && f.b.FirstLine != nil {
		f.applyFirstLine(order)
	}
	if m := e.marker; m != nil && (m.owner == f.b || !establishesBFC(f.b)) {
		e.placeMarker(baseline)
	}
	if f.baseline < 0 {
		f.baseline = baseline
	}
	return baseline + desc
}

// position moves the box of a piece to its place on the line.
func (f *flow) position(p *piece, baseline int) {
	b := p.b
	b.Level = p.level
	switch p.kind {
	case itemText:
		fr := textFrame(b)
		run := b.Run
		b.X, b.Width = p.x, p.width
		b.Y = baseline + p.shift - run.Ascent - fr[css.SideTop]
		b.Height = fr.v() + run.Ascent + run.Descent
		b.Ascent = fr[css.SideTop] + run.Ascent
	case itemAtomic:
		m := margins(b.Style, f.width)
		translate(b, p.x+m[css.SideLeft]-b.X, baseline+p.top+m[css.SideTop]-b.Y)
	}
}

// verticalExtent sets the extents of a piece around the baseline.
func (f *flow) verticalExtent(p *piece) {
	var asc, desc int
	switch p.kind {
	case itemText:
		fr := textFrame(p.b)
		asc = p.b.Run.Ascent + fr[css.SideTop]
		desc = p.b.Run.Descent + fr[css.SideBottom]
	case itemAtomic:
		m := margins(p.b.Style, f.width)
		asc = m[css.SideTop] + p.b.Ascent
		desc = p.b.Height - p.b.Ascent + m[css.SideBottom]
	default:
		p.lineRel = css.VAlignBaseline
		return
	}
	p.shift, p.lineRel = f.e.baselineShift(p.b, f.b, asc, desc)
	p.top, p.bottom = p.shift-asc, p.shift+desc
}

// fragments records, for every inline box with children that has pieces
// on the line, the rectangle it covers on this line.
func (f *flow) fragments(order []*piece, baseline int) {
	var frags []*fragment
	byBox := make(map[*box.Box]*fragment)
	add := func(b *box.Box, x0, x1 int) {
		fr, ok := byBox[b]
		if !ok {
			fr = &fragment{b: b, x0: x0, x1: x1}
			byBox[b] = fr
			frags = append(frags, fr)
			return
		}
		fr.x0, fr.x1 = min(fr.x0, x0), max(fr.x1, x1)
	}
	for _, p := range order {
		x0, x1 := p.x, p.x+p.width
		start := p.b.Parent
		switch p.kind {
		case itemOpen:
			start = p.b
			if p.level&1 == 0 {
				x0 += p.b.Style.Margin[css.SideLeft].Resolve(f.width)
			} else {
				x1 -= p.b.Style.Margin[css.SideLeft].Resolve(f.width)
			}
		case itemClose:
			start = p.b
			if p.level&1 == 0 {
				x1 -= p.b.Style.Margin[css.SideRight].Resolve(f.width)
			} else {
				x0 += p.b.Style.Margin[css.SideRight].Resolve(f.width)
			}
		case itemAtomic:
			x0, x1 = p.b.X, p.b.X+p.b.Width
		}
		for x := start; x != nil && x != f.b; x = x.Parent {
			add(x, x0, x1)
		}
	}
	for _, fr := range frags {
		b := fr.b
		cs := b.Style
		fnt := f.e.font(cs)
		shift, _ := f.e.baselineShift(b, f.b, fnt.Ascent(), fnt.Descent())
		pad, bd := paddings(cs, f.width), borders(cs)
		top := baseline + shift - fnt.Ascent() - pad[css.SideTop] - bd[css.SideTop]
		bottom := baseline + shift + fnt.Descent() + pad[css.SideBottom] + bd[css.SideBottom]
		r := fr.rect(top, bottom)
		if len(b.Fragments) == 0 {
			b.X, b.Y, b.Width, b.Height = r.Min.X, r.Min.Y, r.Dx(), r.Dy()
			b.Ascent = baseline - top
		} else {
			u := b.Rect().Union(r)
			b.X, b.Y, b.Width, b.Height = u.Min.X, u.Min.Y, u.Dx(), u.Dy()
		}
		b.Fragments = append(b.Fragments, r)
	}
}

// applyFirstLine gives the text on the first line of the container the
// color and background of its ::first-line style.
func (f *flow) applyFirstLine(order []*piece) {
	fl, base := f.b.FirstLine, f.b.Style
	styles := f.e.styles
	if styles == nil {
		return
	}
	for _, p := range order {
		b := p.b
		if p.kind != itemText || b.BaseStyle != nil {
			continue
		}
		b.BaseStyle = b.Style
		b.Style = styles.With(b.Style, func(cs *css.ComputedStyle) {
			if fl.Color != base.Color {
				cs.Color = fl.Color
			}
			if !fl.BackgroundColor.IsTransparent() {
				cs.BackgroundColor = fl.BackgroundColor
			}
		})
	}
}

func sum(v []int) int {
	s := 0
	for _, x := range v {
		s += x
	}
	return s
}

func allSpaces(r []rune) bool {
	for _, c := range r {
		if c != ' ' {
			return false
		}
	}
	return true
}
