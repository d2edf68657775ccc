package style

import (
	"strings"
	"unicode"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// pseudoBox builds the ::before or ::after box of b. It returns nil when
// the matched rules give no content.
func (e *Engine) pseudoBox(b *box.Box, rules []*css.Rule, gen box.Generated) *box.Box {
	sp := cascade(rules, nil)
	if !sp.set[css.PropContent] || len(sp.vals[css.PropContent]) == 0 {
		return nil
	}
	cs := e.resolve(sp, b.Style)
	if cs.Display == css.DisplayNone {
		return nil
	}
	if cs.Display == css.DisplayMarker {
		gen = box.GenMarker
	}
	st := e.styles.Intern(cs)

	gb := box.NewString("")
	gb.Generated = gen
	gb.Style = st
	gb.Parent = b
	e.updateCounters(gb, st, sp)
	gb.Parent = nil
	e.setText(gb, e.contentText(b, sp.vals[css.PropContent]))

	if cs.Display.IsBlockLevel() {
		// Block content needs a container; the text itself flows inline.
		wrapper := box.New(ident.None)
		wrapper.Generated = gen
		wrapper.Style = st
		gb.Style = e.textStyle(st)
		wrapper.AppendChild(gb)
		return wrapper
	}
	return gb
}

func (e *Engine) setText(b *box.Box, s string) {
	b.Text = s
	b.Start, b.End = 0, len(s)
}

// contentText evaluates a content value list against the element.
func (e *Engine) contentText(b *box.Box, vals []css.Value) string {
	var sb strings.Builder
	for _, v := range vals {
		switch v.Kind {
		case css.KindString:
			sb.WriteString(v.Str)
		case css.KindAttr:
			s, _ := b.Attr(v.ID)
			sb.WriteString(s)
		case css.KindCounter:
			sb.WriteString(FormatCounter(e.counters.value(v.ID), v.List))
		}
	}
	return sb.String()
}

// MarkerText returns the marker of list item number n.
func MarkerText(n int, ls css.ListStyle) string {
	switch ls {
	case css.ListNone:
		return ""
	case css.ListDisc, css.ListCircle, css.ListSquare:
		return FormatCounter(n, ls)
	}
	return FormatCounter(n, ls) + "."
}

// markerBox builds the marker of a list item from its list-style-type and
// the current value of the "list-item" counter.
func (e *Engine) markerBox(b *box.Box) *box.Box {
	ls := b.Style.ListStyleType
	if ls == css.ListNone {
		return nil
	}
	text := MarkerText(e.counters.value(ident.CounterListItem), ls)
	display := css.DisplayMarker
	if b.Style.ListStylePosition == css.ListInside {
		display = css.DisplayInline
		text += " "
	}
	mb := box.NewString(text)
	mb.Generated = box.GenMarker
	mb.Style = e.styles.Intern(e.inherited(b.Style, display))
	return mb
}

// wrapFirstLetter moves the first letter of b's first text into a child
// box styled by ::first-letter. Leading white space is not part of it.
func (e *Engine) wrapFirstLetter(b *box.Box, st *css.ComputedStyle) {
	var target *box.Box
	var s0, s1 int
	b.Walk(func(x *box.Box) bool {
		if target != nil || x.Generated == box.GenMarker {
			return false
		}
		if x != b && x.Style != nil && (x.Style.Float != css.FloatNone || x.Style.Position.OutOfFlow()) {
			return false
		}
		if !x.IsText() || x.Tag != ident.None {
			return true
		}
		var d box.Decoded
		if x.Kind == box.ContentString {
			d = box.DecodeString(x.Text[x.Start:x.End], x.Start)
		} else {
			d = x.Decode(e.src)
		}
		for i, r := range d.Chars {
			if !unicode.IsSpace(r) {
				target, s0, s1 = x, d.Offsets[i], d.Offsets[i+1]
				return false
			}
		}
		return true
	})
	if target == nil || target.Parent == nil || s1 <= s0 {
		return
	}
	letter := target
	if s0 > target.Start {
		letter = target.SplitAt(s0)
	}
	if s1 < letter.End {
		letter.SplitAt(s1).Split = false
	}
	letter.Split = false

	parent := letter.Parent
	wrapper := box.New(ident.None)
	wrapper.Generated = box.GenFirstLetter
	wrapper.Style = st
	i := parent.IndexOf(letter)
	parent.RemoveChild(letter)
	parent.InsertChild(i, wrapper)
	letter.Style = e.textStyle(st)
	wrapper.AppendChild(letter)
}
