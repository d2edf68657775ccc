// Package bidi resolves embedding levels of a paragraph and reorders lines
// for display. Character classes come from the Unicode tables of
// golang.org/x/text; the level resolution covers explicit embeddings and
// overrides, the weak and neutral type rules and the implicit levels.
package bidi

import (
	xbidi "golang.org/x/text/unicode/bidi"
)

// Class is a bidirectional character type.
type Class = xbidi.Class

// Direction is a paragraph base direction.
type Direction = xbidi.Direction

const (
	LeftToRight = xbidi.LeftToRight
	RightToLeft = xbidi.RightToLeft
	// Neutral asks for the direction of the first strong character.
	Neutral = xbidi.Neutral
)

// Explicit formatting characters.
const (
	LRE = '\u202A'
	RLE = '\u202B'
	PDF = '\u202C'
	LRO = '\u202D'
	RLO = '\u202E'
)

// MaxDepth is the deepest explicit embedding level.
const MaxDepth = 61

// stackSize bounds the embedding stack.
const stackSize = 64

// ClassOf returns the bidirectional class of r. Isolate controls are
// treated as other neutrals.
func ClassOf(r rune) Class {
	p, _ := xbidi.LookupRune(r)
	switch c := p.Class(); c {
	case xbidi.LRI, xbidi.RLI, xbidi.FSI, xbidi.PDI:
		return xbidi.ON
	default:
		return c
	}
}

// RaisesLevel reports whether r can give a left-to-right paragraph a
// level above zero: right-to-left letters, Arabic numbers and explicit
// formatting characters. Text without any resolves to level zero.
func RaisesLevel(r rune) bool {
	switch ClassOf(r) {
	case xbidi.R, xbidi.AL, xbidi.AN, xbidi.RLE, xbidi.RLO, xbidi.LRE, xbidi.LRO:
		return true
	}
	return false
}

// Strong reports whether c is a strong class.
func Strong(c Class) bool {
	return c == xbidi.L || c == xbidi.R || c == xbidi.AL
}

// Run is a maximal span of characters sharing a class and a level. The run
// list of a paragraph starts with an SOT sentinel and ends with an EOT
// sentinel, both of zero length.
type Run struct {
	Class Class
	Pos   int
	Len   int
	Level uint8
}

// Sentinel classes of the run list. They lie outside the Unicode classes.
const (
	SOT Class = xbidi.Class(100) + iota
	EOT
)

// Paragraph is the result of resolving one paragraph.
type Paragraph struct {
	// Base is the paragraph embedding level, 0 or 1.
	Base uint8
	// Levels holds the resolved level of every character.
	Levels []uint8
	// Classes holds the resolved class of every character.
	Classes []Class
}

// Resolve computes the embedding levels of text. dir gives the base
// direction; Neutral picks it from the first strong character.
func Resolve(text []rune, dir Direction) *Paragraph {
	p := &Paragraph{
		Levels:  make([]uint8, len(text)),
		Classes: make([]Class, len(text)),
	}
	for i, r := range text {
		p.Classes[i] = ClassOf(r)
	}
	switch dir {
	case RightToLeft:
		p.Base = 1
	case Neutral:
		p.Base = firstStrong(p.Classes)
	}
	p.explicit()
	for _, seq := range p.levelRuns() {
		p.weak(seq)
		p.neutral(seq)
	}
	p.implicit()
	return p
}

// firstStrong implements rules P2 and P3.
func firstStrong(classes []Class) uint8 {
	for _, c := range classes {
		switch c {
		case xbidi.L:
			return 0
		case xbidi.R, xbidi.AL:
			return 1
		}
	}
	return 0
}

type embedding struct {
	level    uint8
	override Class // L, R, or ON for none
}

// explicit applies rules X1 to X9. Formatting characters become BN and
// take the level of the embedding they appear in.
func (p *Paragraph) explicit() {
	stack := make([]embedding, 1, stackSize)
	stack[0] = embedding{level: p.Base, override: xbidi.ON}
	overflow := 0
	for i, c := range p.Classes {
		cur := stack[len(stack)-1]
		switch c {
		case xbidi.RLE, xbidi.LRE, xbidi.RLO, xbidi.LRO:
			var next uint8
			if c == xbidi.RLE || c == xbidi.RLO {
				next = (cur.level + 1) | 1
			} else {
				next = (cur.level + 2) &^ 1
			}
			if next <= MaxDepth && overflow == 0 && len(stack) < stackSize {
				ov := xbidi.ON
				switch c {
				case xbidi.RLO:
					ov = xbidi.R
				case xbidi.LRO:
					ov = xbidi.L
				}
				stack = append(stack, embedding{level: next, override: ov})
			} else {
				overflow++
			}
			p.Levels[i] = cur.level
			p.Classes[i] = xbidi.BN
		case xbidi.PDF:
			if overflow > 0 {
				overflow--
			} else if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			p.Levels[i] = cur.level
			p.Classes[i] = xbidi.BN
		case xbidi.B:
			stack = stack[:1]
			overflow = 0
			p.Levels[i] = p.Base
		case xbidi.BN:
			p.Levels[i] = cur.level
		default:
			p.Levels[i] = cur.level
			if cur.override != xbidi.ON {
				p.Classes[i] = cur.override
			}
		}
	}
}

// seq is an isolating run: the indices of the non-BN characters of one
// level run, with the classes of its start and end of sequence.
type seq struct {
	idx      []int
	sor, eor Class
	level    uint8
}

func dirOf(level uint8) Class {
	if level&1 != 0 {
		return xbidi.R
	}
	return xbidi.L
}

// levelRuns splits the paragraph into maximal runs of one level, ignoring
// BN characters (X9, X10).
func (p *Paragraph) levelRuns() []seq {
	var out []seq
	var cur *seq
	for i, c := range p.Classes {
		if c == xbidi.BN {
			continue
		}
		if cur == nil || p.Levels[i] != cur.level {
			out = append(out, seq{level: p.Levels[i]})
			cur = &out[len(out)-1]
		}
		cur.idx = append(cur.idx, i)
	}
	for k := range out {
		prev, next := p.Base, p.Base
		if k > 0 {
			prev = out[k-1].level
		}
		if k+1 < len(out) {
			next = out[k+1].level
		}
		out[k].sor = dirOf(max(prev, out[k].level))
		out[k].eor = dirOf(max(next, out[k].level))
	}
	return out
}

// weak applies rules W1 to W7.
func (p *Paragraph) weak(s seq) {
	t := p.Classes
	// W1
	prev := s.sor
	for _, i := range s.idx {
		if t[i] == xbidi.NSM {
			t[i] = prev
		}
		prev = t[i]
	}
	// W2, W3
	strong := s.sor
	for _, i := range s.idx {
		switch t[i] {
		case xbidi.L, xbidi.R, xbidi.AL:
			strong = t[i]
		case xbidi.EN:
			if strong == xbidi.AL {
				t[i] = xbidi.AN
			}
		}
	}
	for _, i := range s.idx {
		if t[i] == xbidi.AL {
			t[i] = xbidi.R
		}
	}
	// W4
	for k := 1; k+1 < len(s.idx); k++ {
		i := s.idx[k]
		a, b := t[s.idx[k-1]], t[s.idx[k+1]]
		switch {
		case t[i] == xbidi.ES && a == xbidi.EN && b == xbidi.EN:
			t[i] = xbidi.EN
		case t[i] == xbidi.CS && a == b && (a == xbidi.EN || a == xbidi.AN):
			t[i] = a
		}
	}
	// W5
	for k := 0; k < len(s.idx); {
		if t[s.idx[k]] != xbidi.ET {
			k++
			continue
		}
		end := k
		for end < len(s.idx) && t[s.idx[end]] == xbidi.ET {
			end++
		}
		if (k > 0 && t[s.idx[k-1]] == xbidi.EN) || (end < len(s.idx) && t[s.idx[end]] == xbidi.EN) {
			for j := k; j < end; j++ {
				t[s.idx[j]] = xbidi.EN
			}
		}
		k = end
	}
	// W6
	for _, i := range s.idx {
		switch t[i] {
		case xbidi.ES, xbidi.ET, xbidi.CS:
			t[i] = xbidi.ON
		}
	}
	// W7
	strong = s.sor
	for _, i := range s.idx {
		switch t[i] {
		case xbidi.L, xbidi.R:
			strong = t[i]
		case xbidi.EN:
			if strong == xbidi.L {
				t[i] = xbidi.L
			}
		}
	}
}

func isNeutral(c Class) bool {
	switch c {
	case xbidi.B, xbidi.S, xbidi.WS, xbidi.ON:
		return true
	}
	return false
}

// strongDir maps numbers to R for the neutral rules.
func strongDir(c Class) Class {
	switch c {
	case xbidi.EN, xbidi.AN:
		return xbidi.R
	}
	return c
}

// neutral applies rules N1 and N2.
func (p *Paragraph) neutral(s seq) {
	t := p.Classes
	e := dirOf(s.level)
	for k := 0; k < len(s.idx); {
		if !isNeutral(t[s.idx[k]]) {
			k++
			continue
		}
		end := k
		for end < len(s.idx) && isNeutral(t[s.idx[end]]) {
			end++
		}
		before, after := s.sor, s.eor
		if k > 0 {
			before = strongDir(t[s.idx[k-1]])
		}
		if end < len(s.idx) {
			after = strongDir(t[s.idx[end]])
		}
		dir := e
		if before == after && (before == xbidi.L || before == xbidi.R) {
			dir = before
		}
		for j := k; j < end; j++ {
			t[s.idx[j]] = dir
		}
		k = end
	}
}

// implicit applies rules I1 and I2.
func (p *Paragraph) implicit() {
	for i, c := range p.Classes {
		lvl := p.Levels[i]
		if lvl&1 == 0 {
			switch c {
			case xbidi.R:
				lvl++
			case xbidi.AN, xbidi.EN:
				lvl += 2
			}
		} else {
			switch c {
			case xbidi.L, xbidi.EN, xbidi.AN:
				lvl++
			}
		}
		p.Levels[i] = lvl
	}
}

// Runs returns the run list of the paragraph: SOT, one run per maximal
// span of equal level and resolved class, then EOT.
func (p *Paragraph) Runs() []Run {
	runs := []Run{{Class: SOT, Level: p.Base}}
	for i := range p.Levels {
		last := &runs[len(runs)-1]
		if last.Class == p.Classes[i] && last.Level == p.Levels[i] && last.Class != SOT {
			last.Len++
			continue
		}
		runs = append(runs, Run{Class: p.Classes[i], Pos: i, Len: 1, Level: p.Levels[i]})
	}
	return append(runs, Run{Class: EOT, Pos: len(p.Levels), Level: p.Base})
}

// ResetTrailing applies rule L1 to one line: trailing white space and
// segment separators go back to the paragraph level.
func ResetTrailing(text []rune, levels []uint8, base uint8) {
	for i := len(text) - 1; i >= 0; i-- {
		switch ClassOf(text[i]) {
		case xbidi.WS, xbidi.S, xbidi.B, xbidi.BN,
			xbidi.LRE, xbidi.RLE, xbidi.LRO, xbidi.RLO, xbidi.PDF:
			levels[i] = base
			continue
		}
		return
	}
}

// VisualOrder returns the logical index shown at each visual position of
// a line with the given levels (rule L2).
func VisualOrder(levels []uint8) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	Reorder(order, levels)
	return order
}

// Reorder permutes items, one per level, into visual order: from the
// highest level down to the lowest odd level, every maximal run at or
// above the current level is reversed.
func Reorder[T any](items []T, levels []uint8) {
	if len(items) != len(levels) || len(levels) == 0 {
		return
	}
	lv := append([]uint8(nil), levels...)
	hi, lo := uint8(0), uint8(255)
	for _, l := range lv {
		hi = max(hi, l)
		if l&1 != 0 {
			lo = min(lo, l)
		}
	}
	if lo == 255 {
		return
	}
	for level := hi; level >= lo; level-- {
		for i := 0; i < len(lv); {
			if lv[i] < level {
				i++
				continue
			}
			j := i
			for j < len(lv) && lv[j] >= level {
				j++
			}
			reverse(items[i:j])
			reverse(lv[i:j])
			i = j
		}
	}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
