package layout

import (
	"github.com/qemacs/qemacs-sub000/pkg/bidi"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// objectReplacement stands for an atomic inline in the bidi paragraph.
const objectReplacement = '\uFFFC'

// resolveLevels runs the bidi algorithm over the segment and returns the
// items with their embedding levels. Text items spanning several levels are
// cut, so every text item of the result has a single level. Embeddings and
// overrides of inline boxes enter the paragraph as explicit formatting
// characters.
func (f *flow) resolveLevels(items []*item) []*item {
	dir := f.b.Style.Direction
	if dir == css.DirLTR && !needsBidi(items) {
		return items
	}
	base := bidi.LeftToRight
	if dir == css.DirRTL {
		base = bidi.RightToLeft
	}

	var text []rune
	start := make([]int, len(items))
	for i, it := range items {
		start[i] = len(text)
		switch it.kind {
		case itemText:
			text = append(text, it.chars...)
		case itemAtomic:
			text = append(text, objectReplacement)
		case itemOpen:
			if r, ok := embedding(it.b.Style); ok {
				text = append(text, r)
			}
		case itemClose:
			if _, ok := embedding(it.b.Style); ok {
				text = append(text, bidi.PDF)
			}
		}
	}
	levels := bidi.Resolve(text, base).Levels

	out := make([]*item, 0, len(items))
	known := make([]bool, 0, len(items))
	for i, it := range items {
		switch it.kind {
		case itemText:
			if len(it.chars) == 0 {
				out, known = append(out, it), append(known, false)
				continue
			}
			lv := levels[start[i] : start[i]+len(it.chars)]
			cur, from := it.b, 0
			for k := 1; k <= len(lv); k++ {
				if k < len(lv) && lv[k] == lv[from] {
					continue
				}
				var sub *item
				if from == 0 && k == len(lv) {
					sub = it
				} else {
					sub = it.sub(cur, from, k)
					if k < len(lv) {
						cur = cur.SplitAt(it.pos[k])
					}
				}
				sub.level = lv[from]
				out, known = append(out, sub), append(known, true)
				from = k
			}
		case itemAtomic:
			it.level = levels[start[i]]
			out, known = append(out, it), append(known, true)
		default:
			out, known = append(out, it), append(known, false)
		}
	}

	// Spacers and markers take the level of the content next to them:
	// openings the level of what follows, everything else what precedes.
	prev := uint8(0)
	if dir == css.DirRTL {
		prev = 1
	}
	for i, it := range out {
		if known[i] {
			prev = it.level
		} else if it.kind != itemOpen {
			it.level = prev
		}
	}
	next := prev
	for i := len(out) - 1; i >= 0; i-- {
		it := out[i]
		if known[i] {
			next = it.level
		} else if it.kind == itemOpen {
			it.level = next
		}
	}
	return out
}

// needsBidi reports whether anything in a left-to-right segment can raise
// the level above zero.
func needsBidi(items []*item) bool {
	for _, it := range items {
		switch it.kind {
		case itemText:
			for _, r := range it.chars {
				if bidi.RaisesLevel(r) {
					return true
				}
			}
		case itemOpen:
			if _, ok := embedding(it.b.Style); ok {
				return true
			}
		}
	}
	return false
}

// embedding returns the explicit formatting character that opens an inline
// box with unicode-bidi embed or bidi-override.
func embedding(cs *css.ComputedStyle) (rune, bool) {
	rtl := cs.Direction == css.DirRTL
	switch cs.UnicodeBidi {
	case css.BidiEmbed:
		if rtl {
			return bidi.RLE, true
		}
		return bidi.LRE, true
	case css.BidiOverride:
		if rtl {
			return bidi.RLO, true
		}
		return bidi.LRO, true
	}
	return 0, false
}
