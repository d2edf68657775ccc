package style

import (
	"sort"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// matched holds the rules that apply to one element, split by the
// pseudo-element their subject targets.
type matched struct {
	rules       []*css.Rule
	before      []*css.Rule
	after       []*css.Rule
	firstLine   []*css.Rule
	firstLetter []*css.Rule
	// pseudo is the set of pseudo-elements seen while matching.
	pseudo css.PseudoSet
}

// matchRules gathers the rules of the tag's bucket and of the "*" bucket
// whose media intersects the engine's and whose chain matches b.
func (e *Engine) matchRules(b *box.Box) matched {
	var m matched
	e.collect(b, b.Tag, &m)
	if b.Tag != ident.Star {
		e.collect(b, ident.Star, &m)
	}
	for _, rs := range [][]*css.Rule{m.rules, m.before, m.after, m.firstLine, m.firstLetter} {
		sortRules(rs)
	}
	return m
}

func (e *Engine) collect(b *box.Box, tag ident.ID, m *matched) {
	for _, r := range e.sheet.Candidates(tag) {
		sel := r.Selector
		// Buckets are shared by tags with the same hash.
		if sel.Tag != tag || r.Media&e.opts.Media == 0 {
			continue
		}
		if !e.matchesSelector(b, sel) {
			continue
		}
		pe := sel.PseudoElement()
		m.pseudo |= pe
		switch {
		case pe == 0:
			m.rules = append(m.rules, r)
		case pe&css.PseudoBefore != 0:
			m.before = append(m.before, r)
		case pe&css.PseudoAfter != 0:
			m.after = append(m.after, r)
		case pe&css.PseudoFirstLine != 0:
			m.firstLine = append(m.firstLine, r)
		case pe&css.PseudoFirstLetter != 0:
			m.firstLetter = append(m.firstLetter, r)
		}
	}
}

// sortRules orders rules by ascending specificity, then sheet order, so
// later entries override earlier ones.
func sortRules(rs []*css.Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Specificity != rs[j].Specificity {
			return rs[i].Specificity < rs[j].Specificity
		}
		return rs[i].Order < rs[j].Order
	})
}

// matchesSelector tests a chain right to left: sel must match b, then the
// combinator decides where its Next must match.
func (e *Engine) matchesSelector(b *box.Box, sel *css.Selector) bool {
	if !e.matchesSimple(b, sel) {
		return false
	}
	if sel.Next == nil {
		return true
	}
	switch sel.Combinator {
	case css.CombDescendant:
		for a := b.Parent; a != nil; a = a.Parent {
			if e.matchesSelector(a, sel.Next) {
				return true
			}
		}
		return false
	case css.CombChild:
		return b.Parent != nil && e.matchesSelector(b.Parent, sel.Next)
	case css.CombAdjacent:
		prev := b.PrevSibling()
		return prev != nil && e.matchesSelector(prev, sel.Next)
	}
	return false
}

func (e *Engine) matchesSimple(b *box.Box, sel *css.Selector) bool {
	if b.Tag == ident.None || b.Generated != box.GenNone {
		return false
	}
	if sel.Tag != ident.Star && sel.Tag != b.Tag {
		return false
	}
	if sel.ID != ident.None {
		v, ok := b.Attr(ident.AttrID)
		if !ok || v != e.idents.Name(sel.ID) {
			return false
		}
	}
	for _, a := range sel.Attrs {
		v, ok := b.Attr(a.Attr)
		if !a.Matches(v, ok) {
			return false
		}
	}
	pc := sel.Pseudo &^ css.PseudoElements
	if pc&css.PseudoFirstChild != 0 && !b.IsFirstChild() {
		return false
	}
	if pc&css.PseudoLink != 0 && !isLink(b) {
		return false
	}
	// No interaction state is tracked.
	if pc&(css.PseudoVisited|css.PseudoActive|css.PseudoHover|css.PseudoFocus) != 0 {
		return false
	}
	return true
}

func isLink(b *box.Box) bool {
	if b.Tag != ident.TagA {
		return false
	}
	_, ok := b.Attr(ident.AttrHref)
	return ok
}
