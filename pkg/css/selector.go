package css

import (
	"strings"

	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Combinator relates a simple selector to the one on its left.
type Combinator uint8

const (
	CombNone Combinator = iota
	CombDescendant
	CombChild
	CombAdjacent
)

// AttrOp is the operator of an attribute selector.
type AttrOp uint8

const (
	AttrSet          AttrOp = iota // [attr]
	AttrEqual                      // [attr=value]
	AttrInList                     // [attr~=value], also .class
	AttrInHyphenList               // [attr|=value]
)

// AttrMatch is one attribute test.
type AttrMatch struct {
	Attr  ident.ID
	Op    AttrOp
	Value string
}

// Matches tests an attribute value; present reports whether the attribute
// exists at all.
func (m AttrMatch) Matches(value string, present bool) bool {
	if !present {
		return false
	}
	switch m.Op {
	case AttrSet:
		return true
	case AttrEqual:
		return value == m.Value
	case AttrInList:
		for _, w := range strings.Fields(value) {
			if w == m.Value {
				return true
			}
		}
		return false
	case AttrInHyphenList:
		return value == m.Value || strings.HasPrefix(value, m.Value+"-")
	}
	return false
}

// PseudoSet is a bit set of pseudo-classes and pseudo-elements.
type PseudoSet uint16

const (
	PseudoFirstChild PseudoSet = 1 << iota
	PseudoLink
	PseudoVisited
	PseudoActive
	PseudoHover
	PseudoFocus
	PseudoFirstLine
	PseudoFirstLetter
	PseudoBefore
	PseudoAfter
)

// PseudoElements masks the pseudo-element bits.
const PseudoElements = PseudoFirstLine | PseudoFirstLetter | PseudoBefore | PseudoAfter

var pseudoNames = []struct {
	name string
	bit  PseudoSet
}{
	{"first-child", PseudoFirstChild},
	{"link", PseudoLink},
	{"visited", PseudoVisited},
	{"active", PseudoActive},
	{"hover", PseudoHover},
	{"focus", PseudoFocus},
	{"first-line", PseudoFirstLine},
	{"first-letter", PseudoFirstLetter},
	{"before", PseudoBefore},
	{"after", PseudoAfter},
}

// LookupPseudo maps a pseudo-class or pseudo-element name to its bit.
func LookupPseudo(name string) (PseudoSet, bool) {
	name = strings.ToLower(name)
	for _, p := range pseudoNames {
		if p.name == name {
			return p.bit, true
		}
	}
	return 0, false
}

// Selector is one simple selector of a chain. Chains are stored right to
// left: the selector that must match the subject box comes first, and Next
// points to the simple selector on its left, related by Combinator.
type Selector struct {
	Tag        ident.ID
	ID         ident.ID
	Attrs      []AttrMatch
	Pseudo     PseudoSet
	Combinator Combinator
	Next       *Selector
}

// Specificity packs the CSS2 (ids, attributes+pseudo-classes, tags) triple
// into an ordered integer.
func (s *Selector) Specificity() int {
	var a, b, c int
	for sel := s; sel != nil; sel = sel.Next {
		if sel.ID != ident.None {
			a++
		}
		b += len(sel.Attrs)
		pc := sel.Pseudo &^ PseudoElements
		for pc != 0 {
			b += int(pc & 1)
			pc >>= 1
		}
		if sel.Tag != ident.Star && sel.Tag != ident.None {
			c++
		}
		pe := sel.Pseudo & PseudoElements
		for pe != 0 {
			c += int(pe & 1)
			pe >>= 1
		}
	}
	return a<<16 | b<<8 | c
}

// PseudoElement returns the pseudo-element of the subject, if any.
func (s *Selector) PseudoElement() PseudoSet { return s.Pseudo & PseudoElements }

// Format writes the selector chain in CSS syntax.
func (s *Selector) Format(t *ident.Table) string {
	var parts []string
	for sel := s; sel != nil; sel = sel.Next {
		var sb strings.Builder
		if sel.Tag != ident.Star || (sel.ID == ident.None && len(sel.Attrs) == 0 && sel.Pseudo == 0) {
			sb.WriteString(t.Name(sel.Tag))
		}
		if sel.ID != ident.None {
			sb.WriteString("#" + t.Name(sel.ID))
		}
		for _, a := range sel.Attrs {
			if a.Attr == ident.AttrClass && a.Op == AttrInList {
				sb.WriteString("." + a.Value)
				continue
			}
			sb.WriteString("[" + t.Name(a.Attr))
			switch a.Op {
			case AttrEqual:
				sb.WriteString("=")
			case AttrInList:
				sb.WriteString("~=")
			case AttrInHyphenList:
				sb.WriteString("|=")
			}
			if a.Op != AttrSet {
				sb.WriteString(`"` + a.Value + `"`)
			}
			sb.WriteString("]")
		}
		for _, p := range pseudoNames {
			if sel.Pseudo&p.bit != 0 {
				if p.bit&PseudoElements != 0 {
					sb.WriteString("::" + p.name)
				} else {
					sb.WriteString(":" + p.name)
				}
			}
		}
		parts = append(parts, sb.String())
		switch sel.Combinator {
		case CombDescendant:
			parts = append(parts, " ")
		case CombChild:
			parts = append(parts, " > ")
		case CombAdjacent:
			parts = append(parts, " + ")
		}
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
	}
	return sb.String()
}
