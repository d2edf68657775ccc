package style

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// counterFrame is one counter instance. A reset on an element creates an
// instance whose scope is the element, its following siblings and their
// descendants, so the frame belongs to the element's parent and is popped
// when that parent is finished.
type counterFrame struct {
	id    ident.ID
	value int
	scope *box.Box
}

type counterStack struct {
	frames []counterFrame
}

func (s *counterStack) top(id ident.ID) *counterFrame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].id == id {
			return &s.frames[i]
		}
	}
	return nil
}

// reset starts a counter instance. A later reset in the same scope
// replaces the earlier instance instead of nesting.
func (s *counterStack) reset(id ident.ID, value int, scope *box.Box) {
	if f := s.top(id); f != nil && f.scope == scope {
		f.value = value
		return
	}
	s.frames = append(s.frames, counterFrame{id: id, value: value, scope: scope})
}

// increment adjusts the innermost instance of id. With no visible
// instance it behaves as an implicit reset to zero in scope and reports
// true.
func (s *counterStack) increment(id ident.ID, by int, scope *box.Box) bool {
	f := s.top(id)
	created := f == nil
	if created {
		s.frames = append(s.frames, counterFrame{id: id, scope: scope})
		f = &s.frames[len(s.frames)-1]
	}
	f.value += by
	return created
}

func (s *counterStack) value(id ident.ID) int {
	if f := s.top(id); f != nil {
		return f.value
	}
	return 0
}

// pop drops the instances scoped to b.
func (s *counterStack) pop(b *box.Box) {
	n := len(s.frames)
	for n > 0 && s.frames[n-1].scope == b {
		n--
	}
	s.frames = s.frames[:n]
}

// counterOps parses counter-reset or counter-increment values: identifiers
// each optionally followed by an integer.
func counterOps(vals []css.Value, def int) []counterOp {
	var ops []counterOp
	for _, v := range vals {
		switch v.Kind {
		case css.KindIdent:
			ops = append(ops, counterOp{id: v.ID, n: def})
		case css.KindInteger:
			if len(ops) > 0 {
				ops[len(ops)-1].n = int(v.Num)
			}
		}
	}
	return ops
}

type counterOp struct {
	id ident.ID
	n  int
}

// updateCounters runs the resets then the increments of an element. A
// list-item increments "list-item" unless it names that counter itself.
func (e *Engine) updateCounters(b *box.Box, cs *css.ComputedStyle, sp *specified) {
	scope := b.Parent
	for _, op := range counterOps(sp.vals[css.PropCounterReset], 0) {
		e.counters.reset(op.id, op.n, scope)
	}
	incs := counterOps(sp.vals[css.PropCounterIncrement], 1)
	listItem := cs.Display == css.DisplayListItem
	for _, op := range incs {
		if op.id == ident.CounterListItem {
			listItem = false
		}
		e.increment(op.id, op.n, scope)
	}
	if listItem {
		e.increment(ident.CounterListItem, 1, scope)
	}
}

func (e *Engine) increment(id ident.ID, by int, scope *box.Box) {
	if !e.counters.increment(id, by, scope) || !e.log.Core().Enabled(zap.DebugLevel) {
		return
	}
	var tag string
	if scope != nil {
		tag = e.idents.Name(scope.Tag)
	}
	e.log.Debug("implicit counter reset", zap.String("counter", e.idents.Name(id)), zap.String("scope", tag))
}

// FormatCounter renders n in the given list style. Bullet styles ignore n.
func FormatCounter(n int, ls css.ListStyle) string {
	switch ls {
	case css.ListDisc:
		return "•"
	case css.ListCircle:
		return "○"
	case css.ListSquare:
		return "■"
	case css.ListLowerRoman:
		return strings.ToLower(roman(n))
	case css.ListUpperRoman:
		return roman(n)
	case css.ListLowerAlpha:
		return alpha(n, 'a')
	case css.ListUpperAlpha:
		return alpha(n, 'A')
	case css.ListNone:
		return ""
	}
	return strconv.Itoa(n)
}

var romanDigits = []struct {
	v int
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"}, {100, "C"}, {90, "XC"},
	{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman falls back to decimal outside 1..3999.
func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, d := range romanDigits {
		for n >= d.v {
			sb.WriteString(d.s)
			n -= d.v
		}
	}
	return sb.String()
}

// alpha numbers a, b, ..., z, aa, ab, ...
func alpha(n int, first byte) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{first + byte(n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
