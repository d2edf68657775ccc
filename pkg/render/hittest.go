package render

import (
	"math"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/layout"
)

// HitTest maps the document position (x, y) to the source offset of the
// closest character. The terminal box at the smallest Manhattan distance
// from the point wins, then the character under x inside it. It reports
// false when no laid out text comes from the source.
func HitTest(root *box.Box, x, y int) (int, bool) {
	var best *box.Box
	bestDist := math.MaxInt
	for _, b := range targets(root) {
		r := b.Rect()
		d := segDist(x, r.Min.X, r.Max.X) + segDist(y, r.Min.Y, r.Max.Y)
		if d < bestDist {
			best, bestDist = b, d
		}
	}
	if best == nil {
		return 0, false
	}
	ox, _ := layout.TextOrigin(best)
	i := best.Run.CharAt(x - ox)
	if i < 0 {
		return 0, false
	}
	return best.Run.Offsets[i], true
}

// segDist is the distance from v to the half-open segment [lo, hi).
func segDist(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v >= hi:
		return v - hi + 1
	}
	return 0
}

// targets returns the terminal boxes caret and mouse can land in: laid out
// text with at least one character from the source, in document order.
func targets(root *box.Box) []*box.Box {
	if root == nil {
		return nil
	}
	var out []*box.Box
	root.Walk(func(b *box.Box) bool {
		if b.Style == nil || b.Style.Display == css.DisplayNone {
			return false
		}
		if b.IsText() && b.Run != nil && hasOffsets(b.Run) {
			out = append(out, b)
		}
		return true
	})
	return out
}

func hasOffsets(r *box.Run) bool {
	for _, o := range r.Offsets[:len(r.Chars)] {
		if o != box.NoOffset {
			return true
		}
	}
	return false
}
