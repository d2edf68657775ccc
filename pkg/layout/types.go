package layout

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// itemKind tags the entries of an inline segment.
type itemKind uint8

const (
	itemText   itemKind = iota // terminal text box
	itemOpen                   // start of an inline box with children
	itemClose                  // end of an inline box with children
	itemAtomic                 // image, inline-block or inline-table
	itemBreak                  // forced line break
	itemFloat                  // float waiting for a line
	itemAbs                    // out-of-flow box; records its static position
)

// item is one entry of an inline segment, in logical order. Text items own
// the white-space processed characters of their box.
type item struct {
	kind itemKind
	b    *box.Box

	chars []rune
	// pos are the positions SplitAt takes: byte offsets into the buffer or
	// into the owned string. offs are the source offsets reported by hit
	// testing, NoOffset for generated text. Both have len(chars)+1 entries.
	pos  []int
	offs []int
	adv  []int

	level uint8
	// width is the inline extent of spacers and atomic boxes, margins
	// included.
	width int
}

// sub returns the text item for chars [i, j) of it, on box b.
func (it *item) sub(b *box.Box, i, j int) *item {
	return &item{
		kind:  itemText,
		b:     b,
		chars: it.chars[i:j],
		pos:   it.pos[i : j+1],
		offs:  it.offs[i : j+1],
		adv:   it.adv[i:j],
		level: it.level,
	}
}

// piece is an item placed on a line.
type piece struct {
	*item
	width int
	// top and bottom are the extents around the baseline after the
	// vertical-align shift; negative is above the baseline.
	top, bottom int
	shift       int
	// lineRel is set for vertical-align top and bottom, which are resolved
	// once the line height is known.
	lineRel css.VerticalAlign
	x       int
}

// pendingMarker is an outside list marker waiting for the first line of
// its list item.
type pendingMarker struct {
	b *box.Box
	// owner is the list item; left and right are its content edges.
	owner       *box.Box
	left, right int
	dir         css.Direction
}

// extent is a pair of intrinsic widths.
type extent struct {
	min, max int
}

func (x extent) add(n int) extent { return extent{x.min + n, x.max + n} }

// fragment accumulates the part of an inline box that lies on one line.
type fragment struct {
	b      *box.Box
	x0, x1 int
	first  bool
	last   bool
}

func (f *fragment) rect(top, bottom int) image.Rectangle {
	return image.Rect(f.x0, top, f.x1, bottom)
}
