// Package layout computes the geometry of a styled box tree: block, inline,
// float, table, list-item and positioned layout, with bidi reordering and
// shaping of the text runs. Coordinates are absolute document pixels.
package layout

import (
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
	"github.com/qemacs/qemacs-sub000/pkg/shape"
)

// Options configure a layout pass.
type Options struct {
	// Width and Height give the initial containing block; zero means the
	// screen size.
	Width, Height int
	Abort         diag.AbortFunc
}

// Engine lays out documents on one screen. It is not safe for concurrent
// use.
type Engine struct {
	log    *zap.Logger
	scr    screen.Screen
	styles *css.StyleTable
	shaper *shape.Shaper
	opts   Options
	src    box.Source

	fonts map[fontKey]screen.Font

	// abs holds out-of-flow boxes until their containing block is final.
	abs    []*box.Box
	static map[*box.Box]staticPos
	// baselines records the distance from the top of a block container
	// with lines to its first baseline.
	baselines map[*box.Box]int
	extents   map[*box.Box]extent
	// marker is an outside list marker waiting for the first line of its
	// list item.
	marker *pendingMarker

	boxes, lines int
}

type fontKey struct {
	style screen.FontStyle
	size  int32
}

// NewEngine creates a layout engine drawing metrics from scr. styles
// interns the ::first-line variants of text styles; shaper may be nil.
func NewEngine(scr screen.Screen, styles *css.StyleTable, shaper *shape.Shaper, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if shaper == nil {
		shaper = shape.New(nil)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		w, h := scr.Size()
		if opts.Width <= 0 {
			opts.Width = w
		}
		if opts.Height <= 0 {
			opts.Height = h
		}
	}
	return &Engine{
		log:    log.Named("layout"),
		scr:    scr,
		styles: styles,
		shaper: shaper,
		opts:   opts,
		fonts:  make(map[fontKey]screen.Font),
	}
}

// staticPos is where an out-of-flow box would have been in the flow,
// relative to the border box of the container it was found in. Keeping it
// relative survives the container being moved later.
type staticPos struct {
	ref *box.Box
	off image.Point
}

func (s staticPos) point() image.Point {
	return s.off.Add(image.Pt(s.ref.X, s.ref.Y))
}

// abortError carries a cancellation out of the recursive descent.
type abortError struct{ err error }

// Layout positions every box below root. src decodes buffer boxes. A tree
// may be laid out again after its styles or the width changed; boxes split
// by the previous pass are joined first. On cancellation the geometry is
// unusable.
func (e *Engine) Layout(root *box.Box, src box.Source) (err error) {
	start := time.Now()
	e.src = src
	e.abs = e.abs[:0]
	e.static = make(map[*box.Box]staticPos)
	e.baselines = make(map[*box.Box]int)
	e.extents = make(map[*box.Box]extent)
	e.marker = nil
	e.boxes, e.lines = 0, 0

	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abortError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("layout: %w", a.err)
		}
	}()

	joinSplits(root)
	if root.Style == nil {
		return errors.New("layout: tree has no computed style")
	}
	if len(root.Children) == 0 && !root.IsTerminal() {
		// An empty document has no extent.
		resetGeometry(root)
		return nil
	}
	e.layoutBlock(root, 0, 0, e.opts.Width, e.opts.Height, newFloatList())
	e.applyRelative(root)
	e.layoutAbsolute()
	computeBBox(root)

	e.log.Debug("layout done",
		zap.Int("boxes", e.boxes),
		zap.Int("lines", e.lines),
		zap.Int("width", root.Width),
		zap.Int("height", root.Height),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// enter is called at every box entry.
func (e *Engine) enter(b *box.Box) {
	e.boxes++
	if err := e.opts.Abort.Check(); err != nil {
		panic(abortError{err})
	}
}

func (e *Engine) font(cs *css.ComputedStyle) screen.Font {
	k := fontKey{screen.FontStyleOf(cs), cs.FontSize}
	if f, ok := e.fonts[k]; ok {
		return f
	}
	f := e.scr.SelectFont(k.style, int(k.size))
	e.fonts[k] = f
	return f
}

// joinSplits undoes the splitting of a previous pass: every split box is
// merged back into the box it was cut from.
func joinSplits(b *box.Box) {
	if b.BaseStyle != nil {
		b.Style = b.BaseStyle
		b.BaseStyle = nil
	}
	b.Run = nil
	b.Fragments = nil
	b.Level = 0
	b.AbsolutePos = false
	if b.IsTerminal() {
		return
	}
	kept := b.Children[:0]
	for _, c := range b.Children {
		if c.Split && len(kept) > 0 {
			prev := kept[len(kept)-1]
			if prev.IsText() && prev.Kind == c.Kind && prev.Text == c.Text && prev.End == c.Start {
				prev.End = c.End
				prev.EOL = c.EOL
				continue
			}
		}
		c.Split = false
		kept = append(kept, c)
	}
	clear(b.Children[len(kept):])
	b.Children = kept
	for _, c := range b.Children {
		joinSplits(c)
	}
}

func resetGeometry(b *box.Box) {
	b.Walk(func(x *box.Box) bool {
		x.X, x.Y, x.Width, x.Height, x.Ascent = 0, 0, 0, 0, 0
		x.PaddingTop, x.PaddingBottom = 0, 0
		x.BBox = image.Rectangle{}
		x.Fragments = nil
		return true
	})
}

// computeBBox sets every box's BBox to the union of its border box, its
// line fragments and the boxes of its descendants.
func computeBBox(b *box.Box) image.Rectangle {
	r := b.Rect()
	if b.Style != nil && b.Style.Display == css.DisplayNone {
		b.BBox = image.Rectangle{}
		for _, c := range b.Children {
			computeBBox(c)
		}
		return b.BBox
	}
	for _, f := range b.Fragments {
		r = r.Union(f)
	}
	for _, c := range b.Children {
		r = r.Union(computeBBox(c))
	}
	b.BBox = r
	return r
}

// translate moves a laid out subtree.
func translate(b *box.Box, dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	d := image.Pt(dx, dy)
	b.Walk(func(x *box.Box) bool {
		x.X += dx
		x.Y += dy
		for i := range x.Fragments {
			x.Fragments[i] = x.Fragments[i].Add(d)
		}
		return true
	})
}
