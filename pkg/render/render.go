// Package render paints laid out box trees on a screen and maps between
// screen positions and source offsets: hit testing, caret geometry and
// caret motion.
package render

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
	"github.com/qemacs/qemacs-sub000/pkg/layout"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// Default colors.
var (
	DefaultBackground = css.White
	DefaultSelection  = css.RGB(0xb4, 0xd5, 0xfe)
	stubColor         = css.RGB(0x80, 0x80, 0x80)
)

// Options configure a Painter.
type Options struct {
	// Background fills the canvas where the document sets no background.
	Background     css.Color
	SelectionColor css.Color
	Abort          diag.AbortFunc
}

// Selection is the half-open range [Start, End) of source offsets shown
// as selected.
type Selection struct {
	Start, End int
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.End <= s.Start }

// Contains reports whether off is selected.
func (s Selection) Contains(off int) bool {
	return off != box.NoOffset && off >= s.Start && off < s.End
}

// Painter draws laid out trees on one screen. It is not safe for
// concurrent use.
type Painter struct {
	log  *zap.Logger
	scr  screen.Screen
	opts Options

	sel Selection
	// canvasDrawn is set once the default background has been filled.
	canvasDrawn bool
	// canvas is the box whose background was used for the whole canvas.
	canvas *box.Box
	// positioned holds the positioned boxes met during the in-flow pass,
	// with the clip in effect where they were found.
	positioned []deferred

	boxes int
}

type deferred struct {
	b    *box.Box
	clip image.Rectangle
}

// NewPainter creates a painter drawing on scr.
func NewPainter(scr screen.Screen, log *zap.Logger, opts Options) *Painter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Background == 0 {
		opts.Background = DefaultBackground
	}
	if opts.SelectionColor == 0 {
		opts.SelectionColor = DefaultSelection
	}
	return &Painter{log: log.Named("render"), scr: scr, opts: opts}
}

// Paint draws the part of the tree below root that intersects clip, in
// document coordinates. In-flow content is painted in tree order, then
// positioned boxes in the order they were found.
func (p *Painter) Paint(root *box.Box, clip image.Rectangle, sel Selection) error {
	start := time.Now()
	p.sel = sel
	p.canvasDrawn = false
	p.canvas = nil
	p.positioned = p.positioned[:0]
	p.boxes = 0

	old := p.scr.PushClip(clip)
	defer p.scr.SetClip(old)
	clip = p.scr.Clip()

	p.paintCanvas(root, clip)
	if err := p.paintBox(root, clip); err != nil {
		return err
	}
	for i := 0; i < len(p.positioned); i++ {
		d := p.positioned[i]
		prev := p.scr.PushClip(d.clip)
		err := p.paintSubtree(d.b, p.scr.Clip())
		p.scr.SetClip(prev)
		if err != nil {
			return err
		}
	}
	p.scr.Flush()

	p.log.Debug("paint done",
		zap.Int("boxes", p.boxes),
		zap.Int("positioned", len(p.positioned)),
		zap.Stringer("clip", clip),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// paintCanvas fills the paint region with the root background. Like
// browsers do, an html or body element can lend its background to the
// canvas when the root has none.
func (p *Painter) paintCanvas(root *box.Box, clip image.Rectangle) {
	if p.canvasDrawn {
		return
	}
	c := p.opts.Background
	for b := root; b != nil; b = canvasChild(b) {
		if b.Style != nil && !b.Style.BackgroundColor.IsTransparent() {
			c = b.Style.BackgroundColor
			p.canvas = b
			break
		}
	}
	p.scr.FillRect(clip.Min.X, clip.Min.Y, clip.Dx(), clip.Dy(), c)
	p.canvasDrawn = true
}

// canvasChild returns the first html or body element child of b.
func canvasChild(b *box.Box) *box.Box {
	for _, c := range b.Children {
		if c.Tag == ident.TagHTML || c.Tag == ident.TagBody {
			return c
		}
	}
	return nil
}

func (p *Painter) check() error {
	if err := p.opts.Abort.Check(); err != nil {
		return fmt.Errorf("paint: %w", err)
	}
	return nil
}

// paintBox paints b and its in-flow descendants, deferring positioned
// ones.
func (p *Painter) paintBox(b *box.Box, clip image.Rectangle) error {
	cs := b.Style
	if cs == nil || cs.Display == css.DisplayNone {
		return nil
	}
	if b.Parent != nil && (b.AbsolutePos || cs.Position == css.PositionRelative) {
		p.positioned = append(p.positioned, deferred{b, clip})
		return nil
	}
	return p.paintSubtree(b, clip)
}

func (p *Painter) paintSubtree(b *box.Box, clip image.Rectangle) error {
	if b.BBox.Intersect(clip).Empty() {
		return nil
	}
	if err := p.check(); err != nil {
		return err
	}
	p.boxes++
	cs := b.Style
	if cs.Visibility == css.VisibilityVisible {
		p.paintDecorations(b)
		switch {
		case b.Kind == box.ContentImage:
			p.paintImage(b)
		case b.IsText():
			p.paintText(b)
		}
	}
	if b.IsTerminal() {
		return nil
	}
	if cs.Overflow.Clips() {
		old := p.scr.PushClip(paddingBox(b.Rect(), cs, allSides))
		defer p.scr.SetClip(old)
		clip = p.scr.Clip()
	}
	for _, c := range b.Children {
		if err := p.paintBox(c, clip); err != nil {
			return err
		}
	}
	return nil
}

// paintDecorations fills the background and draws the borders of b, once
// per line fragment for inline boxes with children.
func (p *Painter) paintDecorations(b *box.Box) {
	cs := b.Style
	if b.IsText() && b.Tag == ident.None {
		// Anonymous text only carries a ::first-line background.
		if !cs.BackgroundColor.IsTransparent() && b.Run != nil {
			r := b.Rect()
			p.scr.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), cs.BackgroundColor)
		}
		return
	}
	if len(b.Fragments) == 0 {
		p.paintFrame(b.Rect(), cs, allSides, b != p.canvas)
		return
	}
	first, last := 0, len(b.Fragments)-1
	if cs.Direction == css.DirRTL {
		first, last = last, first
	}
	for i, r := range b.Fragments {
		sides := allSides
		if i != first {
			sides &^= 1 << css.SideLeft
		}
		if i != last {
			sides &^= 1 << css.SideRight
		}
		p.paintFrame(r, cs, sides, true)
	}
}

// sideMask selects the sides of a frame that are drawn.
type sideMask uint8

const allSides sideMask = 1<<css.SideTop | 1<<css.SideRight | 1<<css.SideBottom | 1<<css.SideLeft

func (m sideMask) has(side int) bool { return m&(1<<side) != 0 }

// paddingBox insets the border box r by the drawn borders.
func paddingBox(r image.Rectangle, cs *css.ComputedStyle, sides sideMask) image.Rectangle {
	bw := func(side int) int {
		if !sides.has(side) {
			return 0
		}
		return int(cs.BorderWidth[side])
	}
	r.Min.X += bw(css.SideLeft)
	r.Min.Y += bw(css.SideTop)
	r.Max.X -= bw(css.SideRight)
	r.Max.Y -= bw(css.SideBottom)
	return r.Canon()
}

func (p *Painter) paintFrame(r image.Rectangle, cs *css.ComputedStyle, sides sideMask, background bool) {
	if background && !cs.BackgroundColor.IsTransparent() {
		pb := paddingBox(r, cs, sides)
		if !pb.Empty() {
			p.scr.FillRect(pb.Min.X, pb.Min.Y, pb.Dx(), pb.Dy(), cs.BackgroundColor)
		}
	}
	p.paintBorders(r, cs, sides)
}

// paintText draws the shaped run of a text box, with the selection behind
// it and the text decorations over it.
func (p *Painter) paintText(b *box.Box) {
	run := b.Run
	if run == nil || len(run.Glyphs) == 0 {
		return
	}
	cs := b.Style
	x, baseline := layout.TextOrigin(b)
	top := baseline - run.Ascent
	if !p.sel.Empty() {
		p.paintSelection(run, x, top, run.Ascent+run.Descent)
	}
	p.scr.DrawText(run.Font, x, baseline, run.Glyphs, cs.Color)
	p.paintTextDecoration(cs, x, baseline, run)
}

// paintSelection fills the selection color behind every glyph showing a
// selected character, merging neighbours into one rectangle.
func (p *Painter) paintSelection(run *box.Run, x, y, h int) {
	selected := make([]bool, len(run.Glyphs))
	hit := false
	for i, g := range run.GlyphOf {
		if p.sel.Contains(run.Offsets[i]) {
			selected[g] = true
			hit = true
		}
	}
	if !hit {
		return
	}
	gx := x
	for g := 0; g < len(selected); {
		if !selected[g] {
			gx += run.Advance[g]
			g++
			continue
		}
		x0 := gx
		for ; g < len(selected) && selected[g]; g++ {
			gx += run.Advance[g]
		}
		p.scr.FillRect(x0, y, gx-x0, h, p.opts.SelectionColor)
	}
}

func (p *Painter) paintTextDecoration(cs *css.ComputedStyle, x, baseline int, run *box.Run) {
	d := cs.TextDecoration
	if d&(css.DecorUnderline|css.DecorOverline|css.DecorLineThrough) == 0 {
		return
	}
	thick := max(1, int(cs.FontSize)/14)
	if d&css.DecorUnderline != 0 {
		p.scr.FillRect(x, baseline+max(1, run.Descent/2), run.Width, thick, cs.Color)
	}
	if d&css.DecorOverline != 0 {
		p.scr.FillRect(x, baseline-run.Ascent, run.Width, thick, cs.Color)
	}
	if d&css.DecorLineThrough != 0 {
		p.scr.FillRect(x, baseline-run.Ascent/3, run.Width, thick, cs.Color)
	}
}

// paintImage draws an image stub: a frame around its content box and the
// alt text inside it.
func (p *Painter) paintImage(b *box.Box) {
	cs := b.Style
	pb := paddingBox(b.Rect(), cs, allSides)
	content := image.Rect(
		pb.Min.X+cs.Padding[css.SideLeft].Resolve(0), pb.Min.Y+b.PaddingTop,
		pb.Max.X-cs.Padding[css.SideRight].Resolve(0), pb.Max.Y-b.PaddingBottom).Canon()
	if content.Empty() {
		return
	}
	p.strokeRect(content, 1, stubColor)
	run := b.Run
	if run == nil || len(run.Glyphs) == 0 {
		return
	}
	old := p.scr.PushClip(content.Inset(1))
	p.scr.DrawText(run.Font, content.Min.X+2, content.Min.Y+1+run.Ascent, run.Glyphs, cs.Color)
	p.scr.SetClip(old)
}

// strokeRect draws a w pixels wide outline inside r.
func (p *Painter) strokeRect(r image.Rectangle, w int, c css.Color) {
	p.scr.FillRect(r.Min.X, r.Min.Y, r.Dx(), w, c)
	p.scr.FillRect(r.Min.X, r.Max.Y-w, r.Dx(), w, c)
	p.scr.FillRect(r.Min.X, r.Min.Y+w, w, r.Dy()-2*w, c)
	p.scr.FillRect(r.Max.X-w, r.Min.Y+w, w, r.Dy()-2*w, c)
}
