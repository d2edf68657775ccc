// Package style computes the style of every box: rule matching, the
// cascade, inheritance, unit resolution, counters and the boxes generated
// for pseudo-elements and list markers.
package style

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Options describe the output device.
type Options struct {
	// Media selects the rules that apply; zero means screen.
	Media css.MediaMask
	// DPI converts physical units; zero means 96.
	DPI int
	// PxScale multiplies pixel lengths; zero means 1.
	PxScale int
	// FontSize is the root font size in pixels; zero means "medium" at DPI.
	FontSize int
	Abort    diag.AbortFunc
}

// abortInterval is the number of boxes between abort checks.
const abortInterval = 64

// Engine computes styles for one document.
type Engine struct {
	log    *zap.Logger
	idents *ident.Table
	sheet  *css.Sheet
	styles *css.StyleTable
	opts   Options
	src    box.Source

	fontSize int32
	pxScale  int32

	counters counterStack
	// hidden is non-zero inside a display:none subtree, where nothing is
	// generated and counters do not change.
	hidden     int
	textStyles map[*css.ComputedStyle]*css.ComputedStyle
	boxes      int
}

// NewEngine creates an engine applying sheet. Computed records are interned
// in styles.
func NewEngine(idents *ident.Table, sheet *css.Sheet, styles *css.StyleTable, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Media == 0 {
		opts.Media = css.MediaScreen
	}
	if opts.DPI <= 0 {
		opts.DPI = 96
	}
	if opts.PxScale <= 0 {
		opts.PxScale = 1
	}
	e := &Engine{
		log:     log.Named("style"),
		idents:  idents,
		sheet:   sheet,
		styles:  styles,
		opts:    opts,
		pxScale: int32(opts.PxScale),
	}
	if opts.FontSize > 0 {
		e.fontSize = int32(opts.FontSize)
	} else {
		e.fontSize = e.fontSizeOf(css.FontSizeStep(4), 0)
	}
	return e
}

// RootFontSize returns the font size of the initial style.
func (e *Engine) RootFontSize() int { return int(e.fontSize) }

// Compute styles the tree below root. src decodes buffer boxes when a
// ::first-letter has to be cut out of them. On cancellation the tree is
// left partially styled and must be discarded.
func (e *Engine) Compute(root *box.Box, src box.Source) error {
	start := time.Now()
	e.src = src
	e.counters = counterStack{}
	e.textStyles = make(map[*css.ComputedStyle]*css.ComputedStyle)
	e.boxes, e.hidden = 0, 0
	if err := e.computeBox(root, nil); err != nil {
		return fmt.Errorf("compute styles: %w", err)
	}
	e.log.Debug("styles computed",
		zap.Int("boxes", e.boxes),
		zap.Int("rules", e.sheet.Len()),
		zap.Int("styles", e.styles.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (e *Engine) computeBox(b *box.Box, parent *css.ComputedStyle) error {
	if b.Generated != box.GenNone && b.Generated != box.GenAnonymous {
		// Generated boxes are styled when they are created.
		return nil
	}
	e.boxes++
	if e.boxes%abortInterval == 0 {
		if err := e.opts.Abort.Check(); err != nil {
			return err
		}
	}

	if b.Tag == ident.None {
		if b.IsTerminal() {
			b.Style = e.textStyle(parent)
			return nil
		}
		display := css.DisplayInline
		if parent == nil {
			display = css.DisplayBlock
		}
		b.Style = e.styles.Intern(e.inherited(parent, display))
		return e.computeChildren(b)
	}

	m := e.matchRules(b)
	sp := cascade(m.rules, b.Props)
	cs := e.resolve(sp, parent)
	b.Style = e.styles.Intern(cs)

	if cs.Display == css.DisplayNone {
		e.hidden++
		defer func() { e.hidden-- }()
	}
	if e.hidden > 0 || b.IsTerminal() {
		return e.computeChildren(b)
	}

	e.updateCounters(b, b.Style, sp)
	if len(m.firstLine) > 0 {
		fl := e.resolve(cascade(m.firstLine, nil), b.Style)
		b.FirstLine = e.styles.Intern(fl)
	}
	hasMarker := false
	if len(m.before) > 0 {
		if gb := e.pseudoBox(b, m.before, box.GenBefore); gb != nil {
			b.PrependChild(gb)
			hasMarker = gb.Generated == box.GenMarker
		}
	}
	if b.Style.Display == css.DisplayListItem && !hasMarker {
		if mb := e.markerBox(b); mb != nil {
			b.PrependChild(mb)
		}
	}
	if err := e.computeChildren(b); err != nil {
		return err
	}
	if len(m.after) > 0 {
		if gb := e.pseudoBox(b, m.after, box.GenAfter); gb != nil {
			b.AppendChild(gb)
		}
	}
	if len(m.firstLetter) > 0 {
		fl := e.styles.Intern(e.resolve(cascade(m.firstLetter, nil), b.Style))
		e.wrapFirstLetter(b, fl)
	}
	e.counters.pop(b)
	return nil
}

func (e *Engine) computeChildren(b *box.Box) error {
	// Children may be appended to while iterating; generated ones are
	// skipped by computeBox.
	for i := 0; i < len(b.Children); i++ {
		if err := e.computeBox(b.Children[i], b.Style); err != nil {
			return err
		}
	}
	return nil
}

// textStyle is the style of text and other anonymous terminal boxes: the
// parent's inherited properties, displayed inline.
func (e *Engine) textStyle(parent *css.ComputedStyle) *css.ComputedStyle {
	if st, ok := e.textStyles[parent]; ok {
		return st
	}
	st := e.styles.Intern(e.inherited(parent, css.DisplayInline))
	e.textStyles[parent] = st
	return st
}
