// Package document runs the display pipeline of one buffer: parse, cascade,
// layout and paint. A modification of the buffer marks the document stale
// and the next display starts over from parsing.
package document

import (
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/charset"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/html"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
	"github.com/qemacs/qemacs-sub000/pkg/layout"
	"github.com/qemacs/qemacs-sub000/pkg/render"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
	"github.com/qemacs/qemacs-sub000/pkg/shape"
	"github.com/qemacs/qemacs-sub000/pkg/style"
)

// Mode selects the syntax rules and the default style sheet.
type Mode uint8

const (
	ModeHTML Mode = iota
	ModeDocBook
)

func (m Mode) String() string {
	if m == ModeDocBook {
		return "docbook"
	}
	return "html"
}

// Options configure a document.
type Options struct {
	Mode Mode
	// Parser overrides the syntax flags of Mode when non-nil.
	Parser *html.Options
	// Filename names the document in diagnostics.
	Filename string
	Charset  charset.Decoder

	// Sheet is appended to the default sheet of Mode.
	Sheet string

	Media    css.MediaMask
	DPI      int
	PxScale  int
	FontSize int
	// Width and Height give the initial containing block; zero means the
	// screen size.
	Width, Height int

	// Ligatures enables the ligature substitution pass.
	Ligatures *shape.Ligatures

	Render render.Options

	// Abort is polled by every phase.
	Abort diag.AbortFunc
	// Busy is called before the pipeline runs again.
	Busy func()
}

// Document owns the box tree built from a buffer.
type Document struct {
	log    *zap.Logger
	buf    buffer.Buffer
	sub    buffer.Subscription
	scr    screen.Screen
	opts   Options
	idents *ident.Table
	errs   *diag.ErrorBuffer
	base   *css.Sheet
	shaper *shape.Shaper

	upToDate bool
	root     *box.Box
	styles   *css.StyleTable
	// lastErr is the error of the last pipeline run.
	lastErr error
	closed  bool
}

// New creates a document over buf displayed on scr. It subscribes to the
// buffer until Close.
func New(buf buffer.Buffer, scr screen.Screen, log *zap.Logger, opts Options) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Document{
		log:    log.Named("document"),
		buf:    buf,
		scr:    scr,
		opts:   opts,
		idents: ident.NewTable(),
		shaper: shape.New(opts.Ligatures),
	}
	d.errs = diag.NewErrorBuffer(d.log)
	d.base = d.defaultSheet()
	d.sub = buf.Subscribe(d.modified)
	return d
}

// defaultSheet parses the default sheet of the mode and the extra sheet.
// Both are parsed once per document.
func (d *Document) defaultSheet() *css.Sheet {
	sheet := css.NewSheet()
	p := css.NewParser(d.idents, d.errs, d.log)
	p.IgnoreCase = d.parserOptions().IgnoreCase
	text := HTMLSheet
	if d.opts.Mode == ModeDocBook {
		text = DocBookSheet
	}
	p.Filename = "<default " + d.opts.Mode.String() + " sheet>"
	p.ParseSheet(sheet, text, 1)
	if d.opts.Sheet != "" {
		p.Filename = "<user sheet>"
		p.ParseSheet(sheet, d.opts.Sheet, 1)
	}
	return sheet
}

func (d *Document) parserOptions() html.Options {
	var o html.Options
	switch {
	case d.opts.Parser != nil:
		o = *d.opts.Parser
	case d.opts.Mode == ModeDocBook:
		o = html.XMLOptions()
	default:
		o = html.HTMLOptions()
	}
	o.Filename = d.opts.Filename
	o.Abort = d.opts.Abort
	if d.opts.Charset != nil {
		o.Charset = d.opts.Charset
	}
	return o
}

func (d *Document) modified(op buffer.Op, offset, size int) {
	if d.upToDate {
		d.log.Debug("document modified", zap.Stringer("op", op), zap.Int("offset", offset), zap.Int("size", size))
	}
	d.upToDate = false
}

// UpToDate reports whether the laid out tree reflects the buffer.
func (d *Document) UpToDate() bool { return d.upToDate }

// Invalidate forces the next display to run the whole pipeline, e.g. after
// the screen was resized.
func (d *Document) Invalidate() { d.upToDate = false }

// Root returns the laid out tree, or nil before the first successful
// update.
func (d *Document) Root() *box.Box { return d.root }

// Styles returns the computed-style table of the current tree.
func (d *Document) Styles() *css.StyleTable { return d.styles }

// Idents returns the identifier table of the document.
func (d *Document) Idents() *ident.Table { return d.idents }

// Errors returns the diagnostics of the last parse.
func (d *Document) Errors() *diag.ErrorBuffer { return d.errs }

// Err combines the error of the last pipeline run with the diagnostics of
// the last parse.
func (d *Document) Err() error {
	return multierr.Append(d.lastErr, d.errs.Err())
}

// Update runs the pipeline if the document is stale. On failure the
// previous tree is kept, the document stays stale and the next call tries
// again.
func (d *Document) Update() error {
	if d.closed {
		return errors.New("document: closed")
	}
	if d.upToDate {
		return nil
	}
	if d.opts.Busy != nil {
		d.opts.Busy()
	}
	start := time.Now()
	root, styles, err := d.run()
	d.lastErr = err
	if err != nil {
		if errors.Is(err, diag.ErrAborted) {
			d.log.Debug("display aborted", zap.Error(err))
		} else {
			d.log.Warn("display failed", zap.Error(err))
		}
		return err
	}
	d.root, d.styles = root, styles
	d.upToDate = true
	d.log.Debug("document updated",
		zap.Int("boxes", root.Count()),
		zap.Int("diagnostics", d.errs.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// run parses the whole buffer and lays it out. Partial trees are dropped
// on error.
func (d *Document) run() (*box.Box, *css.StyleTable, error) {
	d.errs.Reset()
	sheet := css.NewSheet()
	sheet.Merge(d.base)

	p := html.NewParser(d.idents, sheet, d.errs, d.log, d.parserOptions())
	root, err := p.ParseBuffer(d.buf, 0, d.buf.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}

	styles := css.NewStyleTable()
	se := style.NewEngine(d.idents, sheet, styles, d.log, style.Options{
		Media:    d.media(),
		DPI:      d.opts.DPI,
		PxScale:  d.opts.PxScale,
		FontSize: d.opts.FontSize,
		Abort:    d.opts.Abort,
	})
	if err := se.Compute(root, d.buf); err != nil {
		return nil, nil, err
	}

	le := layout.NewEngine(d.scr, styles, d.shaper, d.log, layout.Options{
		Width:  d.opts.Width,
		Height: d.opts.Height,
		Abort:  d.opts.Abort,
	})
	if err := le.Layout(root, d.buf); err != nil {
		return nil, nil, err
	}
	return root, styles, nil
}

func (d *Document) media() css.MediaMask {
	if d.opts.Media != 0 {
		return d.opts.Media
	}
	return d.scr.Media()
}

// Display brings the document up to date and paints the part inside clip
// with sel highlighted. When the update fails nothing is painted, so the
// previous frame stays on screen.
func (d *Document) Display(clip image.Rectangle, sel render.Selection) error {
	if err := d.Update(); err != nil {
		return err
	}
	p := render.NewPainter(d.scr, d.log, d.opts.Render)
	if err := p.Paint(d.root, clip, sel); err != nil {
		d.lastErr = err
		return err
	}
	return nil
}

// HitTest maps a position to the source offset under it.
func (d *Document) HitTest(x, y int) (int, bool) {
	if d.root == nil {
		return 0, false
	}
	return render.HitTest(d.root, x, y)
}

// CaretAt returns the caret of a source offset.
func (d *Document) CaretAt(off int) (render.Caret, bool) {
	if d.root == nil {
		return render.Caret{}, false
	}
	return render.CaretAt(d.root, off)
}

// Navigator returns a caret navigator over the current tree. It must be
// replaced after the next update.
func (d *Document) Navigator() *render.Navigator {
	return render.NewNavigator(d.root)
}

// Dump renders the current tree for debugging.
func (d *Document) Dump() string {
	if d.root == nil {
		return ""
	}
	return box.Dump(d.root, d.idents, d.buf)
}

// LoadLigatures loads the ligature table at path. A missing or corrupt
// file disables ligature substitution: the error is logged and nil
// returned. An empty path loads nothing.
func LoadLigatures(path string, log *zap.Logger) *shape.Ligatures {
	if path == "" {
		return nil
	}
	lig, err := shape.LoadLigatureFile(path)
	if err != nil {
		if log != nil {
			log.Warn("ligatures disabled", zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	return lig
}

// Close unsubscribes from the buffer and drops the tree.
func (d *Document) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.sub.Unsubscribe()
	d.root, d.styles = nil, nil
	d.upToDate = false
}
