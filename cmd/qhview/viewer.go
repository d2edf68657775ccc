package main

import (
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/config"
	"github.com/qemacs/qemacs-sub000/pkg/document"
	"github.com/qemacs/qemacs-sub000/pkg/render"
	"github.com/qemacs/qemacs-sub000/pkg/screen/raster"
)

// move is a caret motion bound to a key.
type move int

const (
	moveLeft move = iota
	moveRight
	moveUp
	moveDown
	moveHome
	moveEnd
)

// viewer holds one open document and its caret. It knows nothing about the
// window system.
type viewer struct {
	log     *zap.Logger
	path    string
	buf     *buffer.Mem
	doc     *document.Document
	scr     *raster.Screen
	painter *render.Painter
	nav     *render.Navigator
	caret   int
}

func newViewer(path string, cfg *config.Config, log *zap.Logger) (*viewer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts, err := document.OptionsFromConfig(cfg, log)
	if err != nil {
		return nil, err
	}
	opts.Filename = path
	scr := raster.New(cfg.Render.Width, cfg.Render.Height, log, raster.Options{DPI: opts.DPI, Media: opts.Media})
	buf := buffer.NewMem(data, opts.Charset)
	opts.Busy = func() { log.Debug("laying out", zap.String("file", path)) }
	return &viewer{
		log:     log,
		path:    path,
		buf:     buf,
		doc:     document.New(buf, scr, log, opts),
		scr:     scr,
		painter: render.NewPainter(scr, log, opts.Render),
	}, nil
}

// frame repaints the document with the caret and returns the image. The
// returned image is reused by the next frame.
func (v *viewer) frame() (*image.RGBA, error) {
	stale := !v.doc.UpToDate()
	w, h := v.scr.Size()
	if err := v.doc.Display(image.Rect(0, 0, w, h), render.Selection{}); err != nil {
		return v.scr.Image(), err
	}
	if stale || v.nav == nil {
		v.nav = v.doc.Navigator()
	}
	if c, ok := v.doc.CaretAt(v.caret); ok {
		v.painter.DrawCaret(c)
	}
	return v.scr.Image(), nil
}

// click puts the caret under the pointer.
func (v *viewer) click(x, y int) bool {
	off, ok := v.doc.HitTest(x, y)
	if !ok {
		return false
	}
	v.caret = off
	if v.nav != nil {
		v.nav.Reset()
	}
	return true
}

// key moves the caret. It reports false when the caret cannot move.
func (v *viewer) key(m move) bool {
	if v.nav == nil {
		return false
	}
	var (
		off int
		ok  bool
	)
	switch m {
	case moveLeft:
		off, ok = v.nav.Left(v.caret)
	case moveRight:
		off, ok = v.nav.Right(v.caret)
	case moveUp:
		off, ok = v.nav.Up(v.caret)
	case moveDown:
		off, ok = v.nav.Down(v.caret)
	case moveHome:
		off, ok = v.nav.LineStart(v.caret)
	case moveEnd:
		off, ok = v.nav.LineEnd(v.caret)
	}
	if ok {
		v.caret = off
	}
	return ok
}

// reload replaces the buffer contents with the file on disk. The document
// notices the modification and lays out again on the next frame.
func (v *viewer) reload() error {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return err
	}
	if err := v.buf.Delete(0, v.buf.Size()); err != nil {
		return err
	}
	if err := v.buf.Insert(0, data); err != nil {
		return err
	}
	v.caret = min(v.caret, v.buf.Size())
	return nil
}

// status describes the caret position and the parse diagnostics.
func (v *viewer) status() string {
	s := fmt.Sprintf("%s  offset %d", v.path, v.caret)
	if n := v.doc.Errors().Len(); n > 0 {
		s += fmt.Sprintf("  %d diagnostics", n)
	}
	return s
}

func (v *viewer) close() { v.doc.Close() }
