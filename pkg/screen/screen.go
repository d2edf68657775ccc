// Package screen defines the drawing and font metrics backend the painter
// and the layout engine run against.
package screen

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// FontStyle selects a font face.
type FontStyle uint8

const (
	FontBold FontStyle = 1 << iota
	FontItalic
	FontSerif
	FontMono
)

// Font is a handle returned by SelectFont.
type Font interface {
	Size() int
	Style() FontStyle
	Ascent() int
	Descent() int
}

// Metrics are the extents of a glyph string.
type Metrics struct {
	Width   int
	Ascent  int
	Descent int
}

// Screen is a drawing surface with font services. Coordinates are pixels;
// text is drawn with its baseline at y.
type Screen interface {
	// Media is css.MediaScreen for graphical backends and css.MediaTTY for
	// character cells.
	Media() css.MediaMask
	DPI() int
	Size() (width, height int)

	FillRect(x, y, w, h int, c css.Color)
	XorRect(x, y, w, h int, c css.Color)
	DrawText(f Font, x, y int, glyphs []rune, c css.Color)

	// PushClip intersects the clip rectangle with r and returns the
	// previous one, to be restored with SetClip.
	PushClip(r image.Rectangle) image.Rectangle
	SetClip(r image.Rectangle)
	Clip() image.Rectangle

	SelectFont(style FontStyle, size int) Font
	GlyphWidth(f Font, g rune) int
	TextMetrics(f Font, glyphs []rune) Metrics

	Flush()
}

// Cursor is implemented by backends with a hardware cursor.
type Cursor interface {
	CursorAt(x, y, w, h int)
}

// TextWidth sums the glyph widths of glyphs.
func TextWidth(s Screen, f Font, glyphs []rune) int {
	w := 0
	for _, g := range glyphs {
		w += s.GlyphWidth(f, g)
	}
	return w
}

// FontStyleOf maps a computed style onto a font selection.
func FontStyleOf(cs *css.ComputedStyle) FontStyle {
	var st FontStyle
	if cs.Bold() {
		st |= FontBold
	}
	if cs.Italic() {
		st |= FontItalic
	}
	switch cs.FontFamily {
	case css.FamilySerif:
		st |= FontSerif
	case css.FamilyMono:
		st |= FontMono
	}
	return st
}
