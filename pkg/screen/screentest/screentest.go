// Package screentest provides a screen backend with fixed, font-independent
// metrics that records every drawing operation.
//
// A glyph is (size+1)/2 pixels wide, combining marks and zero-width
// characters are 0 wide, the ascent is size-size/4 and the descent size/4.
package screentest

import (
	"fmt"
	"image"
	"unicode"

	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// Op is one recorded drawing operation.
type Op struct {
	Kind  string
	X, Y  int
	W, H  int
	Color css.Color
	Text  string
	Font  string
}

func (o Op) String() string {
	switch o.Kind {
	case "text":
		return fmt.Sprintf("text %d,%d %q %s %s", o.X, o.Y, o.Text, o.Color, o.Font)
	case "cursor":
		return fmt.Sprintf("cursor %d,%d %dx%d", o.X, o.Y, o.W, o.H)
	}
	return fmt.Sprintf("%s %d,%d %dx%d %s", o.Kind, o.X, o.Y, o.W, o.H, o.Color)
}

type font struct {
	size  int
	style screen.FontStyle
}

func (f font) Size() int               { return f.size }
func (f font) Style() screen.FontStyle { return f.style }
func (f font) Ascent() int             { return f.size - f.size/4 }
func (f font) Descent() int            { return f.size / 4 }

func (f font) String() string {
	s := fmt.Sprintf("%dpx", f.size)
	if f.style&screen.FontBold != 0 {
		s += "+bold"
	}
	if f.style&screen.FontItalic != 0 {
		s += "+italic"
	}
	if f.style&screen.FontMono != 0 {
		s += "+mono"
	}
	return s
}

// Screen is the recording backend.
type Screen struct {
	W, H    int
	Dpi     int
	MediaOf css.MediaMask
	Ops     []Op

	clip image.Rectangle
}

var _ screen.Screen = (*Screen)(nil)

// New creates a w×h screen at 96 dpi.
func New(w, h int) *Screen {
	return &Screen{W: w, H: h, Dpi: 96, MediaOf: css.MediaScreen, clip: image.Rect(0, 0, w, h)}
}

func (s *Screen) Media() css.MediaMask { return s.MediaOf }
func (s *Screen) DPI() int             { return s.Dpi }
func (s *Screen) Size() (int, int)     { return s.W, s.H }

func (s *Screen) FillRect(x, y, w, h int, c css.Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.clip)
	if r.Empty() {
		return
	}
	s.Ops = append(s.Ops, Op{Kind: "fill", X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy(), Color: c})
}

func (s *Screen) XorRect(x, y, w, h int, c css.Color) {
	s.Ops = append(s.Ops, Op{Kind: "xor", X: x, Y: y, W: w, H: h, Color: c})
}

func (s *Screen) DrawText(f screen.Font, x, y int, glyphs []rune, c css.Color) {
	if len(glyphs) == 0 {
		return
	}
	s.Ops = append(s.Ops, Op{Kind: "text", X: x, Y: y, Text: string(glyphs), Color: c, Font: fmt.Sprint(f)})
}

func (s *Screen) PushClip(r image.Rectangle) image.Rectangle {
	old := s.clip
	s.clip = s.clip.Intersect(r)
	return old
}

func (s *Screen) SetClip(r image.Rectangle) { s.clip = r }
func (s *Screen) Clip() image.Rectangle     { return s.clip }

func (s *Screen) SelectFont(style screen.FontStyle, size int) screen.Font {
	if size < 1 {
		size = 1
	}
	return font{size: size, style: style}
}

func (s *Screen) GlyphWidth(f screen.Font, g rune) int {
	if g == 0x200b || g == 0x200c || g == 0x200d || unicode.Is(unicode.Mn, g) {
		return 0
	}
	return (f.Size() + 1) / 2
}

func (s *Screen) TextMetrics(f screen.Font, glyphs []rune) screen.Metrics {
	return screen.Metrics{Width: screen.TextWidth(s, f, glyphs), Ascent: f.Ascent(), Descent: f.Descent()}
}

func (s *Screen) Flush() {
	s.Ops = append(s.Ops, Op{Kind: "flush"})
}

// Reset drops the recorded operations and the clip.
func (s *Screen) Reset() {
	s.Ops = nil
	s.clip = image.Rect(0, 0, s.W, s.H)
}

// Texts returns the drawn strings in drawing order.
func (s *Screen) Texts() []Op {
	var out []Op
	for _, op := range s.Ops {
		if op.Kind == "text" {
			out = append(out, op)
		}
	}
	return out
}

// TextOp returns the first text operation drawing exactly text.
func (s *Screen) TextOp(text string) (Op, bool) {
	for _, op := range s.Ops {
		if op.Kind == "text" && op.Text == text {
			return op, true
		}
	}
	return Op{}, false
}

// CursorScreen is a Screen with a hardware cursor.
type CursorScreen struct{ *Screen }

var _ screen.Cursor = CursorScreen{}

func (s CursorScreen) CursorAt(x, y, w, h int) {
	s.Ops = append(s.Ops, Op{Kind: "cursor", X: x, Y: y, W: w, H: h})
}
