// Package raster is a screen backend drawing into an RGBA image with gg and
// TrueType fonts.
package raster

import (
	"image"
	"image/draw"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// Options configure a raster screen.
type Options struct {
	// DPI is reported to the style engine; zero means 96. Pixel sizes are
	// not affected.
	DPI   int
	Media css.MediaMask
	Fonts FontConfig
}

// Face is a loaded font.
type Face struct {
	face    font.Face
	size    int
	style   screen.FontStyle
	ascent  int
	descent int
}

func (f *Face) Size() int               { return f.size }
func (f *Face) Style() screen.FontStyle { return f.style }
func (f *Face) Ascent() int             { return f.ascent }
func (f *Face) Descent() int            { return f.descent }

type faceKey struct {
	style screen.FontStyle
	size  int
}

// Screen draws into an image.
type Screen struct {
	log  *zap.Logger
	img  *image.RGBA
	dc   *gg.Context
	opts Options

	fonts *fontSet
	faces map[faceKey]*Face
	// fallback is used when a configured font cannot be loaded.
	fallback *fontSet

	clip      image.Rectangle
	clipDirty bool
}

var _ screen.Screen = (*Screen)(nil)

// New creates a w×h screen.
func New(w, h int, log *zap.Logger, opts Options) *Screen {
	return NewForImage(image.NewRGBA(image.Rect(0, 0, w, h)), log, opts)
}

// NewForImage creates a screen drawing into img, whose bounds must start
// at the origin.
func NewForImage(img *image.RGBA, log *zap.Logger, opts Options) *Screen {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DPI <= 0 {
		opts.DPI = 96
	}
	if opts.Media == 0 {
		opts.Media = css.MediaScreen
	}
	return &Screen{
		log:      log.Named("raster"),
		img:      img,
		dc:       gg.NewContextForRGBA(img),
		opts:     opts,
		fonts:    newFontSet(opts.Fonts),
		fallback: newFontSet(FontConfig{}),
		faces:    make(map[faceKey]*Face),
		clip:     img.Bounds(),
	}
}

func (s *Screen) Media() css.MediaMask { return s.opts.Media }
func (s *Screen) DPI() int             { return s.opts.DPI }

func (s *Screen) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the drawing.
func (s *Screen) Image() *image.RGBA { return s.img }

// EncodePNG writes the drawing as PNG.
func (s *Screen) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

// SavePNG writes the drawing to a PNG file.
func (s *Screen) SavePNG(path string) error { return s.dc.SavePNG(path) }

func (s *Screen) FillRect(x, y, w, h int, c css.Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.clip)
	if r.Empty() || c.IsTransparent() {
		return
	}
	op := draw.Over
	if c.A() == 0xff {
		op = draw.Src
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, op)
}

// XorRect inverts the color channels selected by c inside the rectangle.
// Xoring twice restores the pixels.
func (s *Screen) XorRect(x, y, w, h int, c css.Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.img.Bounds())
	cr, cg, cb := c.R(), c.G(), c.B()
	for py := r.Min.Y; py < r.Max.Y; py++ {
		i := s.img.PixOffset(r.Min.X, py)
		for px := r.Min.X; px < r.Max.X; px++ {
			p := s.img.Pix[i : i+4 : i+4]
			p[0] ^= cr
			p[1] ^= cg
			p[2] ^= cb
			i += 4
		}
	}
}

func (s *Screen) DrawText(f screen.Font, x, y int, glyphs []rune, c css.Color) {
	face, ok := f.(*Face)
	if !ok || len(glyphs) == 0 || s.clip.Empty() {
		return
	}
	s.applyClip()
	s.dc.SetFontFace(face.face)
	s.dc.SetColor(c)
	s.dc.DrawString(string(glyphs), float64(x), float64(y))
}

// applyClip mirrors the clip rectangle into the gg mask used for text.
func (s *Screen) applyClip() {
	if !s.clipDirty {
		return
	}
	s.clipDirty = false
	s.dc.ResetClip()
	if s.clip == s.img.Bounds() {
		return
	}
	r := s.clip
	s.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	s.dc.Clip()
}

func (s *Screen) PushClip(r image.Rectangle) image.Rectangle {
	old := s.clip
	s.SetClip(s.clip.Intersect(r))
	return old
}

func (s *Screen) SetClip(r image.Rectangle) {
	r = r.Intersect(s.img.Bounds())
	if r != s.clip {
		s.clip, s.clipDirty = r, true
	}
}

func (s *Screen) Clip() image.Rectangle { return s.clip }

// SelectFont returns the face for style and pixel size. A configured font
// that cannot be loaded is replaced by the Go font of the same style.
func (s *Screen) SelectFont(style screen.FontStyle, size int) screen.Font {
	if size < 1 {
		size = 1
	}
	k := faceKey{style, size}
	if f, ok := s.faces[k]; ok {
		return f
	}
	tf, err := s.fonts.font(style)
	if err != nil {
		s.log.Warn("using built-in font", zap.Error(err))
		tf, _ = s.fallback.font(style)
	}
	// At 72 dpi one point is one pixel.
	face := truetype.NewFace(tf, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	m := face.Metrics()
	f := &Face{face: face, size: size, style: style, ascent: m.Ascent.Ceil(), descent: m.Descent.Ceil()}
	s.faces[k] = f
	return f
}

func (s *Screen) GlyphWidth(f screen.Font, g rune) int {
	face, ok := f.(*Face)
	if !ok {
		return 0
	}
	adv, ok := face.face.GlyphAdvance(g)
	if !ok {
		return 0
	}
	return adv.Round()
}

func (s *Screen) TextMetrics(f screen.Font, glyphs []rune) screen.Metrics {
	return screen.Metrics{Width: screen.TextWidth(s, f, glyphs), Ascent: f.Ascent(), Descent: f.Descent()}
}

// Flush is a no-op: drawing goes straight to the image.
func (s *Screen) Flush() {}
