package raster

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// FontConfig holds paths to TrueType files overriding the built-in Go
// fonts. Empty paths fall back to the Go font of the same style.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
	MonoBold   string
}

// FontPath returns the configured file for a style, or "".
func (fc FontConfig) FontPath(bold, italic, mono bool) string {
	if mono {
		if bold && fc.MonoBold != "" {
			return fc.MonoBold
		}
		return fc.Monospace
	}
	switch {
	case bold && italic:
		return fc.BoldItalic
	case bold:
		return fc.Bold
	case italic:
		return fc.Italic
	}
	return fc.Regular
}

// There is no serif Go font; serif text uses the proportional faces.
func builtinTTF(bold, italic, mono bool) []byte {
	switch {
	case mono && bold && italic:
		return gomonobolditalic.TTF
	case mono && bold:
		return gomonobold.TTF
	case mono && italic:
		return gomonoitalic.TTF
	case mono:
		return gomono.TTF
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

// fontSet parses each font file once.
type fontSet struct {
	cfg   FontConfig
	mu    sync.Mutex
	fonts map[screen.FontStyle]*truetype.Font
}

func newFontSet(cfg FontConfig) *fontSet {
	return &fontSet{cfg: cfg, fonts: make(map[screen.FontStyle]*truetype.Font)}
}

// styleMask keeps the bits that select a font file.
const styleMask = screen.FontBold | screen.FontItalic | screen.FontMono

func (fs *fontSet) font(style screen.FontStyle) (*truetype.Font, error) {
	style &= styleMask
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.fonts[style]; ok {
		return f, nil
	}
	bold, italic, mono := style&screen.FontBold != 0, style&screen.FontItalic != 0, style&screen.FontMono != 0
	data := builtinTTF(bold, italic, mono)
	if path := fs.cfg.FontPath(bold, italic, mono); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		data = b
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	fs.fonts[style] = f
	return f, nil
}
