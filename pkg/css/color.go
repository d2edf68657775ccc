package css

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is a packed 0xAARRGGBB color. Alpha 0 is transparent.
type Color uint32

const (
	Transparent Color = 0
	Black       Color = 0xff000000
	White       Color = 0xffffffff
)

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return 0xff000000 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// IsTransparent reports whether c has zero alpha.
func (c Color) IsTransparent() bool { return c.A() == 0 }

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}.RGBA()
}

func (c Color) String() string {
	if c.IsTransparent() {
		return "transparent"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// Lighter returns c brightened halfway to white, used for 3D border styles.
func (c Color) Lighter() Color {
	l := func(v uint8) uint8 { return v + (255-v)/2 }
	return Color(c.A())<<24 | Color(l(c.R()))<<16 | Color(l(c.G()))<<8 | Color(l(c.B()))
}

// Darker returns c dimmed to half its intensity.
func (c Color) Darker() Color {
	d := func(v uint8) uint8 { return v / 2 }
	return Color(c.A())<<24 | Color(d(c.R()))<<16 | Color(d(c.G()))<<8 | Color(d(c.B()))
}

var namedColors = map[string]Color{
	"transparent": Transparent,
	"black":       RGB(0x00, 0x00, 0x00),
	"silver":      RGB(0xc0, 0xc0, 0xc0),
	"gray":        RGB(0x80, 0x80, 0x80),
	"grey":        RGB(0x80, 0x80, 0x80),
	"white":       RGB(0xff, 0xff, 0xff),
	"maroon":      RGB(0x80, 0x00, 0x00),
	"red":         RGB(0xff, 0x00, 0x00),
	"purple":      RGB(0x80, 0x00, 0x80),
	"fuchsia":     RGB(0xff, 0x00, 0xff),
	"magenta":     RGB(0xff, 0x00, 0xff),
	"green":       RGB(0x00, 0x80, 0x00),
	"lime":        RGB(0x00, 0xff, 0x00),
	"olive":       RGB(0x80, 0x80, 0x00),
	"yellow":      RGB(0xff, 0xff, 0x00),
	"navy":        RGB(0x00, 0x00, 0x80),
	"blue":        RGB(0x00, 0x00, 0xff),
	"teal":        RGB(0x00, 0x80, 0x80),
	"aqua":        RGB(0x00, 0xff, 0xff),
	"cyan":        RGB(0x00, 0xff, 0xff),
	"orange":      RGB(0xff, 0xa5, 0x00),
	"brown":       RGB(0xa5, 0x2a, 0x2a),
	"pink":        RGB(0xff, 0xc0, 0xcb),
	"lightgray":   RGB(0xd3, 0xd3, 0xd3),
	"lightgrey":   RGB(0xd3, 0xd3, 0xd3),
	"darkgray":    RGB(0xa9, 0xa9, 0xa9),
	"darkgrey":    RGB(0xa9, 0xa9, 0xa9),
	"lightblue":   RGB(0xad, 0xd8, 0xe6),
	"darkblue":    RGB(0x00, 0x00, 0x8b),
	"darkred":     RGB(0x8b, 0x00, 0x00),
	"darkgreen":   RGB(0x00, 0x64, 0x00),
	"gold":        RGB(0xff, 0xd7, 0x00),
	"violet":      RGB(0xee, 0x82, 0xee),
}

// ParseColor parses a named color, "#rgb", "#rrggbb" or "rrggbb" (the
// hash-less form appears in legacy HTML attributes).
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	hex := strings.TrimPrefix(s, "#")
	var v uint32
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	switch len(hex) {
	case 3:
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return RGB(r*0x11, g*0x11, b*0x11), true
	case 6:
		return Color(0xff000000 | v), true
	}
	return 0, false
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
