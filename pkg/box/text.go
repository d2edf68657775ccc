package box

import (
	"html"
	"unicode/utf8"

	"github.com/qemacs/qemacs-sub000/pkg/screen"
)

// Source is the character source of buffer boxes. NextChar decodes the
// character at byte offset off and returns the offset of the next one.
type Source interface {
	NextChar(off int) (r rune, next int)
}

// NoOffset marks characters that do not come from the source buffer.
const NoOffset = -1

// Decoded is a decoded text range. Offsets has one more entry than Chars:
// Offsets[i] is the source offset of Chars[i] and the last entry is the end
// of the range.
type Decoded struct {
	Chars   []rune
	Offsets []int
}

// Len returns the number of characters.
func (d Decoded) Len() int { return len(d.Chars) }

// maxEntity bounds the length of an entity name, '&' and ';' included.
const maxEntity = 32

// DecodeSlice decodes [start, end) of src. Entity references are resolved;
// every character they produce maps to the offset of the '&'. Unknown
// entities are kept literally.
func DecodeSlice(src Source, start, end int) Decoded {
	var d Decoded
	for off := start; off < end; {
		r, next := src.NextChar(off)
		if next <= off {
			break
		}
		if r == '&' {
			if s, after, ok := entityAt(src, next, end); ok {
				for _, c := range s {
					d.Chars = append(d.Chars, c)
					d.Offsets = append(d.Offsets, off)
				}
				off = after
				continue
			}
		}
		d.Chars = append(d.Chars, r)
		d.Offsets = append(d.Offsets, off)
		off = next
	}
	d.Offsets = append(d.Offsets, end)
	return d
}

// entityAt scans an entity body starting after '&' at off. It returns the
// replacement text and the offset after the ';'.
func entityAt(src Source, off, end int) (string, int, bool) {
	name := []byte{'&'}
	for off < end && len(name) < maxEntity {
		r, next := src.NextChar(off)
		if next <= off {
			return "", 0, false
		}
		off = next
		if r == ';' {
			name = append(name, ';')
			s := html.UnescapeString(string(name))
			if s == string(name) {
				return "", 0, false
			}
			return s, off, true
		}
		if !isEntityChar(r) {
			return "", 0, false
		}
		name = utf8.AppendRune(name, r)
	}
	return "", 0, false
}

func isEntityChar(r rune) bool {
	return r == '#' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// DecodeString decodes owned text. Characters carry their byte index into s
// shifted by base, or NoOffset for every character when base is NoOffset.
func DecodeString(s string, base int) Decoded {
	var d Decoded
	for i, r := range s {
		d.Chars = append(d.Chars, r)
		if base == NoOffset {
			d.Offsets = append(d.Offsets, NoOffset)
		} else {
			d.Offsets = append(d.Offsets, base+i)
		}
	}
	if base == NoOffset {
		d.Offsets = append(d.Offsets, NoOffset)
	} else {
		d.Offsets = append(d.Offsets, base+len(s))
	}
	return d
}

// Decode returns the text of a terminal box: its buffer range, its owned
// string, or the alt text of an image.
func (b *Box) Decode(src Source) Decoded {
	switch b.Kind {
	case ContentBuffer:
		if src == nil {
			return Decoded{Offsets: []int{b.End}}
		}
		return DecodeSlice(src, b.Start, b.End)
	case ContentString:
		return DecodeString(b.Text[b.Start:b.End], NoOffset)
	case ContentImage:
		return DecodeString(b.Text, NoOffset)
	}
	return Decoded{}
}

// Run is the shaped text of a terminal box. Chars and Offsets are in
// logical order after white-space processing. Glyphs are in drawing order:
// for a right-to-left run the first glyph is the leftmost one.
type Run struct {
	Chars   []rune
	Offsets []int
	Glyphs  []rune
	// GlyphOf maps a character index to the index of the glyph showing it.
	GlyphOf []int
	// Advance is the width of each glyph.
	Advance []int
	RTL     bool

	Font    screen.Font
	Width   int
	Ascent  int
	Descent int
}

// GlyphX returns the distance from the left edge of the run to the left
// edge of glyph g.
func (r *Run) GlyphX(g int) int {
	x := 0
	for i := 0; i < g && i < len(r.Advance); i++ {
		x += r.Advance[i]
	}
	return x
}

// CharSpan returns the horizontal extent of character i relative to the
// left edge of the run.
func (r *Run) CharSpan(i int) (x0, x1 int) {
	if len(r.Glyphs) == 0 {
		return 0, 0
	}
	g := r.GlyphOf[i]
	x0 = r.GlyphX(g)
	return x0, x0 + r.Advance[g]
}

// GlyphAt returns the glyph under x, measured from the left edge of the run,
// clamping to the first and last glyph.
func (r *Run) GlyphAt(x int) int {
	if len(r.Advance) == 0 {
		return -1
	}
	acc := 0
	for g, w := range r.Advance {
		if x < acc+w {
			return g
		}
		acc += w
	}
	return len(r.Advance) - 1
}

// CharAt returns the index of the first character shown by the glyph under
// x that has a source offset, or -1.
func (r *Run) CharAt(x int) int {
	g := r.GlyphAt(x)
	if g < 0 {
		return -1
	}
	best := -1
	for i, gi := range r.GlyphOf {
		if r.Offsets[i] == NoOffset {
			continue
		}
		if gi == g {
			return i
		}
		if best < 0 || abs(gi-g) < abs(r.GlyphOf[best]-g) {
			best = i
		}
	}
	return best
}

// IndexOf returns the index of the character at source offset off, or -1.
func (r *Run) IndexOf(off int) int {
	for i, o := range r.Offsets[:len(r.Chars)] {
		if o == off {
			return i
		}
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
