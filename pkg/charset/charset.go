// Package charset decodes raw document bytes into characters. Encodings are
// looked up by their WHATWG label through golang.org/x/text.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Decoder decodes one character at a time.
type Decoder interface {
	// DecodeRune decodes the character at the start of p and returns it
	// with its length in bytes. Invalid input yields utf8.RuneError and a
	// length of 1; an empty p yields a length of 0.
	DecodeRune(p []byte) (r rune, size int)
	// Name returns the canonical name of the encoding.
	Name() string
}

// UTF8 is the default decoder.
var UTF8 Decoder = utf8Decoder{}

type utf8Decoder struct{}

func (utf8Decoder) DecodeRune(p []byte) (rune, int) {
	if len(p) == 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRune(p)
}

func (utf8Decoder) Name() string { return "utf-8" }

// New returns the decoder for a charset label such as "iso-8859-1",
// "windows-1252" or "shift_jis".
func New(label string) (Decoder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(label)
	}
	if name == "utf-8" {
		return UTF8, nil
	}
	if cm, ok := enc.(*charmap.Charmap); ok {
		return singleByte(cm, name), nil
	}
	return &multiByte{name: name, t: enc.NewDecoder()}, nil
}

// table decodes encodings where every byte is one character.
type table struct {
	name  string
	runes [256]rune
}

func (d *table) DecodeRune(p []byte) (rune, int) {
	if len(p) == 0 {
		return utf8.RuneError, 0
	}
	return d.runes[p[0]], 1
}

func (d *table) Name() string { return d.name }

// singleByte builds the lookup table of a one byte per character encoding.
func singleByte(cm *charmap.Charmap, name string) Decoder {
	d := &table{name: name}
	for b := 0; b < 256; b++ {
		d.runes[b] = cm.DecodeByte(byte(b))
	}
	return d
}

// multiByte feeds the transformer growing prefixes of the input until it
// produces a character.
type multiByte struct {
	name string
	t    transform.Transformer
}

const maxSeq = 4

func (d *multiByte) DecodeRune(p []byte) (rune, int) {
	if len(p) == 0 {
		return utf8.RuneError, 0
	}
	var buf [4 * utf8.UTFMax]byte
	for n := 1; n <= len(p) && n <= maxSeq; n++ {
		d.t.Reset()
		nDst, nSrc, err := d.t.Transform(buf[:], p[:n], n == len(p))
		if nDst > 0 && nSrc > 0 {
			r, _ := utf8.DecodeRune(buf[:nDst])
			return r, nSrc
		}
		if err != nil && !errors.Is(err, transform.ErrShortSrc) {
			break
		}
	}
	return utf8.RuneError, 1
}

func (d *multiByte) Name() string { return d.name }

// DecodeString decodes all of p.
func DecodeString(d Decoder, p []byte) string {
	if d == UTF8 {
		return string(p)
	}
	var sb strings.Builder
	for len(p) > 0 {
		r, n := d.DecodeRune(p)
		if n <= 0 {
			break
		}
		sb.WriteRune(r)
		p = p[n:]
	}
	return sb.String()
}
