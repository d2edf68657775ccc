package shape

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// ErrBadLigatures is returned for a ligature file that is not in the
// expected format.
var ErrBadLigatures = errors.New("bad ligature file")

var ligaMagic = [4]byte{'l', 'i', 'g', 'a'}

// Pair is a two-character ligature.
type Pair struct {
	First, Second rune
	Glyph         rune
}

// Sequence is a variable-length substitution. Out is never longer than
// In.
type Sequence struct {
	In, Out []rune
}

// Ligatures holds the substitution tables. They are read-only once
// loaded and may be shared between documents.
type Ligatures struct {
	singles map[rune]rune
	pairs   []Pair
	long    []Sequence
}

// NewLigatures builds a table from its three parts. Pairs are sorted and
// long sequences are tried longest first.
func NewLigatures(singles map[rune]rune, pairs []Pair, long []Sequence) *Ligatures {
	l := &Ligatures{
		singles: singles,
		pairs:   slices.Clone(pairs),
		long:    slices.Clone(long),
	}
	slices.SortFunc(l.pairs, comparePair)
	slices.SortStableFunc(l.long, func(a, b Sequence) int { return len(b.In) - len(a.In) })
	return l
}

func comparePair(a, b Pair) int {
	if a.First != b.First {
		return int(a.First - b.First)
	}
	return int(a.Second - b.Second)
}

// LoadLigatureFile reads a ligature file from disk.
func LoadLigatureFile(path string) (*Ligatures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ligatures: %w", err)
	}
	defer f.Close()
	l, err := LoadLigatures(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// LoadLigatures decodes the big-endian ligature format: the magic "liga",
// three u16 counts, the single substitutions as (in, out) pairs, the pair
// ligatures as (c1, c2, glyph) triples sorted by (c1, c2), then a stream
// of [len_in, len_out, in..., out...] runs ended by len_in = 0.
func LoadLigatures(r io.Reader) (*Ligatures, error) {
	var hdr struct {
		Magic      [4]byte
		N1, N2, N3 uint16
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadLigatures, err)
	}
	if hdr.Magic != ligaMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadLigatures, hdr.Magic[:])
	}

	singles := make([]uint16, 2*int(hdr.N1))
	pairs := make([]uint16, 3*int(hdr.N2))
	stream := make([]uint16, int(hdr.N3))
	for _, part := range [][]uint16{singles, pairs, stream} {
		if err := binary.Read(r, binary.BigEndian, part); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadLigatures, err)
		}
	}

	l := &Ligatures{singles: make(map[rune]rune, hdr.N1)}
	for i := 0; i < len(singles); i += 2 {
		l.singles[rune(singles[i])] = rune(singles[i+1])
	}
	l.pairs = make([]Pair, 0, hdr.N2)
	for i := 0; i < len(pairs); i += 3 {
		l.pairs = append(l.pairs, Pair{rune(pairs[i]), rune(pairs[i+1]), rune(pairs[i+2])})
	}
	if !slices.IsSortedFunc(l.pairs, comparePair) {
		return nil, fmt.Errorf("%w: pair ligatures are not sorted", ErrBadLigatures)
	}
	for i := 0; i < len(stream); {
		nIn := int(stream[i])
		if nIn == 0 {
			break
		}
		if i+1 >= len(stream) {
			return nil, fmt.Errorf("%w: truncated sequence at %d", ErrBadLigatures, i)
		}
		nOut := int(stream[i+1])
		i += 2
		if nOut > nIn || i+nIn+nOut > len(stream) {
			return nil, fmt.Errorf("%w: bad sequence at %d", ErrBadLigatures, i-2)
		}
		l.long = append(l.long, Sequence{In: runes(stream[i : i+nIn]), Out: runes(stream[i+nIn : i+nIn+nOut])})
		i += nIn + nOut
	}
	slices.SortStableFunc(l.long, func(a, b Sequence) int { return len(b.In) - len(a.In) })
	return l, nil
}

func runes(v []uint16) []rune {
	out := make([]rune, len(v))
	for i, c := range v {
		out[i] = rune(c)
	}
	return out
}

// WriteTo encodes the table in the ligature file format.
func (l *Ligatures) WriteTo(w io.Writer) (int64, error) {
	var data []uint16
	keys := make([]rune, 0, len(l.singles))
	for k := range l.singles {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		data = append(data, uint16(k), uint16(l.singles[k]))
	}
	for _, p := range l.pairs {
		data = append(data, uint16(p.First), uint16(p.Second), uint16(p.Glyph))
	}
	n3 := 0
	for _, s := range l.long {
		n3 += 2 + len(s.In) + len(s.Out)
		data = append(data, uint16(len(s.In)), uint16(len(s.Out)))
		for _, r := range s.In {
			data = append(data, uint16(r))
		}
		for _, r := range s.Out {
			data = append(data, uint16(r))
		}
	}
	data = append(data, 0)
	n3++

	cw := &countingWriter{w: w}
	hdr := struct {
		Magic      [4]byte
		N1, N2, N3 uint16
	}{ligaMagic, uint16(len(keys)), uint16(len(l.pairs)), uint16(n3)}
	if err := binary.Write(cw, binary.BigEndian, hdr); err != nil {
		return cw.n, err
	}
	err := binary.Write(cw, binary.BigEndian, data)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// pair looks up a two-character ligature. It is safe on a nil table.
func (l *Ligatures) pair(c1, c2 rune) (rune, bool) {
	if l == nil {
		return 0, false
	}
	i, ok := slices.BinarySearchFunc(l.pairs, Pair{First: c1, Second: c2}, comparePair)
	if !ok {
		return 0, false
	}
	return l.pairs[i].Glyph, true
}

// apply substitutes the longest matching sequence, pair or single at each
// position.
func (l *Ligatures) apply(in []Glyph) []Glyph {
	out := make([]Glyph, 0, len(in))
	for i := 0; i < len(in); {
		// Devanagari clusters took their ligatures from the cluster rules.
		if isDevanagari(in[i].ID) {
			out = append(out, in[i])
			i++
			continue
		}
		if s, ok := l.matchLong(in[i:]); ok {
			for _, r := range s.Out {
				out = append(out, Glyph{ID: r, Cluster: in[i].Cluster})
			}
			i += len(s.In)
			continue
		}
		if i+1 < len(in) {
			if g, ok := l.pair(in[i].ID, in[i+1].ID); ok {
				out = append(out, Glyph{ID: g, Cluster: in[i].Cluster})
				i += 2
				continue
			}
		}
		g := in[i]
		if r, ok := l.singles[g.ID]; ok {
			g.ID = r
		}
		out = append(out, g)
		i++
	}
	return out
}

func (l *Ligatures) matchLong(in []Glyph) (Sequence, bool) {
	for _, s := range l.long {
		if len(s.In) > len(in) {
			continue
		}
		match := true
		for k, r := range s.In {
			if in[k].ID != r {
				match = false
				break
			}
		}
		if match {
			return s, true
		}
	}
	return Sequence{}, false
}
