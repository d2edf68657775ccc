// Package shape turns characters into glyphs: Arabic contextual forms,
// Devanagari cluster rules and table-driven ligatures. Every glyph keeps the
// index of the first character it was made from, so offsets can be mapped
// both ways after substitutions have changed the glyph count or order.
package shape

// Glyph is one output glyph and the index of the first character it stands
// for.
type Glyph struct {
	ID      rune
	Cluster int
}

// Run is the shaped form of a character sequence.
type Run struct {
	Glyphs []Glyph
	// CharToGlyph maps every input character to the index of the glyph
	// that draws it.
	CharToGlyph []int
}

// IDs returns the glyph codes of the run.
func (r *Run) IDs() []rune {
	ids := make([]rune, len(r.Glyphs))
	for i, g := range r.Glyphs {
		ids[i] = g.ID
	}
	return ids
}

// Shaper applies the substitution passes in logical order. The zero value
// shapes without a ligature table.
type Shaper struct {
	Ligatures *Ligatures
}

// New returns a shaper using lig, which may be nil.
func New(lig *Ligatures) *Shaper {
	return &Shaper{Ligatures: lig}
}

// Shape runs the Arabic, Devanagari and ligature passes over text.
func (s *Shaper) Shape(text []rune) *Run {
	glyphs := make([]Glyph, len(text))
	complex := false
	for i, r := range text {
		glyphs[i] = Glyph{ID: r, Cluster: i}
		if isArabic(r) || isDevanagari(r) {
			complex = true
		}
	}
	if complex {
		glyphs = joinArabic(glyphs)
		glyphs = reorderDevanagari(glyphs, s.Ligatures)
	}
	if s.Ligatures != nil {
		glyphs = s.Ligatures.apply(glyphs)
	}
	if complex {
		glyphs = dropJoiners(glyphs)
	}
	return &Run{Glyphs: glyphs, CharToGlyph: charMap(glyphs, len(text))}
}

// charMap inverts the cluster indices. Characters absorbed into a glyph
// made from earlier characters map to that glyph.
func charMap(glyphs []Glyph, n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = -1
	}
	for j, g := range glyphs {
		if g.Cluster >= 0 && g.Cluster < n && m[g.Cluster] < 0 {
			m[g.Cluster] = j
		}
	}
	last := 0
	for i := range m {
		if m[i] < 0 {
			m[i] = last
		} else {
			last = m[i]
		}
	}
	return m
}
