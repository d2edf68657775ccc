package shape

const (
	devaVirama = 0x094D
	devaNukta  = 0x093C
	devaRA     = 0x0930
	devaMatraI = 0x093F
)

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

func isDevaConsonant(r rune) bool {
	return (r >= 0x0915 && r <= 0x0939) || (r >= 0x0958 && r <= 0x095F)
}

// nuktaForms composes a consonant followed by a nukta.
var nuktaForms = map[rune]rune{
	0x0915: 0x0958,
	0x0916: 0x0959,
	0x0917: 0x095A,
	0x091C: 0x095B,
	0x0921: 0x095C,
	0x0922: 0x095D,
	0x092B: 0x095E,
	0x092F: 0x095F,
}

// devaRule is one rewrite applied to a consonant cluster. A rule returns
// the rewritten cluster and whether it changed anything.
type devaRule func(c []Glyph, lig *Ligatures) ([]Glyph, bool)

// devaRules run in order over every cluster. Joiners stay in place until
// the ligature pass has run, so a ZWNJ keeps blocking the half form.
var devaRules = []devaRule{
	composeNukta,
	reph,
	subscriptRA,
	halfForms,
	conjuncts,
	deadFinal,
	reorderMatraI,
}

// reorderDevanagari splits the text into consonant clusters and applies
// devaRules to each. Characters outside clusters pass through.
func reorderDevanagari(in []Glyph, lig *Ligatures) []Glyph {
	out := make([]Glyph, 0, len(in))
	for i := 0; i < len(in); {
		if !isDevaConsonant(in[i].ID) {
			out = append(out, in[i])
			i++
			continue
		}
		end := clusterEnd(in, i)
		c := append([]Glyph(nil), in[i:end]...)
		for _, rule := range devaRules {
			c, _ = rule(c, lig)
		}
		out = append(out, c...)
		i = end
	}
	return out
}

// clusterEnd returns the end of the cluster starting with the consonant at
// i: consonants joined by viramas, with nuktas, then dependent signs.
func clusterEnd(in []Glyph, i int) int {
	j := i + 1
	for j < len(in) {
		r := in[j].ID
		switch {
		case r == devaNukta:
			j++
		case r == devaVirama:
			j++
			if j < len(in) && (in[j].ID == zwj || in[j].ID == zwnj) {
				j++
			}
			if j < len(in) && isDevaConsonant(in[j].ID) {
				j++
				continue
			}
			return j
		case isDevaSign(r):
			j++
		default:
			return j
		}
	}
	return j
}

const (
	zwnj = 0x200C
	zwj  = 0x200D
)

// isDevaSign covers dependent vowel signs and the bindu signs.
func isDevaSign(r rune) bool {
	return (r >= 0x093E && r <= 0x094C) || (r >= 0x0900 && r <= 0x0903) ||
		(r >= 0x0962 && r <= 0x0963)
}

func composeNukta(c []Glyph, _ *Ligatures) ([]Glyph, bool) {
	changed := false
	for k := 0; k+1 < len(c); k++ {
		if c[k+1].ID != devaNukta {
			continue
		}
		if f, ok := nuktaForms[c[k].ID]; ok {
			c[k].ID = f
			c = append(c[:k+1], c[k+2:]...)
			changed = true
		}
	}
	return c, changed
}

// reph moves a leading RA+virama to the end of the consonants, as the
// ligature of the pair, when the table provides one.
func reph(c []Glyph, lig *Ligatures) ([]Glyph, bool) {
	if len(c) < 3 || c[0].ID != devaRA || c[1].ID != devaVirama || !isDevaConsonant(c[2].ID) {
		return c, false
	}
	g, ok := lig.pair(devaRA, devaVirama)
	if !ok {
		return c, false
	}
	last := 2
	for k := 2; k < len(c); k++ {
		if isDevaConsonant(c[k].ID) || c[k].ID == devaVirama || c[k].ID == devaNukta {
			last = k
		}
	}
	r := Glyph{ID: g, Cluster: c[0].Cluster}
	out := append([]Glyph(nil), c[2:last+1]...)
	out = append(out, r)
	return append(out, c[last+1:]...), true
}

// subscriptRA replaces virama+RA after a consonant by the subscript form.
func subscriptRA(c []Glyph, lig *Ligatures) ([]Glyph, bool) {
	changed := false
	for k := 1; k+1 < len(c); k++ {
		if c[k].ID != devaVirama || c[k+1].ID != devaRA || !isDevaConsonant(c[k-1].ID) {
			continue
		}
		if g, ok := lig.pair(devaVirama, devaRA); ok {
			c[k].ID = g
			c = append(c[:k+1], c[k+2:]...)
			changed = true
		}
	}
	return c, changed
}

// halfForms turns a dead consonant followed by another consonant into its
// half form.
func halfForms(c []Glyph, lig *Ligatures) ([]Glyph, bool) {
	changed := false
	for k := 0; k+2 < len(c); k++ {
		if !isDevaConsonant(c[k].ID) || c[k+1].ID != devaVirama {
			continue
		}
		next := c[k+2].ID
		if next == zwnj {
			continue
		}
		if !isDevaConsonant(next) && next != zwj {
			continue
		}
		if g, ok := lig.pair(c[k].ID, devaVirama); ok {
			c[k].ID = g
			c = append(c[:k+1], c[k+2:]...)
			changed = true
		}
	}
	return c, changed
}

// conjuncts applies pair ligatures between a half form and the next
// consonant, such as KSSA and JNYA.
func conjuncts(c []Glyph, lig *Ligatures) ([]Glyph, bool) {
	changed := false
	for k := 0; k+1 < len(c); k++ {
		if !conjunctPart(c[k].ID) || !conjunctPart(c[k+1].ID) {
			continue
		}
		if g, ok := lig.pair(c[k].ID, c[k+1].ID); ok {
			c[k].ID = g
			c = append(c[:k+1], c[k+2:]...)
			changed = true
			k--
		}
	}
	return c, changed
}

func conjunctPart(r rune) bool {
	return r != devaVirama && r != zwj && r != zwnj && !isDevaSign(r)
}

// deadFinal keeps a virama ending the cluster visible; a table entry for
// consonant+virama standing alone is used when there is one.
func deadFinal(c []Glyph, lig *Ligatures) ([]Glyph, bool) {
	n := len(c)
	if n < 2 || c[n-1].ID != devaVirama || !isDevaConsonant(c[n-2].ID) {
		return c, false
	}
	if g, ok := lig.pair(c[n-2].ID, zwnj); ok {
		c[n-2].ID = g
		return c[:n-1], true
	}
	return c, false
}

// reorderMatraI draws the short I sign before the consonants it follows.
func reorderMatraI(c []Glyph, _ *Ligatures) ([]Glyph, bool) {
	for k := 1; k < len(c); k++ {
		if c[k].ID == devaMatraI {
			m := c[k]
			copy(c[1:k+1], c[:k])
			c[0] = m
			return c, true
		}
	}
	return c, false
}

// dropJoiners removes ZWJ and ZWNJ once they have done their work.
func dropJoiners(glyphs []Glyph) []Glyph {
	out := glyphs[:0]
	for _, g := range glyphs {
		if g.ID != zwj && g.ID != zwnj {
			out = append(out, g)
		}
	}
	return out
}
