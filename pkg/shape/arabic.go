package shape

type joining uint8

const (
	joinNone        joining = iota // U: never joins
	joinRight                      // R: joins to the preceding letter only
	joinDual                       // D: joins on both sides
	joinCausing                    // C: tatweel
	joinTransparent                // T: marks
)

// arabicForm describes a letter of U+0621..U+064A: its joining type and
// its isolated form in Arabic Presentation Forms-B. The final, initial and
// medial forms follow the isolated one.
type arabicForm struct {
	join     joining
	isolated rune
}

var arabicForms = [...]arabicForm{
	0x0621 - arabicFirst: {joinNone, 0xFE80},
	0x0622 - arabicFirst: {joinRight, 0xFE81},
	0x0623 - arabicFirst: {joinRight, 0xFE83},
	0x0624 - arabicFirst: {joinRight, 0xFE85},
	0x0625 - arabicFirst: {joinRight, 0xFE87},
	0x0626 - arabicFirst: {joinDual, 0xFE89},
	0x0627 - arabicFirst: {joinRight, 0xFE8D},
	0x0628 - arabicFirst: {joinDual, 0xFE8F},
	0x0629 - arabicFirst: {joinRight, 0xFE93},
	0x062A - arabicFirst: {joinDual, 0xFE95},
	0x062B - arabicFirst: {joinDual, 0xFE99},
	0x062C - arabicFirst: {joinDual, 0xFE9D},
	0x062D - arabicFirst: {joinDual, 0xFEA1},
	0x062E - arabicFirst: {joinDual, 0xFEA5},
	0x062F - arabicFirst: {joinRight, 0xFEA9},
	0x0630 - arabicFirst: {joinRight, 0xFEAB},
	0x0631 - arabicFirst: {joinRight, 0xFEAD},
	0x0632 - arabicFirst: {joinRight, 0xFEAF},
	0x0633 - arabicFirst: {joinDual, 0xFEB1},
	0x0634 - arabicFirst: {joinDual, 0xFEB5},
	0x0635 - arabicFirst: {joinDual, 0xFEB9},
	0x0636 - arabicFirst: {joinDual, 0xFEBD},
	0x0637 - arabicFirst: {joinDual, 0xFEC1},
	0x0638 - arabicFirst: {joinDual, 0xFEC5},
	0x0639 - arabicFirst: {joinDual, 0xFEC9},
	0x063A - arabicFirst: {joinDual, 0xFECD},
	0x0640 - arabicFirst: {joinCausing, 0},
	0x0641 - arabicFirst: {joinDual, 0xFED1},
	0x0642 - arabicFirst: {joinDual, 0xFED5},
	0x0643 - arabicFirst: {joinDual, 0xFED9},
	0x0644 - arabicFirst: {joinDual, 0xFEDD},
	0x0645 - arabicFirst: {joinDual, 0xFEE1},
	0x0646 - arabicFirst: {joinDual, 0xFEE5},
	0x0647 - arabicFirst: {joinDual, 0xFEE9},
	0x0648 - arabicFirst: {joinRight, 0xFEED},
	0x0649 - arabicFirst: {joinRight, 0xFEEF},
	0x064A - arabicFirst: {joinDual, 0xFEF1},
}

const (
	arabicFirst = 0x0621
	arabicLast  = 0x064A

	lam = 0x0644
)

// lamAlef maps the alef following a lam to the isolated form of the
// ligature; the final form follows it.
var lamAlef = map[rune]rune{
	0x0622: 0xFEF5,
	0x0623: 0xFEF7,
	0x0625: 0xFEF9,
	0x0627: 0xFEFB,
}

func isArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

func joiningOf(r rune) joining {
	switch {
	case r >= arabicFirst && r <= arabicLast:
		return arabicForms[r-arabicFirst].join
	case r >= 0x064B && r <= 0x065F, r == 0x0670:
		return joinTransparent
	}
	return joinNone
}

// joinsForward reports whether a letter of type j connects to the letter
// after it.
func joinsForward(j joining) bool { return j == joinDual || j == joinCausing }

// joinsBackward reports whether a letter of type j connects to the letter
// before it.
func joinsBackward(j joining) bool {
	return j == joinDual || j == joinRight || j == joinCausing
}

// joinArabic selects the contextual form of every Arabic letter and forms
// the lam-alef ligatures. Marks are skipped when looking at neighbours.
func joinArabic(in []Glyph) []Glyph {
	types := make([]joining, len(in))
	for i, g := range in {
		types[i] = joiningOf(g.ID)
	}
	neighbour := func(i, step int) joining {
		for j := i + step; j >= 0 && j < len(in); j += step {
			if types[j] != joinTransparent {
				return types[j]
			}
		}
		return joinNone
	}

	out := in[:0:0]
	for i := 0; i < len(in); i++ {
		g := in[i]
		t := types[i]
		if t != joinDual && t != joinRight {
			out = append(out, g)
			continue
		}
		prev := joinsForward(neighbour(i, -1))
		if g.ID == lam {
			if next := nextLetter(in, types, i); next > 0 {
				if lig, ok := lamAlef[in[next].ID]; ok {
					if prev {
						lig++
					}
					out = append(out, Glyph{ID: lig, Cluster: g.Cluster})
					// Marks between lam and alef stay after the ligature.
					for j := i + 1; j < next; j++ {
						out = append(out, in[j])
					}
					i = next
					continue
				}
			}
		}
		next := joinsBackward(neighbour(i, 1))
		f := arabicForms[g.ID-arabicFirst]
		id := f.isolated
		switch {
		case prev && next && t == joinDual:
			id += 3
		case prev:
			id++
		case next && t == joinDual:
			id += 2
		}
		out = append(out, Glyph{ID: id, Cluster: g.Cluster})
	}
	return out
}

// nextLetter returns the index of the next non-mark character after i, or
// -1.
func nextLetter(in []Glyph, types []joining, i int) int {
	for j := i + 1; j < len(in); j++ {
		if types[j] != joinTransparent {
			return j
		}
	}
	return -1
}
